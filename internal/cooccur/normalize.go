package cooccur

// Normalize folds the first byte of word to lower case when it is an ASCII
// capital. Every other byte is left alone, so "McDowell" becomes "mcDowell"
// and "$Girl" is returned unchanged. This is not general case folding.
func Normalize(word string) string {
	if word == "" {
		return word
	}
	first := word[0]
	if first < 'A' || first > 'Z' {
		return word
	}
	b := []byte(word)
	b[0] = first + ('a' - 'A')
	return string(b)
}
