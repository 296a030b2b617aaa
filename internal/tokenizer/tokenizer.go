// Package tokenizer turns raw document text into positioned word occurrences
// for the pair generator. Case is preserved; the generator applies its own
// first-letter fold. Splitting happens on runs of non letter/digit runes,
// single-character tokens are dropped, and stop-words are removed unless the
// caller asks to keep them.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {}, "my": {},
}

// Options tunes tokenization.
type Options struct {
	KeepStopWords bool
}

// Tokenize splits text into occurrences for docID with default Options.
func Tokenize(docID, text string) []cooccur.Occurrence {
	return TokenizeWithOptions(docID, text, Options{})
}

// TokenizeWithOptions splits text into occurrences for docID. Positions count
// only the tokens that are kept, so removed stop-words do not leave gaps.
func TokenizeWithOptions(docID, text string, opts Options) []cooccur.Occurrence {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	occs := make([]cooccur.Occurrence, 0, len(words))
	pos := 0
	for _, word := range words {
		if len([]rune(word)) < 2 {
			continue
		}
		if !opts.KeepStopWords && IsStopWord(word) {
			continue
		}
		occs = append(occs, cooccur.Occurrence{
			Word:       word,
			DocumentID: docID,
			Position:   pos,
		})
		pos++
	}
	return occs
}

// IsStopWord reports whether word is a stop-word, ignoring case.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
