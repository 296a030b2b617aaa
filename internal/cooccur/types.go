// Package cooccur computes windowed word co-occurrence pairs for a single
// document. Given the (word, document, position) occurrences of one document
// it emits every ordered pair of occurrences whose token distance lies within
// a configured window.
package cooccur

// DefaultMaxDistance is the widest token distance that still yields a pair.
const DefaultMaxDistance = 5

// Occurrence is one word seen at a token offset inside one document.
// Repeated words are distinct occurrences.
type Occurrence struct {
	Word       string `json:"word"`
	DocumentID string `json:"document_id"`
	Position   int    `json:"position"`
}

// Pair is a co-occurrence of two words in one document. Word1 belongs to the
// occurrence that was read before the one producing Word2.
type Pair struct {
	Word1      string `json:"word1"`
	Word2      string `json:"word2"`
	Distance   int    `json:"distance"`
	DocumentID string `json:"document_id"`
}
