// Package segment writes generated pairs to immutable .wpdx files and looks
// pairs up in them. A segment holds one entry per (word1, word2) key with the
// documents and distances at which that pair was seen.
package segment

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
)

// Posting lists the distances a pair was seen at inside one document, in
// generation order.
type Posting struct {
	DocumentID string `json:"d"`
	Distances  []int  `json:"x"`
}

// PairEntry is the postings of one ordered word pair.
type PairEntry struct {
	Word1    string
	Word2    string
	Postings []Posting
}

// BuildEntries groups pairs by (Word1, Word2). Entries are sorted by key and
// postings by document id.
func BuildEntries(pairs []cooccur.Pair) []PairEntry {
	type key struct{ w1, w2 string }
	byKey := make(map[key]map[string][]int)
	for _, p := range pairs {
		k := key{p.Word1, p.Word2}
		docs, ok := byKey[k]
		if !ok {
			docs = make(map[string][]int)
			byKey[k] = docs
		}
		docs[p.DocumentID] = append(docs[p.DocumentID], p.Distance)
	}

	entries := make([]PairEntry, 0, len(byKey))
	for k, docs := range byKey {
		postings := make([]Posting, 0, len(docs))
		for docID, distances := range docs {
			postings = append(postings, Posting{DocumentID: docID, Distances: distances})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocumentID < postings[j].DocumentID
		})
		entries = append(entries, PairEntry{Word1: k.w1, Word2: k.w2, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessKey(entries[i].Word1, entries[i].Word2, entries[j].Word1, entries[j].Word2)
	})
	return entries
}

func lessKey(a1, a2, b1, b2 string) bool {
	if a1 != b1 {
		return a1 < b1
	}
	return a2 < b2
}
