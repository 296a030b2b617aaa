package pipeline

import (
	"cmp"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
)

// Mirror returns pairs followed by the reverse of every pair whose words
// differ. Self-pairs are already their own reflection.
func Mirror(pairs []cooccur.Pair) []cooccur.Pair {
	out := make([]cooccur.Pair, 0, 2*len(pairs))
	out = append(out, pairs...)
	for _, p := range pairs {
		if p.Word1 == p.Word2 {
			continue
		}
		out = append(out, cooccur.Pair{
			Word1:      p.Word2,
			Word2:      p.Word1,
			Distance:   p.Distance,
			DocumentID: p.DocumentID,
		})
	}
	return out
}

// SortPairs orders pairs by Word1, Word2, DocumentID, then Distance. Equal
// pairs keep their relative order.
func SortPairs(pairs []cooccur.Pair) {
	slices.SortStableFunc(pairs, func(a, b cooccur.Pair) int {
		return cmp.Or(
			cmp.Compare(a.Word1, b.Word1),
			cmp.Compare(a.Word2, b.Word2),
			cmp.Compare(a.DocumentID, b.DocumentID),
			cmp.Compare(a.Distance, b.Distance),
		)
	})
}
