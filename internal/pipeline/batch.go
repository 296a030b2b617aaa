// Package pipeline runs the pair generator over a mixed stream of
// occurrences: it groups occurrences by document, generates each document's
// pairs on a bounded worker pool, and offers the post-processing steps
// (reflection, ordering) that downstream consumers apply.
package pipeline

import "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"

// Batch is the occurrence set of one document, in encounter order.
type Batch struct {
	DocumentID  string
	Occurrences []cooccur.Occurrence
}

// GroupByDocument partitions occs by document id. Batches are ordered by the
// first appearance of their document and keep each document's occurrences in
// input order.
func GroupByDocument(occs []cooccur.Occurrence) []Batch {
	index := make(map[string]int)
	var batches []Batch
	for _, o := range occs {
		i, ok := index[o.DocumentID]
		if !ok {
			i = len(batches)
			index[o.DocumentID] = i
			batches = append(batches, Batch{DocumentID: o.DocumentID})
		}
		batches[i].Occurrences = append(batches[i].Occurrences, o)
	}
	return batches
}
