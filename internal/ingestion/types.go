// Package ingestion defines the request/response types and Kafka event schemas
// used between the ingestion API and the pair generation worker.
package ingestion

import (
	"encoding/json"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
)

// IngestRequest is the JSON body accepted by POST /api/v1/documents. A
// missing DocumentID is assigned by the server.
type IngestRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocumentID  string `json:"document_id"`
	Status      string `json:"status"`
	Occurrences int    `json:"occurrences"`
}

// PairsRequest is the JSON body accepted by POST /api/v1/pairs. Occurrences
// is kept raw so that malformed sets reach the generator's own decoder.
type PairsRequest struct {
	Occurrences json.RawMessage `json:"occurrences"`
	MaxDistance int             `json:"max_distance,omitempty"`
}

// PairsResponse carries the generated pairs in discovery order.
type PairsResponse struct {
	Pairs []cooccur.Pair `json:"pairs"`
	Count int            `json:"count"`
}

// OccurrenceEvent is the Kafka message produced for every accepted document.
// Occurrences holds the JSON encoding of the document's occurrence set.
type OccurrenceEvent struct {
	DocumentID  string          `json:"document_id"`
	Occurrences json.RawMessage `json:"occurrences"`
	IngestedAt  time.Time       `json:"ingested_at"`
}

// PairEvent is published after a document's pairs have been generated.
type PairEvent struct {
	DocumentID  string         `json:"document_id"`
	Pairs       []cooccur.Pair `json:"pairs"`
	MaxDistance int            `json:"max_distance"`
	GeneratedAt time.Time      `json:"generated_at"`
}
