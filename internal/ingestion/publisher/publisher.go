// Package publisher tokenizes accepted documents and publishes their
// occurrence sets to Kafka for the pair generation worker.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/kafka"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Publisher struct {
	producer EventPublisher
	opts     tokenizer.Options
	logger   *slog.Logger
}

func New(producer EventPublisher, opts tokenizer.Options) *Publisher {
	return &Publisher{
		producer: producer,
		opts:     opts,
		logger:   logger.WithComponent("publisher"),
	}
}

// Ingest assigns a document id when none is given, tokenizes the title and
// body, and publishes an OccurrenceEvent keyed by the document id.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	docID := req.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}
	text := strings.TrimSpace(req.Title + " " + req.Body)
	occs := tokenizer.TokenizeWithOptions(docID, text, p.opts)
	if len(occs) == 0 {
		return nil, apperrors.New(apperrors.ErrDocumentEmpty, http.StatusUnprocessableEntity,
			"document contains no words to pair")
	}
	raw, err := json.Marshal(occs)
	if err != nil {
		return nil, fmt.Errorf("encoding occurrences for %s: %w", docID, err)
	}

	event := kafka.Event{
		Key: docID,
		Value: ingestion.OccurrenceEvent{
			DocumentID:  docID,
			Occurrences: raw,
			IngestedAt:  time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish occurrence event",
			"doc_id", docID,
			"error", err,
		)
		return nil, apperrors.Newf(apperrors.ErrUnavailable, http.StatusServiceUnavailable,
			"publishing document %s: %v", docID, err)
	}
	return &ingestion.IngestResponse{
		DocumentID:  docID,
		Status:      "ACCEPTED",
		Occurrences: len(occs),
	}, nil
}
