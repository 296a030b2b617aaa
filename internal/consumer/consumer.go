// Package consumer reads occurrence events from Kafka, generates each
// document's pairs, and hands them to the configured sinks.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/tracing"
)

// PairStore persists one document's pairs. *store.PairStore satisfies it.
type PairStore interface {
	SavePairs(ctx context.Context, docID string, pairs []cooccur.Pair) error
}

// SegmentSink buffers pairs for on-disk segments. *segment.Sink satisfies it.
type SegmentSink interface {
	Add(pairs []cooccur.Pair) error
}

// EventPublisher publishes pair events. *kafka.Producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Sinks selects where generated pairs go. Nil fields are skipped.
type Sinks struct {
	Cache     *cache.PairCache
	Store     PairStore
	Segments  SegmentSink
	Publisher EventPublisher
	Metrics   *metrics.Metrics
}

// Handler turns OccurrenceEvents into pairs.
type Handler struct {
	gen    *cooccur.Generator
	sinks  Sinks
	logger *slog.Logger
}

func NewHandler(gen *cooccur.Generator, sinks Sinks) *Handler {
	return &Handler{
		gen:    gen,
		sinks:  sinks,
		logger: logger.WithComponent("pair-consumer"),
	}
}

// Handle is a kafka.MessageHandler. Undecodable events and malformed
// occurrence sets are logged and acknowledged; sink failures are returned so
// the consumer retries the message before committing it.
func (h *Handler) Handle(ctx context.Context, key []byte, value []byte) error {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "pairgen.handle")
	defer func() {
		span.End()
		span.Log(h.logger)
	}()
	event, err := kafka.DecodeJSON[ingestion.OccurrenceEvent](value)
	if err != nil {
		h.logger.Error("failed to decode occurrence event", "error", err, "key", string(key))
		h.sinks.Metrics.ObserveDocument(metrics.OutcomeMalformed, 0, 0, time.Since(start).Seconds())
		return nil
	}
	occs, err := cooccur.DecodeOccurrences(event.Occurrences)
	if err != nil {
		h.logger.Warn("expected a list of word/document/position triplets",
			"doc_id", event.DocumentID,
			"error", err,
		)
		h.sinks.Metrics.ObserveDocument(metrics.OutcomeMalformed, 0, 0, time.Since(start).Seconds())
		return nil
	}
	docID := event.DocumentID
	if docID == "" && len(occs) > 0 {
		docID = occs[0].DocumentID
	}
	span.SetAttr("doc_id", docID)
	span.SetAttr("occurrences", len(occs))

	pairs, err := h.generate(ctx, docID, event, occs)
	if err != nil {
		h.sinks.Metrics.ObserveDocument(metrics.OutcomeFailed, len(occs), 0, time.Since(start).Seconds())
		return err
	}
	if err := h.deliver(ctx, docID, pairs); err != nil {
		h.sinks.Metrics.ObserveDocument(metrics.OutcomeFailed, len(occs), len(pairs), time.Since(start).Seconds())
		return err
	}

	outcome := metrics.OutcomeGenerated
	if len(pairs) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	h.sinks.Metrics.ObserveDocument(outcome, len(occs), len(pairs), time.Since(start).Seconds())
	h.logger.Info("document pairs generated",
		"doc_id", docID,
		"occurrences", len(occs),
		"pairs", len(pairs),
	)
	return nil
}

func (h *Handler) generate(ctx context.Context, docID string, event ingestion.OccurrenceEvent, occs []cooccur.Occurrence) ([]cooccur.Pair, error) {
	ctx, span := tracing.StartChildSpan(ctx, "generate")
	defer span.End()
	if h.sinks.Cache == nil {
		return h.gen.Generate(occs), nil
	}
	key := cache.Key(docID, h.gen.MaxDistance(), event.Occurrences)
	pairs, hit, err := h.sinks.Cache.GetOrCompute(ctx, key, func() ([]cooccur.Pair, error) {
		return h.gen.Generate(occs), nil
	})
	if err != nil {
		return nil, fmt.Errorf("generating pairs for %s: %w", docID, err)
	}
	span.SetAttr("cache_hit", hit)
	return pairs, nil
}

func (h *Handler) deliver(ctx context.Context, docID string, pairs []cooccur.Pair) error {
	ctx, span := tracing.StartChildSpan(ctx, "deliver")
	defer span.End()
	span.SetAttr("pairs", len(pairs))
	if h.sinks.Store != nil {
		if err := h.sinks.Store.SavePairs(ctx, docID, pairs); err != nil {
			return fmt.Errorf("storing pairs for %s: %w", docID, err)
		}
	}
	if h.sinks.Segments != nil {
		if err := h.sinks.Segments.Add(pairs); err != nil {
			return fmt.Errorf("buffering pairs for %s: %w", docID, err)
		}
	}
	if h.sinks.Publisher != nil && len(pairs) > 0 {
		event := kafka.Event{
			Key: docID,
			Value: ingestion.PairEvent{
				DocumentID:  docID,
				Pairs:       pairs,
				MaxDistance: h.gen.MaxDistance(),
				GeneratedAt: time.Now().UTC(),
			},
		}
		if err := h.sinks.Publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publishing pairs for %s: %w", docID, err)
		}
	}
	return nil
}

// PairConsumer wraps a Kafka consumer to drive the generation worker.
type PairConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *PairConsumer {
	return &PairConsumer{
		consumer: kafkaConsumer,
		logger:   logger.WithComponent("pair-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (pc *PairConsumer) Start(ctx context.Context) error {
	pc.logger.Info("pair consumer starting")
	return pc.consumer.Start(ctx)
}
