package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
)

// Result is the generator output for one batch.
type Result struct {
	DocumentID  string
	Occurrences int
	Pairs       []cooccur.Pair
}

// Runner fans batches out to a bounded number of goroutines. Documents are
// independent, so the only shared state is the metrics collectors.
type Runner struct {
	gen     *cooccur.Generator
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRunner returns a Runner using gen. A non-positive workers count uses
// GOMAXPROCS. m may be nil.
func NewRunner(gen *cooccur.Generator, workers int, m *metrics.Metrics) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		gen:     gen,
		workers: workers,
		metrics: m,
		logger:  logger.WithComponent("pipeline-runner"),
	}
}

// Run generates pairs for every batch and returns the results in batch
// order. It stops early with ctx's error if ctx ends first.
func (r *Runner) Run(ctx context.Context, batches []Batch) ([]Result, error) {
	results := make([]Result, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	start := time.Now()
	for i, b := range batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running pair generation: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("running pair generation: %w", err)
	}

	total := 0
	for _, res := range results {
		total += len(res.Pairs)
	}
	r.logger.Info("pair generation complete",
		"documents", len(batches),
		"pairs", total,
		"workers", r.workers,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return results, nil
}

func (r *Runner) runOne(b Batch) Result {
	start := time.Now()
	pairs := r.gen.Generate(b.Occurrences)
	outcome := metrics.OutcomeGenerated
	if pairs == nil {
		outcome = metrics.OutcomeEmpty
	}
	r.metrics.ObserveDocument(outcome, len(b.Occurrences), len(pairs), time.Since(start).Seconds())
	return Result{
		DocumentID:  b.DocumentID,
		Occurrences: len(b.Occurrences),
		Pairs:       pairs,
	}
}

// Flatten concatenates the pairs of every result in order.
func Flatten(results []Result) []cooccur.Pair {
	n := 0
	for _, res := range results {
		n += len(res.Pairs)
	}
	out := make([]cooccur.Pair, 0, n)
	for _, res := range results {
		out = append(out, res.Pairs...)
	}
	return out
}
