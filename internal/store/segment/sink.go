package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
)

const defaultFlushPairs = 50000

// Sink buffers pairs in memory and flushes them to a new segment once the
// buffer reaches FlushPairs, on every FlushInterval tick, and on Close.
// Lookups span every segment in the data directory.
type Sink struct {
	writer  *Writer
	cfg     config.SegmentsConfig
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	pending []cooccur.Pair

	readerMu sync.RWMutex
	readers  []*Reader
}

// OpenSink creates the data directory if needed and opens every existing
// segment in it.
func OpenSink(cfg config.SegmentsConfig, m *metrics.Metrics) (*Sink, error) {
	if cfg.FlushPairs <= 0 {
		cfg.FlushPairs = defaultFlushPairs
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating segment data directory: %w", err)
	}
	s := &Sink{
		writer:  NewWriter(cfg.DataDir),
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithComponent("segment-sink"),
	}
	if err := s.loadExistingSegments(); err != nil {
		return nil, fmt.Errorf("loading existing segments: %w", err)
	}
	return s, nil
}

// Add buffers pairs, flushing when the buffer is full. Once buffered the
// pairs are owned by the sink: a failed flush keeps them pending for the
// next flush and is logged, not returned, so callers never add them twice.
func (s *Sink) Add(pairs []cooccur.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	s.mu.Lock()
	s.pending = append(s.pending, pairs...)
	full := len(s.pending) >= s.cfg.FlushPairs
	s.mu.Unlock()
	if full {
		if err := s.Flush(); err != nil {
			s.logger.Error("flush failed, pairs stay buffered",
				"pending", s.Pending(),
				"error", err,
			)
		}
	}
	return nil
}

// Flush writes the buffered pairs to a new segment. An empty buffer is a
// no-op. On failure the pairs stay buffered for the next attempt.
func (s *Sink) Flush() error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	name, err := s.writer.Write(BuildEntries(pending))
	if err != nil {
		s.requeue(pending)
		s.recordFlush("error")
		return fmt.Errorf("writing segment: %w", err)
	}
	reader, err := OpenReader(filepath.Join(s.cfg.DataDir, name))
	if err != nil {
		s.recordFlush("error")
		return fmt.Errorf("opening new segment for reading: %w", err)
	}
	s.readerMu.Lock()
	s.readers = append(s.readers, reader)
	active := len(s.readers)
	s.readerMu.Unlock()
	s.recordFlush("ok")
	s.logger.Info("segment flushed",
		"segment", name,
		"pairs", reader.Pairs(),
		"docs", reader.DocCount(),
		"active_segments", active,
	)
	return nil
}

func (s *Sink) requeue(pairs []cooccur.Pair) {
	s.mu.Lock()
	s.pending = append(pairs, s.pending...)
	s.mu.Unlock()
}

// Pending reports how many pairs are buffered.
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Lookup gathers the postings of (word1, word2) across all flushed segments,
// oldest segment first.
func (s *Sink) Lookup(word1, word2 string) ([]Posting, error) {
	s.readerMu.RLock()
	readers := make([]*Reader, len(s.readers))
	copy(readers, s.readers)
	s.readerMu.RUnlock()

	var all []Posting
	for _, r := range readers {
		postings, err := r.Lookup(word1, word2)
		if err != nil {
			s.logger.Error("segment lookup failed", "segment", r.Path(), "error", err)
			continue
		}
		all = append(all, postings...)
	}
	return all, nil
}

// StartFlushLoop flushes on every FlushInterval tick until ctx ends, then
// performs a final flush. A non-positive interval disables the loop.
func (s *Sink) StartFlushLoop(ctx context.Context) {
	if s.cfg.FlushInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.FlushInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("flush loop stopping, performing final flush")
				if err := s.Flush(); err != nil {
					s.logger.Error("final flush failed", "error", err)
				}
				return
			case <-ticker.C:
				if err := s.Flush(); err != nil {
					s.logger.Error("periodic flush failed", "error", err)
				}
			}
		}
	}()
}

// Close flushes what is buffered and closes every reader.
func (s *Sink) Close() error {
	flushErr := s.Flush()
	s.readerMu.Lock()
	defer s.readerMu.Unlock()
	for _, reader := range s.readers {
		if err := reader.Close(); err != nil {
			s.logger.Error("closing segment reader", "error", err)
		}
	}
	s.readers = nil
	return flushErr
}

func (s *Sink) loadExistingSegments() error {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("reading data directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), FileExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		reader, err := OpenReader(filepath.Join(s.cfg.DataDir, name))
		if err != nil {
			s.logger.Error("skipping unreadable segment", "segment", name, "error", err)
			continue
		}
		s.readers = append(s.readers, reader)
	}
	if len(s.readers) > 0 {
		s.logger.Info("loaded existing segments", "count", len(s.readers))
	}
	return nil
}

func (s *Sink) recordFlush(status string) {
	if s.metrics != nil {
		s.metrics.SegmentFlushesTotal.WithLabelValues(status).Inc()
	}
}
