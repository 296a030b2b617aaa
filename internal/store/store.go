// Package store persists generated word pairs in PostgreSQL and answers
// per-document and per-word queries over them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/resilience"
)

const pairsTable = "word_pairs"

const schema = `
CREATE TABLE IF NOT EXISTS word_pairs (
    document_id TEXT    NOT NULL,
    seq         INTEGER NOT NULL,
    word1       TEXT    NOT NULL,
    word2       TEXT    NOT NULL,
    distance    INTEGER NOT NULL,
    PRIMARY KEY (document_id, seq)
);
CREATE INDEX IF NOT EXISTS word_pairs_word1_idx ON word_pairs (word1);
CREATE INDEX IF NOT EXISTS word_pairs_word2_idx ON word_pairs (word2);
`

// Neighbor summarises how often another word co-occurs with a query word.
type Neighbor struct {
	Word        string `json:"word"`
	Count       int    `json:"count"`
	MinDistance int    `json:"min_distance"`
}

// PairStore writes pairs through a retry loop and a circuit breaker. Writes
// for one document replace any earlier pairs of that document, so
// redelivered messages are idempotent.
type PairStore struct {
	db      *postgres.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewPairStore(db *postgres.Client, m *metrics.Metrics) *PairStore {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
	if m != nil {
		cbCfg.OnStateChange = func(name string, _, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	return &PairStore{
		db:      db,
		breaker: resilience.NewCircuitBreaker("pair-store", cbCfg),
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Retryable: func(err error) bool {
				return !errors.Is(err, resilience.ErrCircuitOpen)
			},
		},
		metrics: m,
		logger:  logger.WithComponent("pair-store"),
	}
}

// EnsureSchema creates the pairs table and its indexes if missing.
func (s *PairStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating %s schema: %w", pairsTable, err)
	}
	return nil
}

// SavePairs replaces the stored pairs of docID with pairs in one transaction.
// An empty pairs slice clears the document.
func (s *PairStore) SavePairs(ctx context.Context, docID string, pairs []cooccur.Pair) error {
	err := resilience.Retry(ctx, "save-pairs", s.retry, func() error {
		return s.breaker.Execute(func() error {
			return s.db.InTx(ctx, func(tx *sql.Tx) error {
				return copyPairs(ctx, tx, docID, pairs)
			})
		})
	})
	if err != nil {
		s.recordWrite("error")
		return fmt.Errorf("saving pairs for document %s: %w", docID, err)
	}
	s.recordWrite("ok")
	s.logger.Debug("pairs saved", "document_id", docID, "count", len(pairs))
	return nil
}

func copyPairs(ctx context.Context, tx *sql.Tx, docID string, pairs []cooccur.Pair) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM word_pairs WHERE document_id = $1`, docID); err != nil {
		return fmt.Errorf("clearing previous pairs: %w", err)
	}
	if len(pairs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(pairsTable, "document_id", "seq", "word1", "word2", "distance"))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}
	defer stmt.Close()
	for i, p := range pairs {
		if _, err := stmt.ExecContext(ctx, docID, i, p.Word1, p.Word2, p.Distance); err != nil {
			return fmt.Errorf("copying pair %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flushing copy: %w", err)
	}
	return nil
}

// PairsForDocument returns a document's pairs in generation order.
func (s *PairStore) PairsForDocument(ctx context.Context, docID string) ([]cooccur.Pair, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT word1, word2, distance FROM word_pairs WHERE document_id = $1 ORDER BY seq`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pairs for %s: %w", docID, err)
	}
	defer rows.Close()

	var pairs []cooccur.Pair
	for rows.Next() {
		p := cooccur.Pair{DocumentID: docID}
		if err := rows.Scan(&p.Word1, &p.Word2, &p.Distance); err != nil {
			return nil, fmt.Errorf("scanning pair row: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Neighbors returns the words that co-occur with word in either position,
// most frequent first. word is folded the same way the generator folds it.
func (s *PairStore) Neighbors(ctx context.Context, word string, limit int) ([]Neighbor, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT other, COUNT(*) AS n, MIN(distance)
		FROM (
			SELECT word2 AS other, distance FROM word_pairs WHERE word1 = $1
			UNION ALL
			SELECT word1 AS other, distance FROM word_pairs WHERE word2 = $1 AND word1 <> $1
		) t
		GROUP BY other
		ORDER BY n DESC, other
		LIMIT $2`,
		cooccur.Normalize(word), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors of %s: %w", word, err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.Word, &n.Count, &n.MinDistance); err != nil {
			return nil, fmt.Errorf("scanning neighbor row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PairStore) recordWrite(status string) {
	if s.metrics != nil {
		s.metrics.StoreWritesTotal.WithLabelValues(status).Inc()
	}
}
