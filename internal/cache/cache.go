// Package cache memoizes generated pairs per document. Lookups hit an
// in-process LRU first and Redis second; concurrent misses for the same key
// share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/redis"
)

const (
	keyPrefix           = "pairs:"
	defaultLocalEntries = 1024
)

// RemoteStore is the shared tier. *pkgredis.Client satisfies it.
type RemoteStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type PairCache struct {
	local   *lru.Cache[string, []cooccur.Pair]
	remote  RemoteStore
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New builds a PairCache. remote may be nil, leaving only the local tier.
func New(remote RemoteStore, cfg config.RedisConfig, m *metrics.Metrics) (*PairCache, error) {
	size := cfg.LocalEntries
	if size <= 0 {
		size = defaultLocalEntries
	}
	local, err := lru.New[string, []cooccur.Pair](size)
	if err != nil {
		return nil, fmt.Errorf("creating local pair cache: %w", err)
	}
	return &PairCache{
		local:   local,
		remote:  remote,
		ttl:     cfg.CacheTTL,
		metrics: m,
		logger:  logger.WithComponent("pair-cache"),
	}, nil
}

// Key derives the cache key for one document's raw occurrence payload at a
// given window size.
func Key(docID string, maxDistance int, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(docID))
	h.Write([]byte{0})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(maxDistance))
	h.Write(buf[:])
	h.Write(payload)
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}

// Get looks key up in both tiers. A Redis hit is promoted to the local tier.
func (c *PairCache) Get(ctx context.Context, key string) ([]cooccur.Pair, bool) {
	if pairs, ok := c.local.Get(key); ok {
		c.recordHit("local")
		return pairs, true
	}
	if c.remote == nil {
		c.recordMiss()
		return nil, false
	}
	data, err := c.remote.GetBytes(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var pairs []cooccur.Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.local.Add(key, pairs)
	c.recordHit("redis")
	return pairs, true
}

// Set stores pairs in both tiers. Redis errors are logged only.
func (c *PairCache) Set(ctx context.Context, key string, pairs []cooccur.Pair) {
	c.local.Add(key, pairs)
	if c.remote == nil {
		return
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.remote.SetBytes(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached pairs for key, or runs computeFn once for
// all concurrent callers and caches its result. The bool reports a hit.
func (c *PairCache) GetOrCompute(
	ctx context.Context,
	key string,
	computeFn func() ([]cooccur.Pair, error),
) ([]cooccur.Pair, bool, error) {
	if pairs, ok := c.Get(ctx, key); ok {
		return pairs, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		if pairs, ok := c.local.Get(key); ok {
			return pairs, nil
		}
		pairs, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, pairs)
		return pairs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]cooccur.Pair), false, nil
}

// Invalidate purges the local tier and every pairs:* key in Redis.
func (c *PairCache) Invalidate(ctx context.Context) error {
	c.local.Purge()
	if c.remote == nil {
		return nil
	}
	deleted, err := c.remote.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating pair cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *PairCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *PairCache) recordHit(tier string) {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(tier).Inc()
	}
}

func (c *PairCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
