// Package reccache stores ranked recommendation ids in a key-value store.
package reccache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
)

const keySegment = "rec_cache:"

// DefaultTTL applies when New receives a non-positive ttl.
const DefaultTTL = 10 * time.Minute

// store is the consumer interface for the recommendation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache implements recommend.Cache. Store errors are logged and reported as misses.
type Cache struct {
	store  store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a recommendation cache writing under <prefix>rec_cache:.
// An empty prefix selects domain.KeyPrefix.
func New(s store, prefix string, ttl time.Duration, logger *zap.Logger) *Cache {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, prefix: prefix + keySegment, ttl: ttl, logger: logger}
}

// Lookup returns cached ids for the query, if present.
func (c *Cache) Lookup(ctx context.Context, fingerprint string, history []int, k int) ([]int, bool) {
	key := c.prefix + cacheKey(fingerprint, history, k)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Recommendation cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		c.logger.Warn("Corrupt recommendation cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return ids, true
}

// Store saves ids for the query with the configured TTL.
func (c *Cache) Store(ctx context.Context, fingerprint string, history []int, k int, ids []int) {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		c.logger.Warn("Failed to encode recommendation cache entry", zap.Error(err))
		return
	}

	key := c.prefix + cacheKey(fingerprint, history, k)
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Recommendation cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey hashes the catalog fingerprint, k and the distinct history ids.
// Ranking depends only on the set of viewed ids, so order and repeats are ignored.
func cacheKey(fingerprint string, history []int, k int) string {
	ids := slices.Clone(history)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	h := sha256.New()
	h.Write([]byte(fingerprint))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(k)))
	h.Write(buf[:])
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(id)))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
