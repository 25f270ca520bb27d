// Package cache provides the known-key caches that let the write path
// skip re-writing reverse-index entries for a (row key, metric name, or
// tag name) it has already indexed.
//
// Every cache here is a pure optimization: a cache miss must never be
// treated as "does not exist" by a caller outside this package, only as
// "write the index entry (again) to be safe". Insert must only be
// called after the corresponding index write has been submitted to the
// store, never before — an early insert could let a concurrent reader
// observe the cache before the write lands, following this dialect's
// indexed-lru idiom (compare other_examples's btts.go, indexed *lru.Cache).
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// KeyCache is the capability the write path consults: has this key
// already been indexed? NewNoopCache satisfies it with an always-miss
// implementation, so a caller can substitute it in place of a real
// KnownKeyCache when a test needs every index write to actually run
// (no hit ever suppresses it), changing only performance, never
// correctness (§9).
type KeyCache interface {
	IsKnown(key string) bool
	Insert(key string)
}

// KnownKeyCache remembers whether a key has already been indexed. It is
// false-negative safe (a miss just costs a redundant write) and must
// never produce a false positive (a hit must mean the write really
// happened). Entries fall out of the cache either by LRU eviction
// (size bound) or, if ttl > 0, by age (time bound) — §4.3's
// "size-or-time" expiry requirement.
type KnownKeyCache struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
	now   func() time.Time
}

// NewKnownKeyCache builds an in-memory LRU cache holding up to size
// entries with no time-based expiry (size bound only). size <= 0 is
// rejected by the underlying library, so callers must pass a positive
// capacity.
func NewKnownKeyCache(size int) (*KnownKeyCache, error) {
	return newKnownKeyCache(size, 0, time.Now)
}

// NewKnownKeyCacheWithTTL builds a cache that also expires entries
// older than ttl, evaluated lazily on the next IsKnown lookup.
func NewKnownKeyCacheWithTTL(size int, ttl time.Duration) (*KnownKeyCache, error) {
	return newKnownKeyCache(size, ttl, time.Now)
}

func newKnownKeyCache(size int, ttl time.Duration, now func() time.Time) (*KnownKeyCache, error) {
	c, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &KnownKeyCache{cache: c, ttl: ttl, now: now}, nil
}

// IsKnown reports whether key was previously marked via Insert and has
// not since expired.
func (c *KnownKeyCache) IsKnown(key string) bool {
	expiresAt, ok := c.cache.Get(key)
	if !ok {
		return false
	}
	if c.ttl > 0 && !c.now().Before(expiresAt) {
		c.cache.Remove(key)
		return false
	}
	return true
}

// Insert marks key as known. Callers must only insert once the
// corresponding write has already been submitted to the store.
func (c *KnownKeyCache) Insert(key string) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.cache.Add(key, expiresAt)
}

// Len reports the number of entries currently cached, for metrics and
// tests.
func (c *KnownKeyCache) Len() int {
	return c.cache.Len()
}

// noopCache always misses and never retains an Insert; substituting it
// for a real KnownKeyCache forces the write path to re-issue every
// index write every time, which is correct, just slower (§9).
type noopCache struct{}

// NewNoopCache returns a KeyCache that never reports a key as known.
func NewNoopCache() KeyCache { return noopCache{} }

func (noopCache) IsKnown(string) bool { return false }
func (noopCache) Insert(string)       {}

// Caches bundles the three known-key caches the write path consults:
// one for full row keys, one for metric names, one for tag names.
type Caches struct {
	RowKeys     KeyCache
	MetricNames KeyCache
	TagNames    KeyCache
}

// Sizes configures the capacity of each of the three caches.
type Sizes struct {
	RowKeys     int
	MetricNames int
	TagNames    int
}

// DefaultSizes matches the capacities the write path uses absent
// explicit configuration.
func DefaultSizes() Sizes {
	return Sizes{
		RowKeys:     1_000_000,
		MetricNames: 1_000,
		TagNames:    1_000,
	}
}

// NewCaches builds the three known-key caches from sizes.
func NewCaches(sizes Sizes) (*Caches, error) {
	rowKeys, err := NewKnownKeyCache(sizes.RowKeys)
	if err != nil {
		return nil, err
	}
	metricNames, err := NewKnownKeyCache(sizes.MetricNames)
	if err != nil {
		return nil, err
	}
	tagNames, err := NewKnownKeyCache(sizes.TagNames)
	if err != nil {
		return nil, err
	}
	return &Caches{RowKeys: rowKeys, MetricNames: metricNames, TagNames: tagNames}, nil
}

// NewNoopCaches builds a Caches bundle where every lookup misses,
// useful for tests that want to verify every index write actually runs
// without standing up a real cache.
func NewNoopCaches() *Caches {
	return &Caches{
		RowKeys:     NewNoopCache(),
		MetricNames: NewNoopCache(),
		TagNames:    NewNoopCache(),
	}
}
