// Package cache is the in-memory TTL cache shared by the upstream fetchers.
//
// Entries expire lazily: an entry older than its TTL is treated as absent and
// removed on the next Get. There is no background sweep.
package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wolfhub_cache_hits_total",
		Help: "Number of cache lookups that found a fresh entry",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wolfhub_cache_misses_total",
		Help: "Number of cache lookups that found no entry or a stale one",
	})

	cacheExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wolfhub_cache_expirations_total",
		Help: "Number of stale entries evicted on access",
	})
)

const defaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Entries     int   `json:"entries"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Expirations int64 `json:"expirations"`
}

// Cache maps string keys to opaque values with a per-entry TTL.
// Values must not be mutated after Set.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	defaultTTL time.Duration
	now        func() time.Time

	hits        int64
	misses      int64
	expirations int64
}

type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithDefaultTTL sets the TTL used when Set is given a non-positive ttl
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it is still fresh.
// A stale entry is deleted as a side effect.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		cacheMisses.Inc()
		return nil, false
	}

	if !e.fresh(c.now()) {
		delete(c.entries, key)
		c.misses++
		c.expirations++
		cacheMisses.Inc()
		cacheExpirations.Inc()
		return nil, false
	}

	c.hits++
	cacheHits.Inc()
	return e.value, true
}

// lookup is Get without touching the counters
func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.fresh(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. Last write wins.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:    value,
		storedAt: c.now(),
		ttl:      ttl,
	}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len counts stored entries, including stale ones not yet evicted
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:     len(c.entries),
		Hits:        c.hits,
		Misses:      c.misses,
		Expirations: c.expirations,
	}
}
