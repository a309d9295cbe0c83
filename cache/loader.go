package cache

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key on a cache miss
type LoadFunc func(ctx context.Context) (any, error)

// Loader reads through a Cache. Concurrent misses for the same key share one
// call to the LoadFunc. The shared call is detached from the caller's context,
// so a caller that gives up does not cancel it and the result still lands in
// the cache for the next caller.
type Loader struct {
	cache *Cache
	group singleflight.Group
}

func NewLoader(c *Cache) *Loader {
	return &Loader{cache: c}
}

func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load returns the fresh cached value for key, or calls load and stores its
// result with the given ttl. Errors are not cached.
func (l *Loader) Load(ctx context.Context, key string, ttl time.Duration, load LoadFunc) (any, error) {
	if value, ok := l.cache.Get(key); ok {
		log.WithFields(log.Fields{"key": key}).Debug("Cache hit")
		return value, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		// Another flight may have filled the key between our miss and now
		if value, ok := l.cache.lookup(key); ok {
			return value, nil
		}

		log.WithFields(log.Fields{"key": key}).Debug("Cache miss, loading")
		value, err := load(detached)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, value, ttl)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.WithFields(log.Fields{"key": key}).Debug("Shared in-flight load")
		}
		return res.Val, res.Err
	}
}
