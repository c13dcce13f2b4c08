package index

import (
	"context"
	"log/slog"
	"sync"
)

// BuildFunc constructs the index for one document key. It is invoked at most
// once per key for the lifetime of the cache, unless it fails.
type BuildFunc func(ctx context.Context, key string) (Index, error)

// Cache maps document keys to built indexes. Builds are single-flight:
// concurrent callers for the same uncached key wait for the first caller's
// build and share its result instead of starting another one.
//
// There is no eviction. The unit catalog is small and fixed, so unbounded
// growth is bounded in practice; a larger catalog would want an LRU here.
type Cache struct {
	build  BuildFunc
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready chan struct{} // closed when the build finishes
	idx   Index
	err   error
}

// NewCache creates an index cache around the given build function.
func NewCache(build BuildFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		build:   build,
		logger:  logger,
		entries: make(map[string]*cacheEntry),
	}
}

// GetOrBuild returns the index for key, building it on first access. A failed
// build is not cached, so a later call may retry; callers that were waiting
// on the failed build receive its error.
func (c *Cache) GetOrBuild(ctx context.Context, key string) (Index, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			return e.idx, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	c.logger.Info("building document index", "key", key)
	e.idx, e.err = c.build(ctx, key)
	if e.err != nil {
		c.logger.Warn("index build failed", "key", key, "error", e.err)
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	} else {
		c.logger.Info("document index ready", "key", key, "chunks", e.idx.Len())
	}
	close(e.ready)

	return e.idx, e.err
}

// Len reports how many keys currently have an entry (built or in flight).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
