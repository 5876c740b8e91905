package urlcheck

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoises reachable results per URL until Reset and collapses
// concurrent checks of the same URL into one request. Failed checks are never
// cached, so a broken link is probed again on the next call.
type Cache struct {
	registry *Registry

	group singleflight.Group

	mu      sync.RWMutex
	results map[string]Result
}

// NewCache creates a cache in front of registry.
func NewCache(registry *Registry) *Cache {
	return &Cache{
		registry: registry,
		results:  make(map[string]Result),
	}
}

// Registry returns the checker chain behind the cache.
func (c *Cache) Registry() *Registry {
	return c.registry
}

// Check returns the result for raw. A shared check runs detached from the
// cancellation of whichever caller started it, bounded by the checkers' own
// timeouts; a caller whose ctx ends stops waiting and gets ctx's error.
func (c *Cache) Check(ctx context.Context, raw string) Result {
	c.mu.RLock()
	res, ok := c.results[raw]
	c.mu.RUnlock()
	if ok {
		return res
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Result{Err: fmt.Errorf("parse url: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(raw, func() (any, error) {
		res := c.registry.Check(flightCtx, u)
		if res.OK() {
			c.mu.Lock()
			c.results[raw] = res
			c.mu.Unlock()
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case flight := <-ch:
		//nolint:forcetypeassert // the group only stores Result
		return flight.Val.(Result)
	}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Reset forgets every cached result.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string]Result)
}
