package client

import (
	"context"
	"sync"
	"time"
)

// ViewCache holds one view's copy of server data. The first Get loads it,
// later Gets return the same copy until Refresh or Invalidate.
type ViewCache[T any] struct {
	load func(ctx context.Context) (T, error)
	now  func() time.Time

	mu        sync.Mutex
	value     T
	loaded    bool
	fetchedAt time.Time
}

func NewViewCache[T any](load func(ctx context.Context) (T, error)) *ViewCache[T] {
	return &ViewCache[T]{load: load, now: time.Now}
}

func (c *ViewCache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.value, nil
	}
	return c.fetchLocked(ctx)
}

// Refresh reloads the data. On failure the previous copy is kept.
func (c *ViewCache[T]) Refresh(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchLocked(ctx)
}

// Invalidate makes the next Get load again.
func (c *ViewCache[T]) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// FetchedAt reports when the current copy was loaded, zero if never.
func (c *ViewCache[T]) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}

func (c *ViewCache[T]) fetchLocked(ctx context.Context) (T, error) {
	v, err := c.load(ctx)
	if err != nil {
		return c.value, err
	}
	c.value = v
	c.loaded = true
	c.fetchedAt = c.now()
	return v, nil
}
