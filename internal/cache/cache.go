// Package cache is a small key/value cache for computed views (analytics)
// and replayable HTTP responses. Values are opaque bytes; Load adds JSON
// read-through on top.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// SetNX stores val only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Load returns the cached value for key or computes, stores and returns it.
// With refresh set the cached value is ignored and overwritten.
// A failing cache never fails the call, only the loader can.
func Load[T any](ctx context.Context, c Cache, key string, ttl time.Duration, refresh bool, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c != nil && !refresh {
		if raw, ok, err := c.Get(ctx, key); err == nil && ok {
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		}
	}
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = c.Set(ctx, key, raw, ttl)
		}
	}
	return out, nil
}

func Key(parts ...any) string {
	k := ""
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += fmt.Sprint(p)
	}
	return k
}
