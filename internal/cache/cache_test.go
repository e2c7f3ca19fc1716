package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemory_SetNX(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ok, err := m.SetNX(ctx, "k", []byte("x"), 0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.SetNX(ctx, "k", []byte("y"), 0)
	require.NoError(t, err)
	assert.False(t, ok)
	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("x"), v)
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "analytics:p1:funnel", []byte("1"), 0)
	_ = m.Set(ctx, "analytics:p2:funnel", []byte("1"), 0)
	_ = m.Set(ctx, "idem:abc", []byte("1"), 0)

	require.NoError(t, m.DeletePrefix(ctx, "analytics:"))
	_, ok, _ := m.Get(ctx, "analytics:p1:funnel")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "idem:abc")
	assert.True(t, ok)
}

func TestMemory_DeleteExactKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "idem:u1:k1", []byte("1"), 0)
	_ = m.Set(ctx, "idem:u1:k10", []byte("1"), 0)

	require.NoError(t, m.Delete(ctx, "idem:u1:k1"))
	_, ok, _ := m.Get(ctx, "idem:u1:k1")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "idem:u1:k10")
	assert.True(t, ok, "keys sharing the prefix survive")
}

type point struct {
	N int `json:"n"`
}

func TestLoad_ReadThroughAndRefresh(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	loader := func(context.Context) (point, error) {
		calls++
		return point{N: calls}, nil
	}

	got, err := Load(ctx, m, "k", time.Minute, false, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, got.N)

	got, err = Load(ctx, m, "k", time.Minute, false, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, got.N, "served from cache")

	got, err = Load(ctx, m, "k", time.Minute, true, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, got.N)

	got, _ = Load(ctx, m, "k", time.Minute, false, loader)
	assert.Equal(t, 2, got.N, "refresh overwrote the cached value")
}

func TestLoad_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := Load(ctx, m, "k", time.Minute, false, func(context.Context) (point, error) {
		return point{}, errors.New("db down")
	})
	assert.Error(t, err)
	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLoad_NilCache(t *testing.T) {
	got, err := Load(context.Background(), nil, "k", 0, false, func(context.Context) (point, error) {
		return point{N: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.N)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "analytics:p1:trend:7days", Key("analytics", "p1", "trend", "7days"))
}
