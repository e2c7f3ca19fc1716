package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	k, err := NewKey("documents/c1", "../../etc/Passport scan.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k, "documents/c1/"), k)
	assert.True(t, strings.HasSuffix(k, "-Passport_scan.PDF"), k)
	assert.True(t, validKey(k))

	k2, _ := NewKey("documents/c1", "../../etc/Passport scan.PDF")
	assert.NotEqual(t, k, k2)

	k, err = NewKey("images", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(k, "-file"), k)
}

func TestValidKey(t *testing.T) {
	assert.True(t, validKey("a/b.txt"))
	assert.False(t, validKey(""))
	assert.False(t, validKey("/abs"))
	assert.False(t, validKey("a/../b"))
	assert.False(t, validKey("a//b"))
}

func TestLocal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	require.NoError(t, l.Put(ctx, "images/p1/x.jpg", strings.NewReader("jpeg"), 4, "image/jpeg"))
	rc, err := l.Open(ctx, "images/p1/x.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, "http://localhost:8080/files/images/p1/x.jpg", l.URL("images/p1/x.jpg"))

	require.NoError(t, l.Delete(ctx, "images/p1/x.jpg"))
	_, err = l.Open(ctx, "images/p1/x.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, l.Delete(ctx, "images/p1/x.jpg"), "deleting twice is fine")
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, l.Put(context.Background(), "../escape", strings.NewReader("x"), 1, ""))
}
