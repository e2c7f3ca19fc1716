// Package storage keeps uploaded files: property images and client documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

var ErrNotFound = errors.New("object not found")

type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of the object.
	URL(key string) string
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewKey returns prefix/<random>-<sanitized name>.
func NewKey(prefix, filename string) (string, error) {
	id, err := nanoid.Generate(keyAlphabet, 12)
	if err != nil {
		return "", fmt.Errorf("storage key: %w", err)
	}
	name := sanitize(filename)
	if name == "" {
		name = "file"
	}
	return path.Join(prefix, id+"-"+name), nil
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}

// KeyFromURL recovers the object key from a URL produced by s.URL.
func KeyFromURL(s Storage, url string) (string, bool) {
	base := s.URL("")
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	return key, validKey(key)
}
