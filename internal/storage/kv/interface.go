// internal/storage/kv/interface.go
package kv

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/quantedge/quantedge/internal/core"
)

// Store defines the interface for durable key-value backends
type Store interface {
	// Get returns the value stored at key, or an error matching
	// core.ErrNotFound when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any earlier value in one write
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// notFound wraps core.ErrNotFound with the missing key.
func notFound(key string) error {
	return core.WrapError(core.ErrNotFound, fmt.Errorf("key %q", key))
}

// cleanKey rejects keys that are empty or could escape a backend's
// namespace. Keys are slash separated.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("kv: empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("kv: key %q must be relative", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("kv: invalid key %q", key)
		}
	}
	return path.Clean(key), nil
}
