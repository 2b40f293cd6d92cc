// Package blob stores uploaded image bytes by key, either in a local
// directory or in an S3 bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned by Get for a key that was never stored.
	ErrNotFound = errors.New("blob: not found")
	// ErrInvalidKey is returned for keys that could escape the store root.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// Store is implemented by FS and S3.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Ping(ctx context.Context) error
}

// ValidateKey accepts slash separated relative keys without "." or ".."
// segments.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
