package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrBlobNotFound indicates the requested key has no stored bytes.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists raw file bytes addressed by opaque keys.
type BlobStore interface {
	// Save durably writes the reader's bytes under the key.
	Save(ctx context.Context, key string, r io.Reader) error
	// Open returns a sequential reader for the blob and its size when known
	// (a negative size means unknown). Missing keys yield ErrBlobNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Remove deletes the blob. Missing keys yield ErrBlobNotFound.
	Remove(ctx context.Context, key string) error
}

// validateKey rejects empty keys and anything that could escape the store
// root. Keys are generated server-side, so a traversal attempt is always a
// programming error or forged input.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return errors.New("storage: invalid key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return errors.New("storage: invalid key")
		}
	}
	return nil
}
