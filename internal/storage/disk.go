package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore implements BlobStore on a local directory tree.
type DiskStore struct {
	root string
}

// NewDiskStore ensures the root directory exists and returns a store rooted there.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("disk storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("disk storage: create root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// Save streams the reader to a file under the store root, creating parent
// directories as needed. The write is synced before the file is closed so a
// successful return means the bytes are durable.
func (s *DiskStore) Save(ctx context.Context, key string, r io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("disk storage: create dir for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("disk storage: create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("disk storage: write %s: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("disk storage: sync %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("disk storage: close %s: %w", key, err)
	}

	return nil
}

// Open returns a reader over the stored file along with its size.
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if err := validateKey(key); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, ErrBlobNotFound
		}
		return nil, 0, fmt.Errorf("disk storage: open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("disk storage: stat %s: %w", key, err)
	}

	return f, info.Size(), nil
}

// Remove deletes the stored file, reporting ErrBlobNotFound when it is absent.
func (s *DiskStore) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("disk storage: remove %s: %w", key, err)
	}

	return nil
}

var _ BlobStore = (*DiskStore)(nil)
