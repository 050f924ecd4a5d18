package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSaveOpenRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}

	ctx := context.Background()
	payload := "fake mp4 bytes"

	if err := store.Save(ctx, "videos/abc.mp4", strings.NewReader(payload)); err != nil {
		t.Fatalf("save: %v", err)
	}

	reader, size, err := store.Open(ctx, "videos/abc.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	if size != int64(len(payload)) {
		t.Fatalf("expected size %d got %d", len(payload), size)
	}

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("expected %q got %q", payload, got)
	}

	if err := store.Remove(ctx, "videos/abc.mp4"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, "videos/abc.mp4"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on second remove got %v", err)
	}
}

func TestDiskStoreOpenMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}

	if _, _, err := store.Open(context.Background(), "videos/missing.mp4"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound got %v", err)
	}
}

func TestDiskStoreRejectsTraversalKeys(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root)
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}

	outside := filepath.Join(root, "..", "escape.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o600); err != nil {
		t.Fatalf("write outside file: %v", err)
	}
	defer os.Remove(outside)

	ctx := context.Background()
	keys := []string{"", "/abs.mp4", "../escape.txt", "videos/../../escape.txt", "videos//x.mp4", `videos\x.mp4`}

	for _, key := range keys {
		if err := store.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected save of key %q to fail", key)
		}
		if _, _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected open of key %q to fail", key)
		}
		if err := store.Remove(ctx, key); err == nil {
			t.Fatalf("expected remove of key %q to fail", key)
		}
	}
}
