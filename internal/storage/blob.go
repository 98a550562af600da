package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DirBlobStore writes recordings under a root directory, one file per
// object. Directories are created on every upload; MkdirAll makes that
// idempotent.
type DirBlobStore struct {
	root string
}

func NewDirBlobStore(root string) (*DirBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("NewDirBlobStore(): failed to create blob root: %w", err)
	}
	log.Printf("NewDirBlobStore(): recordings will be stored in %s", root)
	return &DirBlobStore{root: root}, nil
}

func (b *DirBlobStore) Upload(ctx context.Context, data []byte, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(b.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("Upload(): failed to create directory for %s: %w", path, err)
	}

	// Upload-if-absent: a retry of an already-stored object succeeds
	if _, err := os.Stat(full); err == nil {
		log.Printf("Upload(): %s already present, skipping", path)
		return nil
	}

	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("Upload(): failed to write %s: %w", path, err)
	}
	return nil
}
