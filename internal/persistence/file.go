package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists blobs as files on local disk. The configured path names
// the file for the fleet key; additional keys land next to it.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed blob store rooted at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the blob file; a missing file means no prior data.
func (f *FileStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	blob, err := os.ReadFile(f.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return blob, true, nil
}

// Save writes the blob through a temp file and rename so readers never
// observe a partial write.
func (f *FileStore) Save(_ context.Context, key string, blob []byte) error {
	path := f.pathFor(key)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create blob dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() {}

func (f *FileStore) pathFor(key string) string {
	if key+filepath.Ext(f.path) == filepath.Base(f.path) {
		return f.path
	}
	return filepath.Join(filepath.Dir(f.path), key+".json")
}
