package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the checkpoint in a small JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. Nothing is written until Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the checkpoint file location
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the saved offset, or None when the file is absent or corrupt
func (s *FileStore) Load() (int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}
	return decode(data), nil
}

// Save writes the offset to a temporary file, syncs it and renames it over
// the checkpoint so a crash leaves either the old or the new state.
func (s *FileStore) Save(offset int) error {
	data, err := encode(offset)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename succeeded
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file; a missing file is not an error
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
