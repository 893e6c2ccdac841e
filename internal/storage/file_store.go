package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const fileMode = 0o644

// FileStore reads and writes semester files on the local disk.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Save replaces the file at path with data. A temporary file in the same
// directory is renamed over the target, so readers never see a half written file.
func (s *FileStore) Save(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("save semester: empty path")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save semester: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save semester: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save semester: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save semester: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("save semester: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save semester: rename to %s: %w", path, err)
	}
	return nil
}

// Load returns the content of the file at path.
func (s *FileStore) Load(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("load semester: empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load semester: %w", err)
	}
	return data, nil
}
