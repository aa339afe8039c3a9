package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/madcourses/skillmatch/internal/domain/course"
)

// FileStore reads and writes the catalog as one JSON array of courses with
// their embeddings.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed catalog store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements usecase/catalog.Loader.
func (s *FileStore) Name() string { return "file" }

// Load reads every course from the file, in file order.
func (s *FileStore) Load(_ context.Context) ([]course.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var dtos []courseDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", s.path, err)
	}
	return toEntries(dtos)
}

// Save writes entries to the file atomically (temp file + rename).
func (s *FileStore) Save(_ context.Context, entries []course.Entry) error {
	data, err := json.MarshalIndent(fromEntries(entries), "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
