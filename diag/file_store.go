package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileStore writes each trace to a uniquely named JSON file in a directory.
type FileStore struct {
	dir string
}

var _ TraceStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save persists the trace and returns the file path.
func (s *FileStore) Save(_ context.Context, trace *Trace) (string, error) {
	if trace.Timestamp.IsZero() {
		trace.Timestamp = time.Now().UTC()
	}

	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trace: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("trace-%s.json", uuid.New().String()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return path, nil
}
