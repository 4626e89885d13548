package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes one JSON document per record under a directory. The file
// name embeds the record id so concurrent writers never collide.
type FileSink struct {
	dir string
}

// NewFileSink creates a file sink, creating the directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Append writes the record as an indented JSON file.
func (s *FileSink) Append(_ context.Context, rec *Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	name := fmt.Sprintf("audit_%s_%s.json", rec.Timestamp.Format("20060102T150405"), rec.ID)
	if err := os.WriteFile(filepath.Join(s.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}
