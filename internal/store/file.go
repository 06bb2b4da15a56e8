package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

// FileBackend persists one JSON file per record under a data directory. It is
// the default single-user backend: no server to run, and every record stays
// inspectable with a text editor.
type FileBackend struct {
	dir string
	log *logger.Logger
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string, log *logger.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory '%s': %w", dir, err)
	}
	return &FileBackend{dir: dir, log: log}, nil
}

func (b *FileBackend) path(id string) string {
	return filepath.Join(b.dir, id+".json")
}

// Write serializes the record to its file.
func (b *FileBackend) Write(ctx context.Context, record *models.ContentRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record '%s': %w", record.ID, err)
	}
	if err := os.WriteFile(b.path(record.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record '%s': %w", record.ID, err)
	}
	return nil
}

// Read loads one record. An unknown id returns (nil, nil).
func (b *FileBackend) Read(ctx context.Context, id string) (*models.ContentRecord, error) {
	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record '%s': %w", id, err)
	}

	var record models.ContentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record '%s': %w", id, err)
	}
	return &record, nil
}

// ReadAll loads every record in the directory. A corrupt file is logged and
// skipped so one bad record cannot take down listing.
func (b *FileBackend) ReadAll(ctx context.Context) ([]*models.ContentRecord, error) {
	paths, err := filepath.Glob(filepath.Join(b.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	records := make([]*models.ContentRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			b.log.Error(fmt.Sprintf("Error loading content file %s: %v", path, err))
			continue
		}
		var record models.ContentRecord
		if err := json.Unmarshal(data, &record); err != nil {
			b.log.Error(fmt.Sprintf("Error parsing content file %s: %v", path, err))
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// Remove deletes a record file and reports whether it existed.
func (b *FileBackend) Remove(ctx context.Context, id string) (bool, error) {
	err := os.Remove(b.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove record '%s': %w", id, err)
	}
	return true, nil
}

var _ Backend = (*FileBackend)(nil)
