package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RecordStore persists JSON-serializable metadata by category and id.
type RecordStore interface {
	Put(ctx context.Context, category Category, id string, value any) error
	// Get decodes the record into out, or returns ErrNotFound.
	Get(ctx context.Context, category Category, id string, out any) error
	// List returns record ids in the category. A missing category is an empty result.
	List(ctx context.Context, category Category) ([]string, error)
}

// FileRecordStore writes one indented JSON file per record
type FileRecordStore struct {
	root string
}

func NewFileRecordStore(root string) *FileRecordStore {
	return &FileRecordStore{root: root}
}

func (f *FileRecordStore) dir(category Category) string {
	return filepath.Join(f.root, filepath.FromSlash(category.Prefix()))
}

func (f *FileRecordStore) Put(ctx context.Context, category Category, id string, value any) error {
	dir := f.dir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// Write to a temp file and rename so readers never observe a partial record.
	tmp, err := os.CreateTemp(dir, "."+id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, id+".json")); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (f *FileRecordStore) Get(ctx context.Context, category Category, id string, out any) error {
	raw, err := os.ReadFile(filepath.Join(f.dir(category), id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record %s: %w", id, err)
	}
	return nil
}

func (f *FileRecordStore) List(ctx context.Context, category Category) ([]string, error) {
	entries, err := os.ReadDir(f.dir(category))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
