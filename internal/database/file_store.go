package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps the two documents as indented JSON files, the layout
// used by syllabi.json and progress.json.
type FileStore struct {
	CatalogPath  string
	ProgressPath string
}

func NewFileStore(catalogPath, progressPath string) *FileStore {
	return &FileStore{CatalogPath: catalogPath, ProgressPath: progressPath}
}

func (s *FileStore) LoadCatalog() (*Catalog, error) {
	catalog := NewCatalog()
	found, err := readJSON(s.CatalogPath, catalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewCatalog(), nil
	}
	catalog.normalize()
	return catalog, nil
}

func (s *FileStore) SaveCatalog(catalog *Catalog) error {
	return writeJSON(s.CatalogPath, catalog)
}

func (s *FileStore) LoadProgress() (*Progress, error) {
	progress := NewProgress(time.Now())
	found, err := readJSON(s.ProgressPath, progress)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewProgress(time.Now()), nil
	}
	progress.normalize()
	return progress, nil
}

func (s *FileStore) SaveProgress(progress *Progress) error {
	return writeJSON(s.ProgressPath, progress)
}

func (s *FileStore) Close() error {
	return nil
}

func readJSON(path string, target any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", path, ErrStorageUnavailable, err)
	}
	return true, nil
}

// writeJSON replaces path atomically so a crash never leaves half a document.
func writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
