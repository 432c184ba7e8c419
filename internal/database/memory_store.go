package database

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore holds encoded documents in memory. Every load decodes a fresh
// copy, so callers never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	catalog  []byte
	progress []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadCatalog() (*Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog := NewCatalog()
	if m.catalog == nil {
		return catalog, nil
	}
	if err := json.Unmarshal(m.catalog, catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w: %v", ErrStorageUnavailable, err)
	}
	catalog.normalize()
	return catalog, nil
}

func (m *MemoryStore) SaveCatalog(catalog *Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.catalog = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadProgress() (*Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress == nil {
		return NewProgress(time.Now()), nil
	}
	progress := NewProgress(time.Now())
	if err := json.Unmarshal(m.progress, progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w: %v", ErrStorageUnavailable, err)
	}
	progress.normalize()
	return progress, nil
}

func (m *MemoryStore) SaveProgress(progress *Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.progress = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// PutRaw replaces a stored document with body as-is.
func (m *MemoryStore) PutRaw(name string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch name {
	case CatalogDocument:
		m.catalog = body
	case ProgressDocument:
		m.progress = body
	}
}
