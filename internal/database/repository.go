package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository stores the catalog and progress documents as JSON rows in the
// documents table.
type Repository struct {
	Db *Database
}

func NewRepository(db *Database) *Repository {
	return &Repository{Db: db}
}

func (r *Repository) LoadCatalog() (*Catalog, error) {
	catalog := NewCatalog()
	found, err := r.load(CatalogDocument, catalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewCatalog(), nil
	}
	catalog.normalize()
	return catalog, nil
}

func (r *Repository) SaveCatalog(catalog *Catalog) error {
	return r.save(CatalogDocument, catalog)
}

func (r *Repository) LoadProgress() (*Progress, error) {
	progress := NewProgress(time.Now())
	found, err := r.load(ProgressDocument, progress)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewProgress(time.Now()), nil
	}
	progress.normalize()
	return progress, nil
}

func (r *Repository) SaveProgress(progress *Progress) error {
	return r.save(ProgressDocument, progress)
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

func (r *Repository) load(name string, target any) (bool, error) {
	var body string
	err := r.Db.db.QueryRow(`SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s document: %w", name, err)
	}

	if err := json.Unmarshal([]byte(body), target); err != nil {
		return false, fmt.Errorf("decode %s document: %w: %v", name, ErrStorageUnavailable, err)
	}
	return true, nil
}

func (r *Repository) save(name string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", name, err)
	}

	_, err = r.Db.db.Exec(`
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, name, string(body))
	if err != nil {
		return fmt.Errorf("write %s document: %w", name, err)
	}
	return nil
}
