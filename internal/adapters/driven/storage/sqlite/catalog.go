package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
)

// CatalogFile is the backup catalogue filename inside the backups
// directory. Kept separate from the production store so catalogue rows
// survive a promotion (which replaces the production file wholesale).
const CatalogFile = "catalog.sqlite"

// Catalog is the SQLite-backed backup catalogue.
type Catalog struct {
	db *sql.DB
}

var _ driven.BackupCatalog = (*Catalog)(nil)

// OpenCatalog opens (creating if necessary) the catalogue inside the
// backups directory.
func OpenCatalog(backupsDir string) (*Catalog, error) {
	if err := os.MkdirAll(backupsDir, 0700); err != nil {
		return nil, fmt.Errorf("creating backups directory: %w", err)
	}

	path := filepath.Join(backupsDir, CatalogFile)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS backups (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			filename TEXT NOT NULL UNIQUE,
			size_bytes INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating backups table: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Add records a new snapshot.
func (c *Catalog) Add(ctx context.Context, rec domain.BackupRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO backups (id, timestamp, filename, size_bytes) VALUES (?, ?, ?, ?)
	`, rec.ID, rec.Timestamp, rec.Filename, rec.SizeBytes)
	if err != nil {
		return fmt.Errorf("recording backup %s: %w", rec.Filename, err)
	}
	return nil
}

// List returns all records, newest first.
func (c *Catalog) List(ctx context.Context) ([]domain.BackupRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, timestamp, filename, size_bytes FROM backups ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying backups: %w", err)
	}
	defer rows.Close()

	var records []domain.BackupRecord
	for rows.Next() {
		var rec domain.BackupRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Filename, &rec.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning backup record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Remove deletes a record by ID.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM backups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("removing backup %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking removal of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Close closes the catalogue.
func (c *Catalog) Close() error {
	return c.db.Close()
}
