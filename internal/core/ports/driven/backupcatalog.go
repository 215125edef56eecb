package driven

import (
	"context"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// BackupCatalog records snapshot metadata. It lives outside the
// production store so that catalogue rows survive promotion (the
// production file is replaced wholesale by a promote).
type BackupCatalog interface {
	// Add records a new snapshot.
	Add(ctx context.Context, rec domain.BackupRecord) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]domain.BackupRecord, error)

	// Remove deletes a record by ID.
	Remove(ctx context.Context, id string) error

	// Close closes the catalogue.
	Close() error
}
