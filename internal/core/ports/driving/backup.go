package driving

import (
	"context"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// BackupManager snapshots and restores the production store.
type BackupManager interface {
	// Backup takes a full snapshot of production, catalogues it and
	// prunes snapshots beyond the retention limit.
	Backup(ctx context.Context) (*domain.BackupRecord, error)

	// Restore replaces production with the named snapshot, or the most
	// recent one if id is empty. The pre-restore production state is
	// itself snapshotted first. Returns the record restored from.
	Restore(ctx context.Context, id string) (*domain.BackupRecord, error)

	// List returns catalogued snapshots, newest first.
	List(ctx context.Context) ([]domain.BackupRecord, error)
}
