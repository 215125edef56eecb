package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// Snapshot filename patterns. Timestamps are UTC.
const (
	backupTimeFormat      = "20060102_150405"
	backupFilePattern     = "database_backup_%s.sqlite"
	preRestoreFilePattern = "pre_restore_%s.sqlite"
)

// Ensure BackupService implements the interface.
var _ driving.BackupManager = (*BackupService)(nil)

// BackupService snapshots and restores the production store. Snapshot
// metadata lives in the catalogue, snapshot files in the backups
// directory; both survive promotion.
type BackupService struct {
	catalog   driven.BackupCatalog
	openStore driven.StoreOpener
	locker    driven.Locker
	paths     driven.Paths
	retention int
}

// NewBackupService creates a backup service keeping at most retention
// snapshots (a non-positive retention keeps 10).
func NewBackupService(
	catalog driven.BackupCatalog,
	openStore driven.StoreOpener,
	locker driven.Locker,
	paths driven.Paths,
	retention int,
) *BackupService {
	if retention <= 0 {
		retention = 10
	}
	return &BackupService{
		catalog:   catalog,
		openStore: openStore,
		locker:    locker,
		paths:     paths,
		retention: retention,
	}
}

// Backup takes a full snapshot of production, catalogues it and prunes
// snapshots beyond the retention limit.
func (s *BackupService) Backup(ctx context.Context) (*domain.BackupRecord, error) {
	return s.snapshot(ctx, backupFilePattern, "")
}

// snapshot copies production into the backups directory under the given
// filename pattern. protect names a snapshot the retention prune must
// not touch.
func (s *BackupService) snapshot(ctx context.Context, pattern, protect string) (*domain.BackupRecord, error) {
	if !fileExists(s.paths.Production()) {
		return nil, domain.ErrNoProduction
	}
	if err := os.MkdirAll(s.paths.BackupsDir(), 0700); err != nil {
		return nil, fmt.Errorf("creating backups directory: %w", err)
	}

	now := time.Now().UTC()
	stamp := now.Format(backupTimeFormat)
	filename := fmt.Sprintf(pattern, stamp)
	// Two snapshots within the same second need distinct names.
	if fileExists(s.paths.Backup(filename)) {
		filename = fmt.Sprintf(pattern, stamp+"_"+uuid.New().String()[:8])
	}
	dest := s.paths.Backup(filename)

	if err := copyFile(s.paths.Production(), dest); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackupFailed, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: stat snapshot: %w", domain.ErrBackupFailed, err)
	}

	rec := domain.BackupRecord{
		ID:        uuid.New().String(),
		Timestamp: now,
		Filename:  filename,
		SizeBytes: info.Size(),
	}
	if err := s.catalog.Add(ctx, rec); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("%w: %w", domain.ErrBackupFailed, err)
	}

	logger.Info("Backup created: %s (%d bytes)", filename, rec.SizeBytes)

	if err := s.prune(ctx, protect); err != nil {
		logger.Warn("pruning old backups: %v", err)
	}
	return &rec, nil
}

// prune removes the oldest snapshots beyond the retention limit, files
// and catalogue rows both. The snapshot named by protect survives even
// past the limit; the next unprotected prune collects it.
func (s *BackupService) prune(ctx context.Context, protect string) error {
	records, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(records) <= s.retention {
		return nil
	}

	for _, rec := range records[s.retention:] {
		if protect != "" && rec.Filename == protect {
			continue
		}
		if err := os.Remove(s.paths.Backup(rec.Filename)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", rec.Filename, err)
		}
		if err := s.catalog.Remove(ctx, rec.ID); err != nil {
			return err
		}
		logger.Debug("Pruned backup %s", rec.Filename)
	}
	return nil
}

// Restore replaces production with the named snapshot, or the most
// recent one if id is empty. Current production is snapshotted first so
// a bad restore is itself reversible.
func (s *BackupService) Restore(ctx context.Context, id string) (*domain.BackupRecord, error) {
	release, err := s.locker.Acquire(driven.ProductionLock)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("releasing production lock: %v", err)
		}
	}()

	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNoBackups
	}

	var target *domain.BackupRecord
	if id == "" {
		target = &records[0]
	} else {
		for i := range records {
			if records[i].ID == id || records[i].Filename == id {
				target = &records[i]
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
		}
	}

	source := s.paths.Backup(target.Filename)
	if !fileExists(source) {
		return nil, fmt.Errorf("snapshot file %s missing: %w", target.Filename, domain.ErrNotFound)
	}

	if fileExists(s.paths.Production()) {
		// The pre-restore snapshot can push the catalogue past the
		// retention limit; the restore target must survive that prune.
		if _, err := s.snapshot(ctx, preRestoreFilePattern, target.Filename); err != nil {
			return nil, fmt.Errorf("pre-restore snapshot: %w", err)
		}
	}

	if err := replaceFile(source, s.paths.Production()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSwapFailed, err)
	}

	s.appendRestoreLog(ctx, target)
	logger.Info("Restored production from %s", target.Filename)
	return target, nil
}

// appendRestoreLog records the restore in the restored store's audit
// log. Failure to log does not fail the restore itself.
func (s *BackupService) appendRestoreLog(ctx context.Context, rec *domain.BackupRecord) {
	store, err := s.openStore(s.paths.Production())
	if err != nil {
		logger.Warn("opening restored store for audit log: %v", err)
		return
	}
	defer store.Close()

	if err := store.AppendLog(ctx, domain.SyncLogEntry{
		Timestamp:    time.Now().UTC(),
		ProviderName: domain.ActionRestored,
		Outcome:      domain.OutcomeSuccess,
		Message:      fmt.Sprintf("restored from %s", rec.Filename),
	}); err != nil {
		logger.Warn("recording restore in audit log: %v", err)
	}
}

// List returns catalogued snapshots, newest first.
func (s *BackupService) List(ctx context.Context) ([]domain.BackupRecord, error) {
	return s.catalog.List(ctx)
}
