package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// Ensure PromotionEngine implements the interface.
var _ driving.Promoter = (*PromotionEngine)(nil)

// PromotionEngine replaces production with staging's content. The swap
// is a whole-file replacement behind a rename, so concurrent readers see
// either the old production or the new one, never a mix. Production is
// backed up before any mutation.
type PromotionEngine struct {
	backups   driving.BackupManager
	openStore driven.StoreOpener
	locker    driven.Locker
	paths     driven.Paths
}

// NewPromotionEngine creates a new promotion engine.
func NewPromotionEngine(
	backups driving.BackupManager,
	openStore driven.StoreOpener,
	locker driven.Locker,
	paths driven.Paths,
) *PromotionEngine {
	return &PromotionEngine{
		backups:   backups,
		openStore: openStore,
		locker:    locker,
		paths:     paths,
	}
}

// Promote backs production up, then swaps staging over it.
func (e *PromotionEngine) Promote(ctx context.Context) (*driving.PromotionResult, error) {
	start := time.Now()
	result := &driving.PromotionResult{State: driving.StateIdle}

	release, err := e.locker.Acquire(driven.ProductionLock)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("releasing production lock: %v", err)
		}
	}()

	if !fileExists(e.paths.Staging()) {
		result.State = driving.StateFailed
		return result, domain.ErrNoStaging
	}

	// Read the staging totals first. Opening and closing the store also
	// checkpoints its WAL, so the file copy below sees every committed row.
	providers, restrictions, currencies, err := e.stagingCounts(ctx)
	if err != nil {
		result.State = driving.StateFailed
		return result, fmt.Errorf("reading staging: %w", err)
	}
	result.Providers = providers
	result.Restrictions = restrictions
	result.Currencies = currencies

	logger.Section("Promoting %d providers to production", providers)

	if fileExists(e.paths.Production()) {
		result.State = driving.StateBackingUp
		backup, err := e.backups.Backup(ctx)
		if err != nil {
			result.State = driving.StateFailed
			return result, fmt.Errorf("%w: %w", domain.ErrBackupFailed, err)
		}
		result.Backup = backup
	}

	result.State = driving.StateCopying
	if err := replaceFile(e.paths.Staging(), e.paths.Production()); err != nil {
		// The copy goes to a temp file; a failure here leaves production
		// untouched and the backup in place.
		result.State = driving.StateFailed
		return result, fmt.Errorf("%w: %w", domain.ErrSwapFailed, err)
	}

	e.appendPromoteLog(ctx, result)

	result.State = driving.StateDone
	result.Duration = time.Since(start)
	logger.Info("Promotion complete in %s", result.Duration.Round(time.Millisecond))
	return result, nil
}

// stagingCounts totals the staging store's providers and detail rows.
func (e *PromotionEngine) stagingCounts(ctx context.Context) (providers, restrictions, currencies int, err error) {
	store, err := e.openStore(e.paths.Staging())
	if err != nil {
		return 0, 0, 0, err
	}
	defer store.Close()

	summaries, err := store.ListProviders(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, s := range summaries {
		providers++
		restrictions += s.Blocked + s.Conditional + s.Regulated
		currencies += s.Fiat + s.Crypto
	}
	return providers, restrictions, currencies, nil
}

// appendPromoteLog records the promotion in the new production store's
// audit log. Failure to log does not fail the promotion.
func (e *PromotionEngine) appendPromoteLog(ctx context.Context, result *driving.PromotionResult) {
	store, err := e.openStore(e.paths.Production())
	if err != nil {
		logger.Warn("opening promoted store for audit log: %v", err)
		return
	}
	defer store.Close()

	msg := fmt.Sprintf("promoted %d providers (%d restrictions, %d currencies)",
		result.Providers, result.Restrictions, result.Currencies)
	if result.Backup != nil {
		msg += ", backup " + result.Backup.Filename
	}

	if err := store.AppendLog(ctx, domain.SyncLogEntry{
		Timestamp:        time.Now().UTC(),
		ProviderName:     domain.ActionPromoted,
		Outcome:          domain.OutcomeSuccess,
		Message:          msg,
		RestrictionCount: result.Restrictions,
		CurrencyCount:    result.Currencies,
	}); err != nil {
		logger.Warn("recording promotion in audit log: %v", err)
	}
}
