package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.Syncer = (*SyncOrchestrator)(nil)

// SyncOrchestrator rebuilds the staging store from the sheet source.
// Production is never touched; one staging-level transaction covers the
// whole run, so an interrupted run leaves staging exactly as it was.
type SyncOrchestrator struct {
	source     driven.SheetSource
	openStore  driven.StoreOpener
	locker     driven.Locker
	paths      driven.Paths
	runTimeout time.Duration
}

// NewSyncOrchestrator creates a new sync orchestrator. runTimeout bounds
// one whole run; zero disables the bound.
func NewSyncOrchestrator(
	source driven.SheetSource,
	openStore driven.StoreOpener,
	locker driven.Locker,
	paths driven.Paths,
	runTimeout time.Duration,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		source:     source,
		openStore:  openStore,
		locker:     locker,
		paths:      paths,
		runTimeout: runTimeout,
	}
}

// Sync runs the full extraction pipeline into staging.
func (o *SyncOrchestrator) Sync(ctx context.Context) (*driving.SyncSummary, error) {
	release, err := o.locker.Acquire(driven.StagingLock)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("releasing staging lock: %v", err)
		}
	}()

	if o.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	store, err := o.openStore(o.paths.Staging())
	if err != nil {
		return nil, fmt.Errorf("open staging: %w", err)
	}
	defer store.Close()

	summary := &driving.SyncSummary{RunID: uuid.New().String()}
	logger.Section("Sync run %s", summary.RunID)

	var runReport domain.ParseReport

	cached, err := store.CachedFingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fingerprint cache: %w", err)
	}

	refs, err := o.source.Providers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	summary.Providers = len(refs)

	tx, err := store.BeginSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sync: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warn("rolling back sync: %v", rbErr)
			}
		}
	}()

	keep := make([]string, 0, len(refs))
	for i, ref := range refs {
		keep = append(keep, ref.ProviderName)

		outcome, report, err := o.syncProvider(ctx, tx, ref, cached)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				// The run budget is spent. Abandon the transaction; the
				// previous staging state stays intact.
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Warn("rolling back timed-out sync: %v", rbErr)
				}
				committed = true // suppress the deferred rollback
				o.logAbortedRun(store, summary.RunID, err, refs[i:])
				return nil, fmt.Errorf("sync run %s aborted: %w", summary.RunID, err)
			}

			// Any other failure is isolated to this provider.
			logger.Warn("%s: sync failed: %v", ref.ProviderName, err)
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, driving.ProviderOutcome{
				Name:    ref.ProviderName,
				SheetID: ref.SpreadsheetID,
				Status:  driving.OutcomeFailed,
				Message: err.Error(),
			})
			if logErr := tx.AppendLog(ctx, domain.SyncLogEntry{
				Timestamp:    time.Now().UTC(),
				ProviderName: ref.ProviderName,
				SheetID:      ref.SpreadsheetID,
				Outcome:      domain.OutcomeFailed,
				Message:      err.Error(),
			}); logErr != nil {
				return nil, fmt.Errorf("append failure log: %w", logErr)
			}
			continue
		}

		runReport.Merge(report)
		summary.Outcomes = append(summary.Outcomes, *outcome)
		switch outcome.Status {
		case driving.OutcomeNew:
			summary.New++
		case driving.OutcomeUpdated:
			summary.Updated++
		case driving.OutcomeSkipped:
			summary.Skipped++
		}
	}

	// Staging mirrors the source. Providers that failed this run are kept
	// with their previous data; only providers gone from the source are
	// pruned.
	pruned, err := tx.PruneProviders(ctx, keep)
	if err != nil {
		return nil, fmt.Errorf("prune providers: %w", err)
	}
	summary.Pruned = pruned

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sync: %w", err)
	}
	committed = true

	summary.Warnings = runReport.Warnings
	summary.Collisions = runReport.Collisions
	if err := fillRowCounts(ctx, store, summary); err != nil {
		logger.Warn("summarising staging counts: %v", err)
	}

	logger.Info("Sync complete: %d new, %d updated, %d skipped, %d failed, %d pruned",
		summary.New, summary.Updated, summary.Skipped, summary.Failed, summary.Pruned)
	return summary, nil
}

// syncProvider fetches and applies a single provider inside the run
// transaction, skipping the write when the fingerprint is unchanged.
func (o *SyncOrchestrator) syncProvider(
	ctx context.Context,
	tx driven.SyncTx,
	ref domain.SheetRef,
	cached map[string]string,
) (*driving.ProviderOutcome, domain.ParseReport, error) {
	data, report, err := o.source.Fetch(ctx, ref)
	if err != nil {
		return nil, report, err
	}

	now := time.Now().UTC()
	fp := domain.Fingerprint(data)

	if prev, ok := cached[ref.ProviderName]; ok && prev == fp {
		if err := tx.SkipProvider(ctx, ref.ProviderName, data.SheetID, now); err != nil {
			// A cache hit for a provider missing from staging means the
			// cache is stale; fall through to a full write.
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, report, err
			}
		} else {
			logger.Debug("%s: unchanged, skipping", ref.ProviderName)
			if err := tx.AppendLog(ctx, skippedEntry(data, now)); err != nil {
				return nil, report, err
			}
			return &driving.ProviderOutcome{
				Name:    ref.ProviderName,
				SheetID: data.SheetID,
				Status:  driving.OutcomeSkipped,
				Message: "unchanged",
			}, report, nil
		}
	}

	isNew, err := tx.ApplyProvider(ctx, data, fp, now)
	if err != nil {
		return nil, report, err
	}

	if err := tx.AppendLog(ctx, domain.SyncLogEntry{
		Timestamp:        now,
		ProviderName:     data.Name,
		SheetID:          data.SheetID,
		Outcome:          domain.OutcomeSuccess,
		Message:          fmt.Sprintf("%d warnings, %d collisions", report.Warnings, report.Collisions),
		RestrictionCount: data.RestrictionCount(),
		CurrencyCount:    data.CurrencyCount(),
	}); err != nil {
		return nil, report, err
	}

	status := driving.OutcomeUpdated
	if isNew {
		status = driving.OutcomeNew
	}
	logger.Info("%s: %s (%d restrictions, %d currencies, %d games)",
		data.Name, status, data.RestrictionCount(), data.CurrencyCount(), len(data.Games))

	outcome := &driving.ProviderOutcome{
		Name:    data.Name,
		SheetID: data.SheetID,
		Status:  status,
	}
	if report.Warnings > 0 || report.Collisions > 0 {
		outcome.Message = fmt.Sprintf("%d warnings, %d collisions", report.Warnings, report.Collisions)
	}
	return outcome, report, nil
}

func skippedEntry(data *domain.ProviderData, now time.Time) domain.SyncLogEntry {
	return domain.SyncLogEntry{
		Timestamp:        now,
		ProviderName:     data.Name,
		SheetID:          data.SheetID,
		Outcome:          domain.OutcomeSuccess,
		Message:          "unchanged, skipped",
		RestrictionCount: data.RestrictionCount(),
		CurrencyCount:    data.CurrencyCount(),
	}
}

// logAbortedRun records a timed-out run outside the (rolled back)
// transaction, with a fresh context because the run context is spent.
// Every provider the run never got to is logged FAILED with the abort
// reason, then an aggregate entry closes the run.
func (o *SyncOrchestrator) logAbortedRun(store driven.Store, runID string, cause error, unprocessed []domain.SheetRef) {
	logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	for _, ref := range unprocessed {
		if err := store.AppendLog(logCtx, domain.SyncLogEntry{
			Timestamp:    now,
			ProviderName: ref.ProviderName,
			SheetID:      ref.SpreadsheetID,
			Outcome:      domain.OutcomeFailed,
			Message:      fmt.Sprintf("not processed: run %s aborted: %v", runID, cause),
		}); err != nil {
			logger.Warn("recording aborted provider %s: %v", ref.ProviderName, err)
			return
		}
	}

	if err := store.AppendLog(logCtx, domain.SyncLogEntry{
		Timestamp:    now,
		ProviderName: "(run)",
		Outcome:      domain.OutcomeFailed,
		Message:      fmt.Sprintf("run %s aborted with %d providers unprocessed: %v", runID, len(unprocessed), cause),
	}); err != nil {
		logger.Warn("recording aborted run: %v", err)
	}
}

// fillRowCounts reads post-commit staging totals into the summary.
func fillRowCounts(ctx context.Context, store driven.Store, summary *driving.SyncSummary) error {
	summaries, err := store.ListProviders(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		summary.RestrictionRows += s.Blocked + s.Conditional + s.Regulated
		summary.CurrencyRows += s.Fiat + s.Crypto
		summary.GameRows += s.Games
	}
	return nil
}
