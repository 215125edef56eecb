package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// StoreOpener opens (creating and migrating if necessary) the provider
// store at the given file path. The promotion and restore paths reopen
// stores after file-level swaps, so services take an opener rather than
// a fixed store instance.
type StoreOpener func(path string) (Store, error)

// Store is a provider store (staging or production share the schema).
type Store interface {
	StoreReader
	StoreWriter

	// Path returns the underlying database file path.
	Path() string
	// Close closes the store.
	Close() error
}

// StoreReader is the read-only surface used by preview and compare. It
// must never mutate the store.
type StoreReader interface {
	// ListProviders returns summaries with per-table counts, ordered by
	// provider name.
	ListProviders(ctx context.Context) ([]domain.ProviderSummary, error)

	// ProviderFingerprints recomputes content fingerprints from the
	// stored rows of every provider, keyed by provider name.
	ProviderFingerprints(ctx context.Context) (map[string]string, error)

	// ProviderData reads back the full normalised record set for one
	// provider. Returns domain.ErrNotFound if the provider is missing.
	ProviderData(ctx context.Context, name string) (*domain.ProviderData, error)

	// SyncLog returns the most recent audit entries, newest first.
	SyncLog(ctx context.Context, limit int) ([]domain.SyncLogEntry, error)
}

// StoreWriter is the mutating surface. Sync uses it against staging only;
// promote and restore append audit entries to production through it.
type StoreWriter interface {
	// CachedFingerprints loads the preserved provider fingerprint cache
	// from the previous sync run, keyed by provider name.
	CachedFingerprints(ctx context.Context) (map[string]string, error)

	// BeginSync opens the single store-level transaction a sync run
	// writes through. Rolling back leaves the store exactly as it was.
	BeginSync(ctx context.Context) (SyncTx, error)

	// AppendLog appends one audit entry outside a sync transaction.
	AppendLog(ctx context.Context, entry domain.SyncLogEntry) error
}

// SyncTx is the write surface of one sync run. All writes for all
// providers happen inside it; an interrupted run that never commits
// leaves no partial state.
type SyncTx interface {
	// ApplyProvider upserts the provider row and replaces its
	// restriction, currency and game rows. Currencies are dual-written
	// to the class-specific and legacy tables; a disagreement between
	// the two is returned as domain.ErrDualWriteMismatch and the
	// provider's writes are rolled back to their savepoint.
	ApplyProvider(ctx context.Context, data *domain.ProviderData, fingerprint string, syncedAt time.Time) (isNew bool, err error)

	// SkipProvider refreshes last_synced for an unchanged provider
	// without touching its detail rows.
	SkipProvider(ctx context.Context, name, sheetID string, syncedAt time.Time) error

	// PruneProviders removes providers not present in keep, returning
	// how many were removed. Staging mirrors the source exactly.
	PruneProviders(ctx context.Context, keep []string) (int, error)

	// AppendLog appends one audit entry within the transaction.
	AppendLog(ctx context.Context, entry domain.SyncLogEntry) error

	Commit() error
	Rollback() error
}
