package driving

import "context"

// ProviderOutcome is one per-provider result line from a sync run.
type ProviderOutcome struct {
	Name    string
	SheetID string
	// Status is one of "new", "updated", "skipped", "failed".
	Status  string
	Message string
}

// Provider outcome statuses.
const (
	OutcomeNew     = "new"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// SyncSummary aggregates one sync run.
type SyncSummary struct {
	RunID           string
	Providers       int
	New             int
	Updated         int
	Skipped         int
	Failed          int
	Pruned          int
	RestrictionRows int
	CurrencyRows    int
	GameRows        int
	Warnings        int
	Collisions      int
	Outcomes        []ProviderOutcome
}

// Syncer runs the extraction pipeline into the staging store.
type Syncer interface {
	// Sync rebuilds staging from the external source. Provider-level
	// failures are recorded in the summary, not returned; only
	// store-level failures (lock contention, staging unavailable)
	// produce an error.
	Sync(ctx context.Context) (*SyncSummary, error)
}
