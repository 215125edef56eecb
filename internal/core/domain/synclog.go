package domain

import "time"

// SyncOutcome is the terminal state of one audit log entry.
type SyncOutcome string

const (
	// OutcomeSuccess marks a provider synced (or skipped as unchanged).
	OutcomeSuccess SyncOutcome = "SUCCESS"
	// OutcomeFailed marks a provider that could not be synced.
	OutcomeFailed SyncOutcome = "FAILED"
)

// Sync log actions beyond per-provider sync attempts. Stored in the
// message column prefix so the log stays a single append-only table.
const (
	ActionPromoted = "PROMOTED"
	ActionRestored = "RESTORED"
)

// SyncLogEntry is one append-only audit record. Sync writes one entry per
// provider per attempt; promote and restore append a single entry each.
type SyncLogEntry struct {
	Timestamp        time.Time
	ProviderName     string
	SheetID          string
	Outcome          SyncOutcome
	Message          string
	RestrictionCount int
	CurrencyCount    int
}
