package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// PromotionState is the phase a promotion run is in. A run moves
// IDLE -> BACKING_UP -> COPYING -> DONE, or to FAILED from any phase
// with production left untouched.
type PromotionState string

const (
	StateIdle      PromotionState = "IDLE"
	StateBackingUp PromotionState = "BACKING_UP"
	StateCopying   PromotionState = "COPYING"
	StateDone      PromotionState = "DONE"
	StateFailed    PromotionState = "FAILED"
)

// PromotionResult reports one promotion run.
type PromotionResult struct {
	State PromotionState
	// Backup is the snapshot taken before copying. Present whenever the
	// run reached COPYING, even if the copy then failed.
	Backup *domain.BackupRecord
	// Promoted counts describe the staging content that became production.
	Providers    int
	Restrictions int
	Currencies   int
	Duration     time.Duration
}

// Promoter atomically replaces production with staging's content.
type Promoter interface {
	// Promote backs production up, then swaps staging over it. From any
	// external observer production is either fully old or fully new.
	Promote(ctx context.Context) (*PromotionResult, error)
}
