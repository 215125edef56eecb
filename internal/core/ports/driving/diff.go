package driving

import (
	"context"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// Differ provides the read-only views over staging and production.
// Implementations never mutate either store and never join them in a
// single transaction.
type Differ interface {
	// Preview lists staging contents with per-provider counts.
	Preview(ctx context.Context) ([]domain.ProviderSummary, error)

	// Compare diffs staging against production by fingerprint.
	Compare(ctx context.Context) (*domain.Diff, error)
}
