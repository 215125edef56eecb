package driven

import (
	"context"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// SheetSource enumerates and fetches provider spreadsheets from the
// external folder hierarchy. Implementations are rate-limited; a failed
// fetch for one provider must not prevent fetching the others.
type SheetSource interface {
	// Providers lists every provider sheet discovered in the source
	// folder, in source-listing order.
	Providers(ctx context.Context) ([]domain.SheetRef, error)

	// Fetch reads and parses one provider's sheet into a normalised
	// record set, reporting non-fatal parse warnings alongside.
	Fetch(ctx context.Context, ref domain.SheetRef) (*domain.ProviderData, domain.ParseReport, error)
}
