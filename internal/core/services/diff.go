package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driving"
)

// Ensure DiffService implements the interface.
var _ driving.Differ = (*DiffService)(nil)

// DiffService provides the read-only staging and comparison views. It
// opens stores on demand and never writes to either.
type DiffService struct {
	openStore driven.StoreOpener
	paths     driven.Paths
}

// NewDiffService creates a new diff service.
func NewDiffService(openStore driven.StoreOpener, paths driven.Paths) *DiffService {
	return &DiffService{openStore: openStore, paths: paths}
}

// Preview lists staging contents with per-provider counts.
func (s *DiffService) Preview(ctx context.Context) ([]domain.ProviderSummary, error) {
	if !fileExists(s.paths.Staging()) {
		return nil, domain.ErrNoStaging
	}

	store, err := s.openStore(s.paths.Staging())
	if err != nil {
		return nil, fmt.Errorf("open staging: %w", err)
	}
	defer store.Close()

	return store.ListProviders(ctx)
}

// Compare diffs staging against production by provider fingerprint.
// Fingerprints are recomputed from stored rows on both sides, so the
// diff reflects what promotion would actually change.
func (s *DiffService) Compare(ctx context.Context) (*domain.Diff, error) {
	if !fileExists(s.paths.Staging()) {
		return nil, domain.ErrNoStaging
	}
	if !fileExists(s.paths.Production()) {
		return nil, domain.ErrNoProduction
	}

	staging, err := s.fingerprints(ctx, s.paths.Staging())
	if err != nil {
		return nil, fmt.Errorf("fingerprint staging: %w", err)
	}
	production, err := s.fingerprints(ctx, s.paths.Production())
	if err != nil {
		return nil, fmt.Errorf("fingerprint production: %w", err)
	}

	diff := &domain.Diff{}
	for name, fp := range staging {
		prodFP, ok := production[name]
		switch {
		case !ok:
			diff.Added = append(diff.Added, name)
		case prodFP != fp:
			diff.Changed = append(diff.Changed, name)
		default:
			diff.Unchanged++
		}
	}
	for name := range production {
		if _, ok := staging[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff, nil
}

func (s *DiffService) fingerprints(ctx context.Context, path string) (map[string]string, error) {
	store, err := s.openStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.ProviderFingerprints(ctx)
}
