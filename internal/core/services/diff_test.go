package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
)

// writeStore creates a store at path holding the given providers.
func writeStore(t *testing.T, path string, providers ...*domain.ProviderData) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)
	for _, p := range providers {
		_, err = tx.ApplyProvider(ctx, p, domain.Fingerprint(p), time.Now().UTC())
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

func TestPreviewListsStagedProviders(t *testing.T) {
	paths := driven.Paths{DataDir: t.TempDir()}
	writeStore(t, paths.Staging(), providerFixture("Acme"), providerFixture("Beta"))

	svc := NewDiffService(sqlite.Open, paths)
	summaries, err := svc.Preview(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Acme", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].Blocked)
	assert.Equal(t, 1, summaries[0].Fiat)
}

func TestPreviewWithoutStaging(t *testing.T) {
	svc := NewDiffService(sqlite.Open, driven.Paths{DataDir: t.TempDir()})

	_, err := svc.Preview(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoStaging)
}

func TestCompareClassifiesProviders(t *testing.T) {
	paths := driven.Paths{DataDir: t.TempDir()}

	changed := providerFixture("Changed")
	writeStore(t, paths.Production(), providerFixture("Removed"), providerFixture("Same"), changed)

	changedStaged := providerFixture("Changed")
	changedStaged.Restrictions = append(changedStaged.Restrictions,
		domain.RestrictionRecord{CountryCode: "PRK", Tier: domain.TierBlocked})
	writeStore(t, paths.Staging(), providerFixture("Added"), providerFixture("Same"), changedStaged)

	svc := NewDiffService(sqlite.Open, paths)
	diff, err := svc.Compare(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Added"}, diff.Added)
	assert.Equal(t, []string{"Changed"}, diff.Changed)
	assert.Equal(t, []string{"Removed"}, diff.Removed)
	assert.Equal(t, 1, diff.Unchanged)
	assert.False(t, diff.Empty())
}

func TestCompareIdenticalStores(t *testing.T) {
	paths := driven.Paths{DataDir: t.TempDir()}
	writeStore(t, paths.Staging(), providerFixture("Acme"))
	writeStore(t, paths.Production(), providerFixture("Acme"))

	svc := NewDiffService(sqlite.Open, paths)
	diff, err := svc.Compare(context.Background())
	require.NoError(t, err)

	assert.True(t, diff.Empty())
	assert.Equal(t, 1, diff.Unchanged)
}

func TestCompareRequiresBothStores(t *testing.T) {
	paths := driven.Paths{DataDir: t.TempDir()}
	svc := NewDiffService(sqlite.Open, paths)

	_, err := svc.Compare(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoStaging)

	writeStore(t, paths.Staging(), providerFixture("Acme"))
	_, err = svc.Compare(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoProduction)
}
