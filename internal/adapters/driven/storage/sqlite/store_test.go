package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "staging.sqlite"))
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testProviderData(name string) *domain.ProviderData {
	return &domain.ProviderData{
		Name:         name,
		SheetID:      "sheet-" + name,
		CurrencyMode: domain.ModeList,
		Restrictions: []domain.RestrictionRecord{
			{CountryCode: "USA", Tier: domain.TierBlocked, Source: "test"},
			{CountryCode: "AUS", Tier: domain.TierConditional, Source: "test"},
			{CountryCode: "GBR", Tier: domain.TierRegulated, Source: "test"},
		},
		Currencies: []domain.CurrencyRecord{
			{Code: "EUR", Class: domain.ClassFiat, Display: true, Source: "test"},
			{Code: "USD", Class: domain.ClassFiat, Display: true, Source: "test"},
			{Code: "BTC", Class: domain.ClassCrypto, Source: "test"},
		},
		Games: []domain.GameRecord{
			{WalletGameID: "g1", Title: "Starburst", GameType: "slot", Source: "test"},
		},
	}
}

// applyProvider writes one provider through a committed sync transaction.
func applyProvider(t *testing.T, store *Store, data *domain.ProviderData) {
	t.Helper()
	ctx := context.Background()

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)

	_, err = tx.ApplyProvider(ctx, data, domain.Fingerprint(data), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}

func TestApplyProviderRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	original := testProviderData("Acme")
	applyProvider(t, store, original)

	got, err := store.ProviderData(ctx, "Acme")
	require.NoError(t, err)

	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.SheetID, got.SheetID)
	assert.Equal(t, original.CurrencyMode, got.CurrencyMode)
	assert.ElementsMatch(t, original.Restrictions, got.Restrictions)
	assert.ElementsMatch(t, original.Currencies, got.Currencies)
	assert.Equal(t, original.Games, got.Games)

	// The read-back fingerprint matches the written one.
	assert.Equal(t, domain.Fingerprint(original), domain.Fingerprint(got))
}

func TestApplyProviderNewVersusUpdate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	data := testProviderData("Acme")

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)
	isNew, err := tx.ApplyProvider(ctx, data, domain.Fingerprint(data), time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, isNew)
	require.NoError(t, tx.Commit())

	data.Restrictions = data.Restrictions[:1]
	tx, err = store.BeginSync(ctx)
	require.NoError(t, err)
	isNew, err = tx.ApplyProvider(ctx, data, domain.Fingerprint(data), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, isNew)
	require.NoError(t, tx.Commit())

	// Detail rows were replaced, not appended.
	got, err := store.ProviderData(ctx, "Acme")
	require.NoError(t, err)
	assert.Len(t, got.Restrictions, 1)
}

func TestProviderDataNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ProviderData(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProvidersCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	applyProvider(t, store, testProviderData("Zeta"))
	applyProvider(t, store, testProviderData("Acme"))

	summaries, err := store.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Ordered by name.
	assert.Equal(t, "Acme", summaries[0].Name)
	assert.Equal(t, "Zeta", summaries[1].Name)

	acme := summaries[0]
	assert.Equal(t, 1, acme.Blocked)
	assert.Equal(t, 1, acme.Conditional)
	assert.Equal(t, 1, acme.Regulated)
	assert.Equal(t, 2, acme.Fiat)
	assert.Equal(t, 1, acme.Crypto)
	assert.Equal(t, 1, acme.Games)
}

func TestFingerprintCache(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	data := testProviderData("Acme")
	fp := domain.Fingerprint(data)
	applyProvider(t, store, data)

	cached, err := store.CachedFingerprints(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Acme": fp}, cached)

	// Recomputed fingerprints agree with the cache.
	computed, err := store.ProviderFingerprints(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, computed)
}

func TestSkipProviderRefreshesLastSynced(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	applyProvider(t, store, testProviderData("Acme"))

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SkipProvider(ctx, "Acme", "sheet-Acme", time.Now().UTC()))

	// Skipping an unknown provider reports the stale cache entry.
	err = tx.SkipProvider(ctx, "Ghost", "sheet-x", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, tx.Commit())
}

func TestPruneProviders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	applyProvider(t, store, testProviderData("Keep"))
	applyProvider(t, store, testProviderData("Drop"))

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)
	pruned, err := tx.PruneProviders(ctx, []string{"Keep"})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)
	require.NoError(t, tx.Commit())

	summaries, err := store.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Keep", summaries[0].Name)

	// The fingerprint cache is pruned alongside.
	cached, err := store.CachedFingerprints(ctx)
	require.NoError(t, err)
	assert.NotContains(t, cached, "Drop")

	// Cascade removed the dropped provider's detail rows.
	_, err = store.ProviderData(ctx, "Drop")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRollbackLeavesStoreUntouched(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	applyProvider(t, store, testProviderData("Acme"))

	tx, err := store.BeginSync(ctx)
	require.NoError(t, err)
	_, err = tx.ApplyProvider(ctx, testProviderData("Phantom"), "fp", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	summaries, err := store.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Acme", summaries[0].Name)
}

func TestSyncLogAppendAndRead(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"first", "second", "third"} {
		err := store.AppendLog(ctx, domain.SyncLogEntry{
			Timestamp:        time.Now().UTC().Add(time.Duration(i) * time.Second),
			ProviderName:     name,
			SheetID:          "sheet",
			Outcome:          domain.OutcomeSuccess,
			Message:          "ok",
			RestrictionCount: i,
		})
		require.NoError(t, err)
	}

	entries, err := store.SyncLog(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "third", entries[0].ProviderName)
	assert.Equal(t, "second", entries[1].ProviderName)
	assert.Equal(t, domain.OutcomeSuccess, entries[0].Outcome)
}

func TestLegacyCurrencyTableDualWrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	applyProvider(t, store, testProviderData("Acme"))

	var legacy int
	err := store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM currencies WHERE currency_type = 'FIAT'").Scan(&legacy)
	require.NoError(t, err)
	assert.Equal(t, 2, legacy)

	err = store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM currencies WHERE currency_type = 'CRYPTO'").Scan(&legacy)
	require.NoError(t, err)
	assert.Equal(t, 1, legacy)
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")

	store, err := NewStore(path)
	require.NoError(t, err)
	applyProvider(t, store, testProviderData("Acme"))
	require.NoError(t, store.Close())

	// Reopening runs migrate again; data survives.
	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	summaries, err := store.ListProviders(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
