package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/geosync-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed provider store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.Store = (*Store)(nil)

// Open opens (creating and migrating if necessary) the store at path.
// Its signature matches driven.StoreOpener.
func Open(path string) (driven.Store, error) {
	return NewStore(path)
}

// NewStore creates a new SQLite store at the given file path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Reader ====================

// ListProviders returns summaries with per-table counts, ordered by name.
func (s *Store) ListProviders(ctx context.Context) ([]domain.ProviderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.currency_mode,
			(SELECT COUNT(*) FROM restrictions r WHERE r.provider_id = p.id AND r.restriction_type = 'BLOCKED'),
			(SELECT COUNT(*) FROM restrictions r WHERE r.provider_id = p.id AND r.restriction_type = 'CONDITIONAL'),
			(SELECT COUNT(*) FROM restrictions r WHERE r.provider_id = p.id AND r.restriction_type = 'REGULATED'),
			(SELECT COUNT(*) FROM fiat_currencies f WHERE f.provider_id = p.id),
			(SELECT COUNT(*) FROM crypto_currencies c WHERE c.provider_id = p.id),
			(SELECT COUNT(*) FROM games g WHERE g.provider_id = p.id)
		FROM providers p
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying providers: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ProviderSummary
	for rows.Next() {
		var sum domain.ProviderSummary
		var mode string
		if err := rows.Scan(&sum.Name, &mode, &sum.Blocked, &sum.Conditional, &sum.Regulated,
			&sum.Fiat, &sum.Crypto, &sum.Games); err != nil {
			return nil, fmt.Errorf("scanning provider summary: %w", err)
		}
		sum.CurrencyMode = domain.CurrencyMode(mode)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// ProviderFingerprints recomputes fingerprints from stored rows. Used by
// compare, which must hash what is actually persisted, not a cache.
func (s *Store) ProviderFingerprints(ctx context.Context) (map[string]string, error) {
	names, err := s.providerNames(ctx)
	if err != nil {
		return nil, err
	}

	fps := make(map[string]string, len(names))
	for _, name := range names {
		data, err := s.ProviderData(ctx, name)
		if err != nil {
			return nil, err
		}
		fps[name] = domain.Fingerprint(data)
	}
	return fps, nil
}

// ProviderData reads back the full record set for one provider.
func (s *Store) ProviderData(ctx context.Context, name string) (*domain.ProviderData, error) {
	var (
		id      int64
		mode    string
		sheetID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, currency_mode, sheet_id FROM providers WHERE name = ?", name,
	).Scan(&id, &mode, &sheetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provider %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying provider: %w", err)
	}

	data := &domain.ProviderData{
		Name:         name,
		SheetID:      sheetID.String,
		CurrencyMode: domain.CurrencyMode(mode),
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT country_code, restriction_type, source FROM restrictions WHERE provider_id = ? ORDER BY country_code", id)
	if err != nil {
		return nil, fmt.Errorf("querying restrictions: %w", err)
	}
	for rows.Next() {
		var rec domain.RestrictionRecord
		var tier string
		if err := rows.Scan(&rec.CountryCode, &tier, &rec.Source); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning restriction: %w", err)
		}
		rec.Tier = domain.Tier(tier)
		data.Restrictions = append(data.Restrictions, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The class tables are authoritative for read-back; the legacy table
	// only exists for downstream consumers.
	for _, q := range []struct {
		table string
		class domain.CurrencyClass
	}{
		{"fiat_currencies", domain.ClassFiat},
		{"crypto_currencies", domain.ClassCrypto},
	} {
		crows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT currency_code, display, source FROM %s WHERE provider_id = ? ORDER BY currency_code", q.table), id)
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", q.table, err)
		}
		for crows.Next() {
			var rec domain.CurrencyRecord
			if err := crows.Scan(&rec.Code, &rec.Display, &rec.Source); err != nil {
				crows.Close()
				return nil, fmt.Errorf("scanning currency: %w", err)
			}
			rec.Class = q.class
			data.Currencies = append(data.Currencies, rec)
		}
		crows.Close()
		if err := crows.Err(); err != nil {
			return nil, err
		}
	}

	grows, err := s.db.QueryContext(ctx,
		"SELECT wallet_game_id, title, game_provider, vendor, game_type, source FROM games WHERE provider_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	for grows.Next() {
		var rec domain.GameRecord
		if err := grows.Scan(&rec.WalletGameID, &rec.Title, &rec.GameProvider, &rec.Vendor, &rec.GameType, &rec.Source); err != nil {
			grows.Close()
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		data.Games = append(data.Games, rec)
	}
	grows.Close()
	if err := grows.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// SyncLog returns the most recent audit entries, newest first.
func (s *Store) SyncLog(ctx context.Context, limit int) ([]domain.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, provider_name, sheet_id, status, message, restrictions_count, currencies_count
		FROM sync_log ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var entries []domain.SyncLogEntry
	for rows.Next() {
		var e domain.SyncLogEntry
		var outcome string
		if err := rows.Scan(&e.Timestamp, &e.ProviderName, &e.SheetID, &outcome,
			&e.Message, &e.RestrictionCount, &e.CurrencyCount); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		e.Outcome = domain.SyncOutcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) providerNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM providers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying provider names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning provider name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ==================== Writer ====================

// CachedFingerprints loads the fingerprint cache from the previous run.
func (s *Store) CachedFingerprints(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT provider_name, fingerprint FROM provider_fingerprints")
	if err != nil {
		return nil, fmt.Errorf("querying fingerprint cache: %w", err)
	}
	defer rows.Close()

	fps := map[string]string{}
	for rows.Next() {
		var name, fp string
		if err := rows.Scan(&name, &fp); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		fps[name] = fp
	}
	return fps, rows.Err()
}

// BeginSync opens the single transaction one sync run writes through.
func (s *Store) BeginSync(ctx context.Context) (driven.SyncTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning sync transaction: %w", err)
	}
	return &syncTx{tx: tx}, nil
}

// AppendLog appends one audit entry outside a sync transaction.
func (s *Store) AppendLog(ctx context.Context, entry domain.SyncLogEntry) error {
	return appendLog(ctx, s.db, entry)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendLog(ctx context.Context, db execer, entry domain.SyncLogEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_log (timestamp, provider_name, sheet_id, status, message, restrictions_count, currencies_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Timestamp, entry.ProviderName, entry.SheetID, string(entry.Outcome),
		entry.Message, entry.RestrictionCount, entry.CurrencyCount)
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

// ==================== Sync transaction ====================

type syncTx struct {
	tx *sql.Tx
}

var _ driven.SyncTx = (*syncTx)(nil)

// ApplyProvider upserts the provider row and replaces all of its detail
// rows. Each provider is wrapped in a savepoint so a dual-write mismatch
// rolls back that provider alone.
func (t *syncTx) ApplyProvider(ctx context.Context, data *domain.ProviderData, fingerprint string, syncedAt time.Time) (bool, error) {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT apply_provider"); err != nil {
		return false, fmt.Errorf("creating savepoint: %w", err)
	}

	isNew, err := t.applyProvider(ctx, data, fingerprint, syncedAt)
	if err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT apply_provider"); rbErr != nil {
			return false, fmt.Errorf("rolling back to savepoint: %w (after %w)", rbErr, err)
		}
		return false, err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT apply_provider"); err != nil {
		return false, fmt.Errorf("releasing savepoint: %w", err)
	}
	return isNew, nil
}

func (t *syncTx) applyProvider(ctx context.Context, data *domain.ProviderData, fingerprint string, syncedAt time.Time) (bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM providers WHERE name = ?", data.Name).Scan(&id)
	isNew := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isNew {
		return false, fmt.Errorf("querying provider: %w", err)
	}

	if isNew {
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO providers (name, status, currency_mode, sheet_id, last_synced)
			VALUES (?, ?, ?, ?, ?)
		`, data.Name, string(domain.StatusActive), string(data.CurrencyMode), data.SheetID, syncedAt)
		if err != nil {
			return false, fmt.Errorf("inserting provider: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("reading provider id: %w", err)
		}
	} else {
		_, err := t.tx.ExecContext(ctx, `
			UPDATE providers SET currency_mode = ?, sheet_id = ?, last_synced = ? WHERE id = ?
		`, string(data.CurrencyMode), data.SheetID, syncedAt, id)
		if err != nil {
			return false, fmt.Errorf("updating provider: %w", err)
		}
	}

	// Replace all detail rows wholesale.
	for _, table := range []string{"restrictions", "fiat_currencies", "crypto_currencies", "currencies", "games"} {
		if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE provider_id = ?", table), id); err != nil {
			return false, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, r := range data.Restrictions {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO restrictions (provider_id, country_code, restriction_type, source)
			VALUES (?, ?, ?, ?)
		`, id, r.CountryCode, string(r.Tier), r.Source)
		if err != nil {
			return false, fmt.Errorf("inserting restriction %s: %w", r.CountryCode, err)
		}
	}

	if err := t.writeCurrencies(ctx, id, data.Currencies); err != nil {
		return false, err
	}

	for _, g := range data.Games {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO games (provider_id, wallet_game_id, title, game_provider, vendor, game_type, source)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, g.WalletGameID, g.Title, g.GameProvider, g.Vendor, g.GameType, g.Source)
		if err != nil {
			return false, fmt.Errorf("inserting game %q: %w", g.Title, err)
		}
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO provider_fingerprints (provider_name, fingerprint, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(provider_name) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at
	`, data.Name, fingerprint, syncedAt)
	if err != nil {
		return false, fmt.Errorf("caching fingerprint: %w", err)
	}

	return isNew, nil
}

// writeCurrencies dual-writes each currency to its class table and the
// legacy combined table, then verifies the row counts agree.
func (t *syncTx) writeCurrencies(ctx context.Context, providerID int64, currencies []domain.CurrencyRecord) error {
	for _, c := range currencies {
		table := "fiat_currencies"
		if c.Class == domain.ClassCrypto {
			table = "crypto_currencies"
		}
		_, err := t.tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (provider_id, currency_code, display, source) VALUES (?, ?, ?, ?)
		`, table), providerID, c.Code, c.Display, c.Source)
		if err != nil {
			return fmt.Errorf("inserting %s currency %s: %w", c.Class, c.Code, err)
		}

		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO currencies (provider_id, currency_code, currency_type, source) VALUES (?, ?, ?, ?)
		`, providerID, c.Code, string(c.Class), c.Source)
		if err != nil {
			return fmt.Errorf("inserting legacy currency %s: %w", c.Code, err)
		}
	}

	var classCount, legacyCount int
	err := t.tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM fiat_currencies WHERE provider_id = ?)
		     + (SELECT COUNT(*) FROM crypto_currencies WHERE provider_id = ?)
	`, providerID, providerID).Scan(&classCount)
	if err != nil {
		return fmt.Errorf("counting class currencies: %w", err)
	}
	err = t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM currencies WHERE provider_id = ?", providerID).Scan(&legacyCount)
	if err != nil {
		return fmt.Errorf("counting legacy currencies: %w", err)
	}

	if classCount != legacyCount {
		return fmt.Errorf("class tables hold %d rows, legacy holds %d: %w",
			classCount, legacyCount, domain.ErrDualWriteMismatch)
	}
	return nil
}

// SkipProvider refreshes last_synced without touching detail rows.
func (t *syncTx) SkipProvider(ctx context.Context, name, sheetID string, syncedAt time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE providers SET sheet_id = ?, last_synced = ? WHERE name = ?", sheetID, syncedAt, name)
	if err != nil {
		return fmt.Errorf("refreshing provider %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking refresh of %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("provider %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

// PruneProviders removes providers absent from keep. Detail rows cascade;
// the fingerprint cache is pruned alongside.
func (t *syncTx) PruneProviders(ctx context.Context, keep []string) (int, error) {
	if len(keep) == 0 {
		res, err := t.tx.ExecContext(ctx, "DELETE FROM providers")
		if err != nil {
			return 0, fmt.Errorf("pruning providers: %w", err)
		}
		if _, err := t.tx.ExecContext(ctx, "DELETE FROM provider_fingerprints"); err != nil {
			return 0, fmt.Errorf("pruning fingerprints: %w", err)
		}
		n, _ := res.RowsAffected()
		return int(n), nil
	}

	placeholders := strings.Repeat("?,", len(keep)-1) + "?"
	args := make([]any, len(keep))
	for i, name := range keep {
		args[i] = name
	}

	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM providers WHERE name NOT IN (%s)", placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("pruning providers: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM provider_fingerprints WHERE provider_name NOT IN (%s)", placeholders), args...); err != nil {
		return 0, fmt.Errorf("pruning fingerprints: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned providers: %w", err)
	}
	return int(n), nil
}

// AppendLog appends one audit entry within the transaction.
func (t *syncTx) AppendLog(ctx context.Context, entry domain.SyncLogEntry) error {
	return appendLog(ctx, t.tx, entry)
}

// Commit commits the sync transaction.
func (t *syncTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the sync transaction.
func (t *syncTx) Rollback() error {
	return t.tx.Rollback()
}
