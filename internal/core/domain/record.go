package domain

// Tier is the severity classification of a country restriction.
type Tier string

const (
	// TierBlocked means blocked for all operators.
	TierBlocked Tier = "BLOCKED"
	// TierConditional means blocked by default but openable per operator.
	TierConditional Tier = "CONDITIONAL"
	// TierRegulated means a local licence or documentation is required.
	TierRegulated Tier = "REGULATED"
)

// Tiers lists all restriction tiers in a stable order.
var Tiers = []Tier{TierBlocked, TierConditional, TierRegulated}

// Severity orders tiers for the optional most-restrictive-wins collision
// policy. Higher is more restrictive.
func (t Tier) Severity() int {
	switch t {
	case TierBlocked:
		return 3
	case TierConditional:
		return 2
	case TierRegulated:
		return 1
	default:
		return 0
	}
}

// CurrencyClass partitions supported currencies into FIAT and crypto.
type CurrencyClass string

const (
	// ClassFiat is an ISO 4217 currency (USD, EUR, ...).
	ClassFiat CurrencyClass = "FIAT"
	// ClassCrypto is a crypto symbol (BTC, USDT, ...).
	ClassCrypto CurrencyClass = "CRYPTO"
)

// RestrictionRecord is one (provider, country) restriction. Country codes
// are ISO 3166-1 alpha-3, upper-cased. At most one tier exists per
// country after parsing.
type RestrictionRecord struct {
	CountryCode string
	Tier        Tier
	Source      string
}

// CurrencyRecord is one supported currency for a provider. Codes are
// upper-cased and deduplicated per (provider, class).
type CurrencyRecord struct {
	Code    string
	Class   CurrencyClass
	Display bool
	Source  string
}

// GameRecord is one catalogue entry from a provider's game list tab.
type GameRecord struct {
	WalletGameID string
	Title        string
	GameProvider string
	Vendor       string
	GameType     string
	Source       string
}

// ProviderData is the full normalised record set extracted from one
// provider's spreadsheet. It is the unit the fingerprint engine hashes
// and the sync orchestrator writes.
type ProviderData struct {
	Name         string
	SheetID      string
	CurrencyMode CurrencyMode
	Restrictions []RestrictionRecord
	Currencies   []CurrencyRecord
	Games        []GameRecord
}

// RestrictionCount returns the number of restriction records.
func (d *ProviderData) RestrictionCount() int { return len(d.Restrictions) }

// CurrencyCount returns the number of currency records across classes.
func (d *ProviderData) CurrencyCount() int { return len(d.Currencies) }

// ParseReport carries non-fatal observations from parsing one sheet.
// Malformed cells and tier collisions are counted, never thrown.
type ParseReport struct {
	Warnings   int
	Collisions int
}

// Merge folds another report into this one.
func (r *ParseReport) Merge(other ParseReport) {
	r.Warnings += other.Warnings
	r.Collisions += other.Collisions
}
