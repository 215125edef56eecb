package domain

import "time"

// Status is the lifecycle state of a provider. Providers are never
// hard-deleted from production; they transition between states instead.
type Status string

const (
	// StatusDraft marks a provider that has been created but not reviewed.
	StatusDraft Status = "DRAFT"
	// StatusActive marks a provider visible to downstream consumers.
	StatusActive Status = "ACTIVE"
)

// CurrencyMode describes how a provider's supported FIAT currencies are
// interpreted.
type CurrencyMode string

const (
	// ModeList means only the explicitly listed currencies are supported.
	ModeList CurrencyMode = "LIST"
	// ModeAllFiat means the provider supports any ISO 4217 currency,
	// regardless of the stored list.
	ModeAllFiat CurrencyMode = "ALL_FIAT"
)

// Provider is a gaming provider row as stored in staging or production.
type Provider struct {
	ID           int64
	Name         string
	Status       Status
	CurrencyMode CurrencyMode
	SheetID      string
	LastSynced   time.Time
	Notes        string
}

// ProviderSummary is a read-model row used by preview and compare:
// a provider with its per-table record counts.
type ProviderSummary struct {
	Name         string
	CurrencyMode CurrencyMode
	Blocked      int
	Conditional  int
	Regulated    int
	Fiat         int
	Crypto       int
	Games        int
}

// SheetRef identifies one provider's spreadsheet in the external source.
// Nested layouts reference a provider folder whose main sheet is located
// during fetch; flat layouts reference the spreadsheet directly.
type SheetRef struct {
	// ProviderName is the provider folder name, or for flat layouts the
	// spreadsheet name with trailing "Main DATA"-style suffixes stripped.
	ProviderName string
	// FolderID is the provider's Drive folder (nested layout).
	FolderID string
	// SpreadsheetID is the Drive file ID of the provider's sheet, when
	// already known (flat layout).
	SpreadsheetID string
}
