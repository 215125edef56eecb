package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/geosync-cli/internal/logger"
	"github.com/custodia-labs/geosync-cli/internal/normalisers/grid"
)

// Grid extents read per tab. Wide enough for any observed sheet layout;
// the Sheets API trims trailing empty rows from the response.
const (
	restrictionRange = "A1:Z200"
	currencyRange    = "A1:Z200"
	gameRange        = "A1:Z5000"
)

// SheetSource reads provider data from a Google Drive folder. It
// supports both layouts in use: one subfolder per provider holding a
// "Main DATA" spreadsheet, and spreadsheets placed directly in the
// source folder.
type SheetSource struct {
	drive      *DriveClient
	sheets     *SheetsClient
	folderID   string
	precedence string
}

var _ driven.SheetSource = (*SheetSource)(nil)

// NewSheetSource creates a source reading from the given Drive folder.
// precedence selects the tier collision policy passed to the parser.
func NewSheetSource(drive *DriveClient, sheets *SheetsClient, folderID, precedence string) *SheetSource {
	return &SheetSource{
		drive:      drive,
		sheets:     sheets,
		folderID:   folderID,
		precedence: precedence,
	}
}

// Providers lists every provider discovered in the source folder:
// subfolders first, then flat spreadsheets at the root. Sheet resolution
// for folder entries is deferred to Fetch so a folder without a
// spreadsheet fails that provider alone.
func (s *SheetSource) Providers(ctx context.Context) ([]domain.SheetRef, error) {
	folders, err := s.drive.ListProviderFolders(ctx, s.folderID)
	if err != nil {
		return nil, fmt.Errorf("list provider folders: %w", err)
	}

	refs := make([]domain.SheetRef, 0, len(folders))
	for _, f := range folders {
		refs = append(refs, domain.SheetRef{
			ProviderName: strings.TrimSpace(f.Name),
			FolderID:     f.Id,
		})
	}

	flat, err := s.drive.ListSpreadsheets(ctx, s.folderID)
	if err != nil {
		return nil, fmt.Errorf("list root spreadsheets: %w", err)
	}
	for _, f := range flat {
		refs = append(refs, domain.SheetRef{
			ProviderName:  ProviderNameFromSheet(f.Name),
			SpreadsheetID: f.Id,
		})
	}

	logger.Info("Discovered %d providers (%d folders, %d flat sheets)", len(refs), len(folders), len(flat))
	return refs, nil
}

// Fetch reads one provider's sheet and normalises it into a record set.
func (s *SheetSource) Fetch(ctx context.Context, ref domain.SheetRef) (*domain.ProviderData, domain.ParseReport, error) {
	var report domain.ParseReport

	sheetID := ref.SpreadsheetID
	if sheetID == "" {
		file, err := s.drive.FindMainDataSheet(ctx, ref.FolderID)
		if err != nil {
			return nil, report, fmt.Errorf("locate sheet for %s: %w", ref.ProviderName, err)
		}
		sheetID = file.Id
	}

	tabs, err := s.sheets.TabTitles(ctx, sheetID)
	if err != nil {
		return nil, report, fmt.Errorf("list tabs for %s: %w", ref.ProviderName, err)
	}

	opts := grid.Options{
		Source:     "google:" + sheetID,
		Precedence: grid.Precedence(s.precedence),
	}

	data := &domain.ProviderData{
		Name:    ref.ProviderName,
		SheetID: sheetID,
	}

	if tab := findTab(tabs, "restrict"); tab != "" {
		rows, err := s.sheets.ReadRange(ctx, sheetID, tab, restrictionRange)
		if err != nil {
			return nil, report, fmt.Errorf("read restrictions for %s: %w", ref.ProviderName, err)
		}
		var rep domain.ParseReport
		data.Restrictions, rep = grid.ParseRestrictions(rows, opts)
		report.Merge(rep)
	} else {
		logger.Warn("%s: no restrictions tab found", ref.ProviderName)
		report.Warnings++
	}

	allFiat := false
	if tab := findTab(tabs, "currenc"); tab != "" {
		rows, err := s.sheets.ReadRange(ctx, sheetID, tab, currencyRange)
		if err != nil {
			return nil, report, fmt.Errorf("read currencies for %s: %w", ref.ProviderName, err)
		}
		var rep domain.ParseReport
		data.Currencies, allFiat, rep = grid.ParseCurrencies(rows, opts)
		report.Merge(rep)
	} else {
		logger.Warn("%s: no currencies tab found", ref.ProviderName)
		report.Warnings++
	}
	data.CurrencyMode = currencyMode(data.Currencies, allFiat)

	// Game catalogues live on the first tab when it carries the expected
	// headers. Absence is normal, not a warning.
	if len(tabs) > 0 {
		rows, err := s.sheets.ReadRange(ctx, sheetID, tabs[0], gameRange)
		if err != nil {
			return nil, report, fmt.Errorf("read game list for %s: %w", ref.ProviderName, err)
		}
		if grid.HasGameHeaders(rows) {
			data.Games = grid.ParseGames(rows, opts)
		}
	}

	logger.Debug("%s: %d restrictions, %d currencies, %d games (mode %s)",
		ref.ProviderName, data.RestrictionCount(), data.CurrencyCount(), len(data.Games), data.CurrencyMode)
	return data, report, nil
}

// findTab returns the first tab whose title contains the keyword, case
// insensitively.
func findTab(tabs []string, keyword string) string {
	for _, t := range tabs {
		if strings.Contains(strings.ToLower(t), keyword) {
			return t
		}
	}
	return ""
}

// currencyMode derives the provider's currency mode. A blanket-support
// declaration or the absence of any FIAT list both mean ALL_FIAT.
func currencyMode(currencies []domain.CurrencyRecord, allFiat bool) domain.CurrencyMode {
	if allFiat {
		return domain.ModeAllFiat
	}
	for _, c := range currencies {
		if c.Class == domain.ClassFiat {
			return domain.ModeList
		}
	}
	return domain.ModeAllFiat
}
