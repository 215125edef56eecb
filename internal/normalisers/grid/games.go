package grid

import (
	"sort"
	"strings"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// gameHeaderRows is how many leading rows are checked for game headers.
const gameHeaderRows = 3

// HasGameHeaders reports whether a block looks like a game list tab
// ("Game title", "Wallet game ID" headers in the leading rows).
func HasGameHeaders(rows [][]string) bool {
	for _, row := range firstN(rows, gameHeaderRows) {
		text := strings.ToLower(strings.Join(row, " "))
		if strings.Contains(text, "game title") || strings.Contains(text, "game_title") {
			return true
		}
		if strings.Contains(text, "wallet") && strings.Contains(text, "id") {
			return true
		}
	}
	return false
}

// gameColumns maps record fields to column indices.
type gameColumns struct {
	walletID, title, provider, vendor, gameType int
}

// ParseGames extracts game records from a game list tab. Columns are
// mapped by header text with a positional fallback (wallet ID, title,
// provider, vendor, type in columns A-E). Rows without a title are
// skipped.
func ParseGames(rows [][]string, opts Options) []domain.GameRecord {
	if len(rows) == 0 {
		return nil
	}

	cols := gameColumns{walletID: -1, title: -1, provider: -1, vendor: -1, gameType: -1}
	headerRow := 0

	for i, row := range firstN(rows, gameHeaderRows) {
		for col, cell := range row {
			lower := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case strings.Contains(lower, "wallet") && strings.Contains(lower, "id"):
				cols.walletID = col
			case strings.Contains(lower, "game title"):
				cols.title = col
			case strings.Contains(lower, "game provider"):
				cols.provider = col
			case strings.Contains(lower, "vendor"):
				cols.vendor = col
			case strings.Contains(lower, "game type"):
				cols.gameType = col
			}
		}
		if cols.title >= 0 || cols.gameType >= 0 {
			headerRow = i
			break
		}
	}

	// Positional fallback for header-less exports.
	if cols.walletID < 0 {
		cols.walletID = 0
	}
	if cols.title < 0 {
		cols.title = 1
	}
	if cols.provider < 0 {
		cols.provider = 2
	}
	if cols.vendor < 0 {
		cols.vendor = 3
	}
	if cols.gameType < 0 {
		cols.gameType = 4
	}

	var games []domain.GameRecord
	for _, row := range rows[headerRow+1:] {
		title := cellAt(row, cols.title)
		if title == "" {
			continue
		}
		games = append(games, domain.GameRecord{
			WalletGameID: cellAt(row, cols.walletID),
			Title:        title,
			GameProvider: cellAt(row, cols.provider),
			Vendor:       cellAt(row, cols.vendor),
			GameType:     cellAt(row, cols.gameType),
			Source:       opts.Source,
		})
	}
	return games
}

// UniqueGameTypes returns the sorted distinct game types of a catalogue.
func UniqueGameTypes(games []domain.GameRecord) []string {
	set := map[string]bool{}
	for _, g := range games {
		if g.GameType != "" {
			set[g.GameType] = true
		}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// cellAt returns the trimmed cell at col, or "" when out of range or a
// spreadsheet null artefact.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	val := strings.TrimSpace(row[col])
	switch strings.ToLower(val) {
	case "", "nan", "none":
		return ""
	}
	return val
}
