package grid

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// iso3Pattern matches an ISO 3166-1 alpha-3 code at the start of a cell,
// e.g. "USA (United States)" or "usa".
var iso3Pattern = regexp.MustCompile(`^([A-Za-z]{3})\b`)

// ParseRestrictions extracts restriction records from a raw cell block.
//
// Sheets come in two layouts, both handled here: multi-column, where each
// column carries its own section header ("Blocked Countries", "Restricted
// Countries", "Regulated Markets"), and stacked, where one column holds
// several sections separated by header rows. A header cell anywhere in a
// column opens a section for that column from that row down. If the block
// contains no headers at all, column 0 is treated as one CONDITIONAL
// section, matching how operators fill in bare single-column sheets.
//
// Sections are consumed in source order: columns left to right, rows top
// to bottom within a column. At most one record per country survives;
// when a country appears in more than one section the collision is
// settled by opts.Precedence and counted in the report.
func ParseRestrictions(rows [][]string, opts Options) ([]domain.RestrictionRecord, domain.ParseReport) {
	var report domain.ParseReport

	headers := headerEvents(rows)
	cols := make([]int, 0, len(headers))
	for col := range headers {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	tiers := map[string]domain.Tier{}

	for _, col := range cols {
		events := headers[col]
		var (
			tier domain.Tier
			open bool
		)
		if events[0].row < 0 {
			// Headerless fallback section.
			tier, open = events[0].tier, true
		}

		for i, row := range rows {
			if len(events) > 0 && events[0].row == i {
				tier, open = events[0].tier, true
				events = events[1:]
				continue
			}
			if !open || col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" || isRestrictionHeaderish(cell) {
				continue
			}

			code, ok := countryCode(cell)
			if !ok {
				report.Warnings++
				continue
			}

			if prev, seen := tiers[code]; seen && prev != tier {
				report.Collisions++
				resolved := opts.resolve(prev, tier)
				logger.Warn("tier collision for %s: %s vs %s, keeping %s", code, prev, tier, resolved)
				tiers[code] = resolved
				continue
			}
			tiers[code] = tier
		}
	}

	codes := make([]string, 0, len(tiers))
	for code := range tiers {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	records := make([]domain.RestrictionRecord, 0, len(codes))
	for _, code := range codes {
		records = append(records, domain.RestrictionRecord{
			CountryCode: code,
			Tier:        tiers[code],
			Source:      opts.Source,
		})
	}
	return records, report
}

// headerEvent marks a section header at a row of one column. row -1 is
// the synthetic headerless fallback covering the whole column.
type headerEvent struct {
	row  int
	tier domain.Tier
}

// headerEvents locates every section header per column, sorted by row.
func headerEvents(rows [][]string) map[int][]headerEvent {
	events := map[int][]headerEvent{}
	for i, row := range rows {
		for col, cell := range row {
			if tier, ok := restrictionHeaderTier(cell); ok {
				events[col] = append(events[col], headerEvent{row: i, tier: tier})
			}
		}
	}
	if len(events) == 0 {
		events[0] = []headerEvent{{row: -1, tier: domain.TierConditional}}
	}
	return events
}

// restrictionHeaderTier classifies a section header cell.
func restrictionHeaderTier(cell string) (domain.Tier, bool) {
	lower := strings.ToLower(strings.TrimSpace(cell))

	hasScope := strings.Contains(lower, "countr") ||
		strings.Contains(lower, "area") ||
		strings.Contains(lower, "market")
	if !hasScope {
		return "", false
	}

	switch {
	case strings.Contains(lower, "regulated"):
		return domain.TierRegulated, true
	case strings.Contains(lower, "blocked"):
		// "blocked by default, can open per operator" means conditional.
		if strings.Contains(lower, "by default") || strings.Contains(lower, "can open") {
			return domain.TierConditional, true
		}
		return domain.TierBlocked, true
	case strings.Contains(lower, "restricted"):
		return domain.TierConditional, true
	}
	return "", false
}

// isRestrictionHeaderish matches leftover header fragments that are not
// country rows (e.g. a wrapped second header line). Skipped silently.
func isRestrictionHeaderish(cell string) bool {
	lower := strings.ToLower(cell)
	for _, kw := range []string{"restricted", "regulated", "blocked", "countries", "markets", "areas"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// countryCode extracts an upper-cased ISO3 code from a cell like
// "USA (United States)" or "usa". A lower-case prefix is only accepted
// when the whole cell is the bare code, so prose cells such as
// "The Netherlands" do not false-positive.
func countryCode(cell string) (string, bool) {
	m := iso3Pattern.FindStringSubmatch(cell)
	if m == nil {
		return "", false
	}
	code := m[1]
	if code != strings.ToUpper(code) && len(cell) != 3 {
		return "", false
	}
	return strings.ToUpper(code), true
}
