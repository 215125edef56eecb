package grid

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

// currencyHeaderRows is how many leading rows are checked for the FIAT
// and crypto column headers.
const currencyHeaderRows = 5

// currencyPattern matches a currency code at the start of a cell, e.g.
// "USD (United States Dollar)" or "1INCH".
var currencyPattern = regexp.MustCompile(`^([A-Za-z0-9]{1,10})\b`)

// ParseCurrencies extracts currency records from a raw cell block and
// reports whether the sheet declares blanket FIAT support ("All ISO-4217
// currencies" and variants), which puts the provider in ALL_FIAT mode.
//
// Column roles are detected from header text in the leading rows: a
// column mentioning "crypto" holds crypto symbols; columns mentioning
// support/currency/request/fiat hold FIAT codes (several FIAT columns
// can coexist, e.g. "Supported currencies" plus "Upon request also
// supporting"). Without any headers, column 0 is assumed FIAT. Codes are
// upper-cased and deduplicated per class; FIAT codes must be exactly
// three letters, crypto codes 1-10 alphanumerics.
func ParseCurrencies(rows [][]string, opts Options) ([]domain.CurrencyRecord, bool, domain.ParseReport) {
	var report domain.ParseReport

	cryptoCol := findCryptoColumn(rows)
	fiatCols := findFiatColumns(rows)

	var (
		records []domain.CurrencyRecord
		seen    = map[domain.CurrencyClass]map[string]bool{
			domain.ClassFiat:   {},
			domain.ClassCrypto: {},
		}
		allFiat bool
	)

	add := func(code string, class domain.CurrencyClass, display bool) {
		if seen[class][code] {
			return
		}
		seen[class][code] = true
		records = append(records, domain.CurrencyRecord{
			Code:    code,
			Class:   class,
			Display: display,
			Source:  opts.Source,
		})
	}

	for _, row := range rows {
		for _, col := range fiatCols {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			lower := strings.ToLower(cell)

			if isAllFiatCell(lower) {
				allFiat = true
				continue
			}
			if isFiatHeaderish(lower) {
				continue
			}

			code, ok := currencyCode(cell)
			if !ok {
				report.Warnings++
				continue
			}
			// ISO 4217 FIAT codes are exactly three letters.
			if len(code) != 3 || !isAlpha(code) {
				report.Warnings++
				continue
			}
			add(code, domain.ClassFiat, true)
		}

		if cryptoCol >= 0 && !containsInt(fiatCols, cryptoCol) && cryptoCol < len(row) {
			cell := strings.TrimSpace(row[cryptoCol])
			if cell == "" {
				continue
			}
			lower := strings.ToLower(cell)
			if strings.Contains(lower, "crypto") || strings.Contains(lower, "digital") {
				continue
			}

			code, ok := currencyCode(cell)
			if !ok {
				report.Warnings++
				continue
			}
			add(code, domain.ClassCrypto, false)
		}
	}

	return records, allFiat, report
}

// findCryptoColumn locates the crypto column by header, or -1.
func findCryptoColumn(rows [][]string) int {
	for _, row := range firstN(rows, currencyHeaderRows) {
		for col, cell := range row {
			if strings.Contains(strings.ToLower(cell), "crypto") {
				return col
			}
		}
	}
	return -1
}

// findFiatColumns locates every FIAT column by header. Defaults to
// column 0 when no headers are present.
func findFiatColumns(rows [][]string) []int {
	var cols []int
	for _, row := range firstN(rows, currencyHeaderRows) {
		for col, cell := range row {
			lower := strings.ToLower(cell)
			if lower == "" || strings.Contains(lower, "crypto") || strings.Contains(lower, "digital") {
				continue
			}
			if strings.Contains(lower, "support") || strings.Contains(lower, "currenc") ||
				strings.Contains(lower, "request") || strings.Contains(lower, "fiat") {
				if !containsInt(cols, col) {
					cols = append(cols, col)
				}
			}
		}
	}
	if len(cols) == 0 {
		cols = []int{0}
	}
	return cols
}

// isAllFiatCell detects blanket-support declarations such as
// "All ISO-4217 currencies" or "all fiat".
func isAllFiatCell(lower string) bool {
	if !strings.Contains(lower, "all") {
		return false
	}
	return strings.Contains(lower, "iso") || strings.Contains(lower, "4217") ||
		strings.Contains(lower, "currencies") || strings.Contains(lower, "fiat")
}

// isFiatHeaderish matches header fragments within a FIAT column.
func isFiatHeaderish(lower string) bool {
	return strings.Contains(lower, "supported") || strings.Contains(lower, "request") ||
		strings.Contains(lower, "upon") || lower == "currency"
}

// currencyCode extracts an upper-cased currency code from a cell. As
// with country codes, a lower-case prefix is only accepted for bare
// codes so prose cells do not false-positive.
func currencyCode(cell string) (string, bool) {
	m := currencyPattern.FindStringSubmatch(cell)
	if m == nil {
		return "", false
	}
	code := m[1]
	if code != strings.ToUpper(code) && len(cell) != len(code) {
		return "", false
	}
	return strings.ToUpper(code), true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// firstN returns up to n leading rows.
func firstN(rows [][]string, n int) [][]string {
	if len(rows) < n {
		return rows
	}
	return rows[:n]
}
