package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

func codesByClass(records []domain.CurrencyRecord, class domain.CurrencyClass) []string {
	var codes []string
	for _, r := range records {
		if r.Class == class {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

func TestParseCurrenciesFiatAndCrypto(t *testing.T) {
	rows := [][]string{
		{"Supported currencies", "Crypto"},
		{"EUR", "BTC"},
		{"USD (United States Dollar)", "USDT"},
		{"GBP", "1INCH"},
	}

	records, allFiat, report := ParseCurrencies(rows, Options{Source: "test"})
	assert.False(t, allFiat)
	assert.Zero(t, report.Warnings)

	assert.ElementsMatch(t, []string{"EUR", "USD", "GBP"}, codesByClass(records, domain.ClassFiat))
	assert.ElementsMatch(t, []string{"BTC", "USDT", "1INCH"}, codesByClass(records, domain.ClassCrypto))

	for _, r := range records {
		if r.Class == domain.ClassFiat {
			assert.True(t, r.Display)
		} else {
			assert.False(t, r.Display)
		}
	}
}

func TestParseCurrenciesAllFiatDetection(t *testing.T) {
	rows := [][]string{
		{"Supported currencies"},
		{"All ISO-4217 currencies"},
	}

	records, allFiat, _ := ParseCurrencies(rows, Options{})
	assert.True(t, allFiat)
	assert.Empty(t, codesByClass(records, domain.ClassFiat))
}

func TestParseCurrenciesAllFiatAlongsideList(t *testing.T) {
	// Some sheets list preferred currencies and still declare blanket
	// support; both survive.
	rows := [][]string{
		{"Supported currencies"},
		{"EUR"},
		{"all fiat"},
		{"USD"},
	}

	records, allFiat, _ := ParseCurrencies(rows, Options{})
	assert.True(t, allFiat)
	assert.ElementsMatch(t, []string{"EUR", "USD"}, codesByClass(records, domain.ClassFiat))
}

func TestParseCurrenciesMultipleFiatColumns(t *testing.T) {
	rows := [][]string{
		{"Supported currencies", "Upon request also supporting"},
		{"EUR", "NOK"},
		{"USD", "SEK"},
	}

	records, _, _ := ParseCurrencies(rows, Options{})
	assert.ElementsMatch(t, []string{"EUR", "USD", "NOK", "SEK"},
		codesByClass(records, domain.ClassFiat))
}

func TestParseCurrenciesHeaderlessDefaultsToColumnZero(t *testing.T) {
	rows := [][]string{
		{"EUR"},
		{"USD"},
	}

	records, allFiat, _ := ParseCurrencies(rows, Options{})
	assert.False(t, allFiat)
	assert.ElementsMatch(t, []string{"EUR", "USD"}, codesByClass(records, domain.ClassFiat))
}

func TestParseCurrenciesRejectsNonISOFiat(t *testing.T) {
	rows := [][]string{
		{"Supported currencies"},
		{"EURO"},    // four letters, not a code
		{"E1"},      // digits are not FIAT
		{"payment"}, // prose
		{"EUR"},
	}

	records, _, report := ParseCurrencies(rows, Options{})
	require.Equal(t, []string{"EUR"}, codesByClass(records, domain.ClassFiat))
	assert.Equal(t, 3, report.Warnings)
}

func TestParseCurrenciesDeduplicates(t *testing.T) {
	rows := [][]string{
		{"Supported currencies"},
		{"EUR"},
		{"eur"},
		{"EUR (Euro)"},
	}

	records, _, _ := ParseCurrencies(rows, Options{})
	assert.Equal(t, []string{"EUR"}, codesByClass(records, domain.ClassFiat))
}
