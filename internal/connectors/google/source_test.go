package google

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
)

func TestFindTab(t *testing.T) {
	tabs := []string{"Game list", "Restricted Countries", "Supported Currencies"}

	assert.Equal(t, "Restricted Countries", findTab(tabs, "restrict"))
	assert.Equal(t, "Supported Currencies", findTab(tabs, "currenc"))
	assert.Equal(t, "", findTab(tabs, "payments"))
	assert.Equal(t, "", findTab(nil, "restrict"))
}

func TestCurrencyMode(t *testing.T) {
	fiat := []domain.CurrencyRecord{{Code: "EUR", Class: domain.ClassFiat}}
	cryptoOnly := []domain.CurrencyRecord{{Code: "BTC", Class: domain.ClassCrypto}}

	// Blanket declaration wins regardless of the list.
	assert.Equal(t, domain.ModeAllFiat, currencyMode(fiat, true))

	// An explicit FIAT list means LIST mode.
	assert.Equal(t, domain.ModeList, currencyMode(fiat, false))

	// No FIAT list at all defaults to blanket support.
	assert.Equal(t, domain.ModeAllFiat, currencyMode(nil, false))
	assert.Equal(t, domain.ModeAllFiat, currencyMode(cryptoOnly, false))
}
