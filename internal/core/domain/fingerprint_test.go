package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseData() *ProviderData {
	return &ProviderData{
		Name:         "Acme Gaming",
		SheetID:      "sheet-1",
		CurrencyMode: ModeList,
		Restrictions: []RestrictionRecord{
			{CountryCode: "USA", Tier: TierBlocked},
			{CountryCode: "GBR", Tier: TierRegulated},
			{CountryCode: "FRA", Tier: TierConditional},
		},
		Currencies: []CurrencyRecord{
			{Code: "EUR", Class: ClassFiat},
			{Code: "USD", Class: ClassFiat},
			{Code: "BTC", Class: ClassCrypto},
		},
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(baseData())
	b := Fingerprint(baseData())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintOrderIndependent(t *testing.T) {
	shuffled := baseData()
	shuffled.Restrictions = []RestrictionRecord{
		{CountryCode: "FRA", Tier: TierConditional},
		{CountryCode: "USA", Tier: TierBlocked},
		{CountryCode: "GBR", Tier: TierRegulated},
	}
	shuffled.Currencies = []CurrencyRecord{
		{Code: "BTC", Class: ClassCrypto},
		{Code: "USD", Class: ClassFiat},
		{Code: "EUR", Class: ClassFiat},
	}

	assert.Equal(t, Fingerprint(baseData()), Fingerprint(shuffled))
}

func TestFingerprintDuplicateAndCaseIndependent(t *testing.T) {
	noisy := baseData()
	noisy.Restrictions = append(noisy.Restrictions,
		RestrictionRecord{CountryCode: "usa", Tier: TierBlocked})
	noisy.Currencies = append(noisy.Currencies,
		CurrencyRecord{Code: "eur", Class: ClassFiat})

	assert.Equal(t, Fingerprint(baseData()), Fingerprint(noisy))
}

func TestFingerprintDuplicateGameIndependent(t *testing.T) {
	withGames := baseData()
	withGames.Games = []GameRecord{{Title: "Book of Tests"}, {Title: "Mega Spin"}}

	doubled := baseData()
	doubled.Games = []GameRecord{
		{Title: "Mega Spin"}, {Title: "Book of Tests"}, {Title: "Book of Tests"},
	}

	assert.Equal(t, Fingerprint(withGames), Fingerprint(doubled))
}

func TestFingerprintSensitiveToContent(t *testing.T) {
	base := Fingerprint(baseData())

	tierChange := baseData()
	tierChange.Restrictions[0].Tier = TierConditional
	assert.NotEqual(t, base, Fingerprint(tierChange))

	extraCountry := baseData()
	extraCountry.Restrictions = append(extraCountry.Restrictions,
		RestrictionRecord{CountryCode: "DEU", Tier: TierBlocked})
	assert.NotEqual(t, base, Fingerprint(extraCountry))

	modeChange := baseData()
	modeChange.CurrencyMode = ModeAllFiat
	assert.NotEqual(t, base, Fingerprint(modeChange))

	gameChange := baseData()
	gameChange.Games = []GameRecord{{Title: "Book of Tests"}}
	assert.NotEqual(t, base, Fingerprint(gameChange))
}

func TestFingerprintIgnoresSourceMetadata(t *testing.T) {
	tagged := baseData()
	tagged.SheetID = "another-sheet"
	for i := range tagged.Restrictions {
		tagged.Restrictions[i].Source = "google:another-sheet"
	}

	require.Equal(t, Fingerprint(baseData()), Fingerprint(tagged))
}
