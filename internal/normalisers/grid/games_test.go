package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasGameHeaders(t *testing.T) {
	assert.True(t, HasGameHeaders([][]string{
		{"Wallet game ID", "Game title", "Game provider", "Vendor", "Game type"},
	}))
	assert.True(t, HasGameHeaders([][]string{
		{"notes"},
		{"game_title", "game_type"},
	}))
	assert.False(t, HasGameHeaders([][]string{
		{"Supported currencies"},
		{"EUR"},
	}))
	assert.False(t, HasGameHeaders(nil))
}

func TestParseGamesHeaderMapped(t *testing.T) {
	rows := [][]string{
		{"Game title", "Game type", "Vendor", "Wallet game ID", "Game provider"},
		{"Book of Ra", "slot", "Novomatic", "bor_1", "Greentube"},
		{"", "slot", "", "x", ""}, // no title, skipped
		{"Blackjack Pro", "table", "NetEnt", "bjp_9", "NetEnt"},
	}

	games := ParseGames(rows, Options{Source: "test"})
	require.Len(t, games, 2)

	assert.Equal(t, "Book of Ra", games[0].Title)
	assert.Equal(t, "slot", games[0].GameType)
	assert.Equal(t, "Novomatic", games[0].Vendor)
	assert.Equal(t, "bor_1", games[0].WalletGameID)
	assert.Equal(t, "Greentube", games[0].GameProvider)
	assert.Equal(t, "test", games[0].Source)

	assert.Equal(t, "Blackjack Pro", games[1].Title)
}

func TestParseGamesPositionalFallback(t *testing.T) {
	// Header-less exports carry wallet ID, title, provider, vendor and
	// type in the first five columns.
	rows := [][]string{
		{"id", "title", "provider", "vendor", "type"}, // unrecognised header row
		{"w1", "Starburst", "NetEnt", "NetEnt", "slot"},
	}

	games := ParseGames(rows, Options{})
	require.Len(t, games, 1)
	assert.Equal(t, "w1", games[0].WalletGameID)
	assert.Equal(t, "Starburst", games[0].Title)
	assert.Equal(t, "slot", games[0].GameType)
}

func TestParseGamesNullArtefacts(t *testing.T) {
	rows := [][]string{
		{"Wallet game ID", "Game title", "Game provider", "Vendor", "Game type"},
		{"nan", "Roulette", "none", "NaN", "table"},
	}

	games := ParseGames(rows, Options{})
	require.Len(t, games, 1)
	assert.Empty(t, games[0].WalletGameID)
	assert.Empty(t, games[0].GameProvider)
	assert.Empty(t, games[0].Vendor)
}

func TestUniqueGameTypes(t *testing.T) {
	rows := [][]string{
		{"Game title", "Game type"},
		{"A", "slot"},
		{"B", "table"},
		{"C", "slot"},
		{"D", ""},
	}

	games := ParseGames(rows, Options{})
	assert.Equal(t, []string{"slot", "table"}, UniqueGameTypes(games))
}
