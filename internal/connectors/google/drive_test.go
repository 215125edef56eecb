package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderNameFromSheet(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  string
	}{
		{"main data suffix", "Acme Main DATA", "Acme"},
		{"xlsx extension", "Acme Main DATA.xlsx", "Acme"},
		{"data suffix", "Betsoft Data", "Betsoft"},
		{"main suffix", "Playtech Main", "Playtech"},
		{"no suffix", "Evolution", "Evolution"},
		{"mixed case", "acme MAIN data.xlsx", "acme"},
		{"suffix only once", "Data Main DATA", "Data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProviderNameFromSheet(tt.sheet))
		})
	}
}
