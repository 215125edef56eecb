package grid

import "github.com/custodia-labs/geosync-cli/internal/core/domain"

// Precedence is the tie-break rule applied when the same country code
// appears under more than one restriction section of a sheet. The
// source documentation does not fix a rule, so it is configurable.
type Precedence string

const (
	// PrecedenceLastWins keeps the tier of the section declared last in
	// source order. Default: sections are curated by the data owner, so
	// the later declaration is treated as the correction.
	PrecedenceLastWins Precedence = "last-wins"

	// PrecedenceSeverity keeps the most restrictive tier
	// (BLOCKED > CONDITIONAL > REGULATED).
	PrecedenceSeverity Precedence = "severity"
)

// Valid reports whether p is a known precedence rule.
func (p Precedence) Valid() bool {
	return p == PrecedenceLastWins || p == PrecedenceSeverity
}

// Options configure a parse.
type Options struct {
	// Source tags every produced record with its origin
	// (e.g. "google:<sheet-id>").
	Source string
	// Precedence is the tier collision rule. Zero value means last-wins.
	Precedence Precedence
}

// resolve returns the tier that survives a collision under the
// configured precedence.
func (o Options) resolve(existing, incoming domain.Tier) domain.Tier {
	if o.Precedence == PrecedenceSeverity {
		if existing.Severity() >= incoming.Severity() {
			return existing
		}
		return incoming
	}
	return incoming
}
