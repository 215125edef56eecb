package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// fingerprintPayload is the canonical serialisation hashed by Fingerprint.
// Field order is fixed by the struct; slices are sorted and deduplicated
// before marshalling so that input order and casing cannot affect the hash.
type fingerprintPayload struct {
	Restrictions map[string][]string `json:"restrictions"`
	Currencies   map[string][]string `json:"currencies"`
	AllFiat      bool                `json:"all_fiat"`
	Games        []string            `json:"games,omitempty"`
}

// Fingerprint computes a stable content hash over a provider's normalised
// record set. Two fingerprints are equal iff the data is semantically
// identical: duplicates, ordering and casing do not change the result.
func Fingerprint(data *ProviderData) string {
	payload := fingerprintPayload{
		Restrictions: map[string][]string{},
		Currencies:   map[string][]string{},
		AllFiat:      data.CurrencyMode == ModeAllFiat,
	}

	for _, tier := range Tiers {
		payload.Restrictions[string(tier)] = []string{}
	}
	for _, r := range data.Restrictions {
		key := string(r.Tier)
		payload.Restrictions[key] = append(payload.Restrictions[key], strings.ToUpper(r.CountryCode))
	}

	payload.Currencies[string(ClassFiat)] = []string{}
	payload.Currencies[string(ClassCrypto)] = []string{}
	for _, c := range data.Currencies {
		key := string(c.Class)
		payload.Currencies[key] = append(payload.Currencies[key], strings.ToUpper(c.Code))
	}

	for k := range payload.Restrictions {
		payload.Restrictions[k] = sortedUnique(payload.Restrictions[k])
	}
	for k := range payload.Currencies {
		payload.Currencies[k] = sortedUnique(payload.Currencies[k])
	}

	// Titles keep their casing: codes are normalised identifiers, game
	// titles are display strings.
	for _, g := range data.Games {
		payload.Games = append(payload.Games, g.Title)
	}
	if len(payload.Games) > 0 {
		payload.Games = sortedUnique(payload.Games)
	}

	// Marshalling a map is deterministic: encoding/json sorts map keys.
	raw, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable types can fail here, and the payload is
		// plain strings and bools.
		panic("domain: fingerprint marshal: " + err.Error())
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// sortedUnique returns a sorted copy of codes with duplicates removed.
func sortedUnique(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
