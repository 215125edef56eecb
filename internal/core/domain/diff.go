package domain

// Diff is the result of comparing staging against production by provider
// fingerprint. Provider name slices are sorted.
type Diff struct {
	// Added lists providers present in staging but not in production.
	Added []string
	// Removed lists providers present in production but not in staging.
	Removed []string
	// Changed lists providers present in both whose fingerprints differ.
	Changed []string
	// Unchanged counts providers present in both with equal fingerprints.
	Unchanged int
}

// Empty reports whether promoting staging would change production.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
