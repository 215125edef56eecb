// Package grid parses raw rectangular sheet ranges into typed
// restriction, currency and game records.
//
// Parsers are pure functions over a [][]string cell block: the same
// input always yields the same records. Section boundaries are detected
// from header text (case-insensitive, trimmed); rows below a header and
// above the next one belong to that section. Malformed cells are
// discarded and counted as parse warnings, never raised as errors.
package grid
