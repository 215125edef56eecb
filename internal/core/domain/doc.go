// Package domain contains the core business entities for geosync:
// providers, restriction and currency records, fingerprints, diffs,
// backups and the sync audit log. It has no dependencies on adapters
// or external services.
package domain
