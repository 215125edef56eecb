package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLockHeld indicates another sync or promotion is already running.
	// Commands fail fast on this instead of queuing.
	ErrLockHeld = errors.New("another operation holds the lock")

	// ErrNoStaging indicates no staging store exists yet; run sync first.
	ErrNoStaging = errors.New("no staging database found")

	// ErrNoProduction indicates the production store does not exist yet.
	ErrNoProduction = errors.New("no production database found")

	// ErrNoBackups indicates no backup is available to restore from.
	ErrNoBackups = errors.New("no backups available")

	// ErrBackupFailed indicates the pre-promotion snapshot could not be
	// created. Promotion aborts before any production mutation.
	ErrBackupFailed = errors.New("backup failed")

	// ErrSwapFailed indicates the atomic swap of staging over production
	// failed. Production is left untouched and the backup remains.
	ErrSwapFailed = errors.New("swap failed")

	// ErrDualWriteMismatch indicates the class-specific and legacy
	// currency tables disagreed after a write. Fatal for that provider.
	ErrDualWriteMismatch = errors.New("dual-write mismatch between currency tables")

	// ErrSourceUnavailable indicates the external sheet source could not
	// be reached. Retryable at provider granularity.
	ErrSourceUnavailable = errors.New("source unavailable")
)
