package domain

import "time"

// BackupRecord catalogues one timestamped snapshot of the production
// store. Records are created exclusively by the promotion and restore
// paths, never by sync.
type BackupRecord struct {
	ID        string
	Timestamp time.Time
	Filename  string
	SizeBytes int64
}
