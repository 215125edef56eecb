package driven

import "path/filepath"

// Default store filenames inside the data directory. The layout mirrors
// the persisted-state contract: a production store read by consumers, a
// disposable staging store, and a backups directory of snapshots.
const (
	ProductionFile = "database.sqlite"
	StagingFile    = "staging.sqlite"
	BackupsDirName = "backups"
)

// Paths resolves the on-disk layout of all persisted state from a single
// data directory.
type Paths struct {
	DataDir string
}

// Production returns the path of the production store file.
func (p Paths) Production() string { return filepath.Join(p.DataDir, ProductionFile) }

// Staging returns the path of the staging store file.
func (p Paths) Staging() string { return filepath.Join(p.DataDir, StagingFile) }

// BackupsDir returns the directory holding snapshot files.
func (p Paths) BackupsDir() string { return filepath.Join(p.DataDir, BackupsDirName) }

// Backup returns the full path for a snapshot filename.
func (p Paths) Backup(filename string) string {
	return filepath.Join(p.BackupsDir(), filename)
}
