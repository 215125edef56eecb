package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// execute runs the root command against fresh temp config and data dirs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithDirs(t, t.TempDir(), t.TempDir(), args...)
}

// executeWithDirs runs the root command against the given directories so
// consecutive invocations can share state.
func executeWithDirs(t *testing.T, configDir, dataDir string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--config", configDir, "--data-dir", dataDir))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "geosync version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "geosync version dev")
}

func TestVersionLeavesDataDirUntouched(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	_, err := executeWithDirs(t, t.TempDir(), dataDir, "version")
	assert.NoError(t, err)

	// Only commands that snapshot open the catalogue, so running
	// version must not create the backups directory.
	assert.NoDirExists(t, filepath.Join(dataDir, "backups"))
}

func TestListCreatesCatalogueOnDemand(t *testing.T) {
	dataDir := t.TempDir()

	out, err := executeWithDirs(t, t.TempDir(), dataDir, "list")
	assert.NoError(t, err)
	assert.Contains(t, out, "No backups yet")
	assert.FileExists(t, filepath.Join(dataDir, "backups", "catalog.sqlite"))
}
