package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetAndGet(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()

	run := func(args ...string) (string, error) {
		return executeWithDirs(t, configDir, dataDir, args...)
	}

	out, err := run("config", "set", "google.folder_id", "folder-123")
	require.NoError(t, err)
	assert.Contains(t, out, "google.folder_id = folder-123")

	out, err = run("config", "get", "google.folder_id")
	require.NoError(t, err)
	assert.Contains(t, out, "folder-123")
}

func TestConfigSetStoresIntegersTyped(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()

	_, err := executeWithDirs(t, configDir, dataDir, "config", "set", "backup.retention", "5")
	require.NoError(t, err)

	assert.Equal(t, 5, configStore.GetInt("backup.retention"))
}

func TestConfigGetUnknownKey(t *testing.T) {
	_, err := executeWithDirs(t, t.TempDir(), t.TempDir(), "config", "get", "no.such.key")
	assert.Error(t, err)
}

func TestPreviewWithoutStagingFails(t *testing.T) {
	out, err := executeWithDirs(t, t.TempDir(), t.TempDir(), "preview")
	require.Error(t, err)
	assert.Contains(t, out+err.Error(), "geosync sync")
}

func TestSyncWithoutConfigurationFails(t *testing.T) {
	t.Setenv(envFolderID, "")

	_, err := executeWithDirs(t, t.TempDir(), t.TempDir(), "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.folder_id")
}
