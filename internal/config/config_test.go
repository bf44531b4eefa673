package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TICK_DATA_DIR", "TICK_DB_PATH", "TICK_SESSION_PATH", "TICK_LOG_LEVEL", "TICK_LOG_FILE", "TICK_LOG_COMPRESS"} {
		t.Setenv(key, "")
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	c, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	dir := filepath.Join(dataHome, "tick")
	assert.Equal(t, dir, c.DataDir)
	assert.Equal(t, filepath.Join(dir, "tick.db"), c.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "session.yaml"), c.SessionPath)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, filepath.Join(dir, "logs", "tick.log"), c.Log.File)
	assert.Equal(t, 10, c.Log.MaxSizeMB)
}

func TestLoadFilePartialKeepsValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /srv/tick\nlog:\n  level: debug\n  max_backups: 9\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/tick", c.DataDir)
	assert.Equal(t, filepath.Join("/srv/tick", "tick.db"), c.DatabasePath)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 9, c.Log.MaxBackups)
	assert.Equal(t, 28, c.Log.MaxAgeDays)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_path: /from/file.db\n"), 0o644))

	t.Setenv("TICK_DB_PATH", "/from/env.db")
	t.Setenv("TICK_LOG_LEVEL", "warn")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", c.DatabasePath)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [oops"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := DefaultConfig()
	c.Log.Level = "debug"
	require.NoError(t, c.Save())

	path, err := Path()
	require.NoError(t, err)
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
