package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("BOOKMARKS_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 4, cfg.Store.MaxSaveAttempts)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "bookmarks:changes", cfg.Redis.Channel)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.DebugAssertions)
	assert.Equal(t, filepath.Join(dir, "Bookmarks.sqlite"), cfg.DBPath())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKMARKS_DATA_DIR", dir)
	t.Setenv("BOOKMARKS_REDIS_ADDR", "localhost:6379")

	yaml := "log:\n  level: debug\nstore:\n  max_save_attempts: 0\nserver:\n  addr: 127.0.0.1:9000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	// at least one attempt is always made
	assert.Equal(t, 1, cfg.Store.MaxSaveAttempts)
}
