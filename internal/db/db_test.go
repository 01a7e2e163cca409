package db

import (
	"path/filepath"
	"testing"

	"github.com/crewdigital/promptgate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SQLiteAppliesPragmas(t *testing.T) {
	database, err := New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "promptgate.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var mode string
	require.NoError(t, database.Raw("PRAGMA journal_mode").Row().Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, database.Raw("PRAGMA busy_timeout").Row().Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver: mysql")
}
