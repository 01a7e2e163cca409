package db

import (
	"testing"

	"github.com/crewdigital/promptgate/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open test db")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db), "migrate")
	return db
}

func TestGetSetting_Missing(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetSetting(db, "nope")
	assert.ErrorIs(t, err, ErrSettingNotFound)
	assert.ErrorContains(t, err, "nope")
}

func TestEnsureSetting(t *testing.T) {
	db := setupTestDB(t)

	calls := 0
	initial := func() string {
		calls++
		return "first"
	}

	value, created, err := EnsureSetting(db, "greeting", initial)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "first", value)

	value, created, err = EnsureSetting(db, "greeting", func() string { return "second" })
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first", value, "existing values are never replaced")

	got, err := GetSetting(db, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	assert.Equal(t, 1, calls)
}

func TestEnsureInstanceID(t *testing.T) {
	db := setupTestDB(t)

	_, err := InstanceID(db)
	require.ErrorIs(t, err, ErrSettingNotFound)

	id, err := EnsureInstanceID(db)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "instance ID is not a valid UUID")

	again, err := EnsureInstanceID(db)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	stored, err := InstanceID(db)
	require.NoError(t, err)
	assert.Equal(t, id, stored)
}

func TestEnsureInstanceID_KeepsPreseededValue(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.ServerConfig{
		Key:   models.ServerConfigKeyInstanceID,
		Value: "restored-from-backup",
	}).Error)

	id, err := EnsureInstanceID(db)
	require.NoError(t, err)
	assert.Equal(t, "restored-from-backup", id)
}
