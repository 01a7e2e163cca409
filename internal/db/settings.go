package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewdigital/promptgate/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSettingNotFound is returned when a server_config key has never been written.
var ErrSettingNotFound = errors.New("server setting not found")

// GetSetting reads a single server_config value.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var setting models.ServerConfig
	err := db.Where(&models.ServerConfig{Key: key}).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%s: %w", key, ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// EnsureSetting returns the stored value for key. When the key is missing
// the value produced by initial is stored first and created is true.
// Concurrent callers converge on whichever value was inserted first.
func EnsureSetting(db *gorm.DB, key string, initial func() string) (value string, created bool, err error) {
	setting := models.ServerConfig{Key: key}
	result := db.Where(&models.ServerConfig{Key: key}).
		Attrs(&models.ServerConfig{Value: initial()}).
		FirstOrCreate(&setting)
	if result.Error != nil {
		return "", false, fmt.Errorf("failed to ensure setting %s: %w", key, result.Error)
	}
	return setting.Value, result.RowsAffected > 0, nil
}

// EnsureInstanceID assigns this deployment a stable random identifier on
// first start and returns it on every start after.
func EnsureInstanceID(db *gorm.DB) (string, error) {
	id, created, err := EnsureSetting(db, models.ServerConfigKeyInstanceID, uuid.NewString)
	if err != nil {
		return "", err
	}
	if created {
		slog.Info("Generated new instance ID", "instance_id", id)
	}
	return id, nil
}

// InstanceID returns the identifier stored by EnsureInstanceID.
func InstanceID(db *gorm.DB) (string, error) {
	return GetSetting(db, models.ServerConfigKeyInstanceID)
}
