package database

import (
	"path/filepath"
	"testing"

	"gamevault/backend/internal/config"
	"gamevault/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConnectMigratesSQLite(t *testing.T) {
	db, err := Connect(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "gamevault.db"),
		MaxOpenConns:   3,
		MaxIdleConns:   5,
		LogLevel:       "silent",
	})
	require.NoError(t, err)
	defer Close(db)

	for _, model := range []interface{}{&models.Profile{}, &models.Game{}, &models.ProfileList{}, &models.Listed{}, &models.Review{}} {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.True(t, db.Migrator().HasTable("listed"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)

	// Migrating twice is harmless.
	require.NoError(t, Migrate(db))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DatabaseDriver: "mysql", DatabaseURL: "x", MaxOpenConns: 1})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, parseLogLevel("SILENT"))
	assert.Equal(t, logger.Error, parseLogLevel("error"))
	assert.Equal(t, logger.Info, parseLogLevel("info"))
	assert.Equal(t, logger.Warn, parseLogLevel("anything"))
}
