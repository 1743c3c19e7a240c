package database_test

import (
	"path/filepath"
	"testing"

	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/database"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "procurement.db"),
	}
}

// A fresh self-hosted install starts from an empty file. After
// AutoMigrate every table must exist and accept writes.
func TestNewDatabase_SQLiteFreshInstall(t *testing.T) {
	cfg := openSQLite(t)

	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	var users int64
	require.NoError(t, db.Model(&domain.User{}).Count(&users).Error)
	assert.Equal(t, int64(0), users)

	require.NoError(t, db.Create(&domain.User{
		Email:        "fitter@example.com",
		DisplayName:  "Site Fitter",
		Role:         domain.RoleUser,
		PasswordHash: "x",
		IsActive:     true,
	}).Error)

	for _, model := range []interface{}{
		&domain.Project{},
		&domain.MaterialCategory{},
		&domain.MaterialRequest{},
		&domain.StockTransaction{},
		&domain.StockBalanceSnapshot{},
		&domain.NumberSequence{},
		&domain.Attachment{},
		&domain.AuditLog{},
	} {
		var n int64
		assert.NoError(t, db.Model(model).Count(&n).Error)
	}
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := database.NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestHealthCheck(t *testing.T) {
	cfg := openSQLite(t)
	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)

	assert.NoError(t, database.HealthCheck(db))

	stats, err := database.HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}
