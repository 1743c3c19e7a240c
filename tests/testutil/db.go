package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database and migrates the
// full schema. Every call returns an isolated database, so tests never
// share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// Same as the production schema: requests keep dangling project and
		// requester references after deletes.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Single writer connection keeps the shared in-memory DB alive and
	// avoids SQLITE_BUSY under concurrent test goroutines.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.MaterialCategory{},
		&domain.MaterialRequest{},
		&domain.MaterialRequestItem{},
		&domain.Approval{},
		&domain.StockTransaction{},
		&domain.StockBalanceSnapshot{},
		&domain.NumberSequence{},
		&domain.Attachment{},
		&domain.AuditLog{},
	), "failed to migrate test schema")

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateTestUser inserts a user with the given role and returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		DisplayName:  "Test User",
		Role:         role,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProject inserts an active project and returns it.
func CreateTestProject(t *testing.T, db *gorm.DB, name string) *domain.Project {
	t.Helper()

	project := &domain.Project{
		Name:     name,
		Location: "Site A",
		Status:   domain.ProjectStatusActive,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestRequest inserts a material request with one line item.
func CreateTestRequest(t *testing.T, db *gorm.DB, projectID, requesterID uuid.UUID, status domain.RequestStatus) *domain.MaterialRequest {
	t.Helper()

	request := &domain.MaterialRequest{
		RequestNumber: fmt.Sprintf("REQ-T%s", uuid.New().String()[:8]),
		ProjectID:     projectID,
		RequesterID:   requesterID,
		Priority:      domain.PriorityNormal,
		Status:        status,
		Items: []domain.MaterialRequestItem{
			{
				Name:     "Cement OPC 53",
				Quantity: 100,
				Unit:     domain.UnitBags,
			},
		},
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

// UserContextFor builds an auth context for the given user.
func UserContextFor(user *domain.User) *auth.UserContext {
	return &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	}
}
