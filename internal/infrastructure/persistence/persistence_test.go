package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// setupTestDB opens an in-memory SQLite database with the club schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TierModel{},
		&models.TierPromotionModel{},
		&models.LoyaltyConfigModel{},
		&models.SideEffectLogModel{},
		&models.CustomerModel{},
		&models.EnrollmentModel{},
		&models.EnrollmentDraftModel{},
	)
	require.NoError(t, err)

	return db
}
