package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormTenantDataRepository implements club.TenantDataRepository using GORM
type GormTenantDataRepository struct {
	db *gorm.DB
}

// NewGormTenantDataRepository creates a new GormTenantDataRepository
func NewGormTenantDataRepository(db *gorm.DB) *GormTenantDataRepository {
	return &GormTenantDataRepository{db: db}
}

// PurgeTenant deletes all tenant-scoped rows in one transaction. Child
// tables go first so the delete order holds even without cascading
// constraints.
func (r *GormTenantDataRepository) PurgeTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.EnrollmentDraftModel{},
			&models.EnrollmentModel{},
			&models.CustomerModel{},
			&models.TierPromotionModel{},
			&models.TierModel{},
			&models.LoyaltyConfigModel{},
			&models.SideEffectLogModel{},
		} {
			if err := tx.Delete(model, "tenant_id = ?", tenantID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ club.TenantDataRepository = (*GormTenantDataRepository)(nil)
