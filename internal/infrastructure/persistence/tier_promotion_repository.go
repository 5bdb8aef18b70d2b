package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormTierPromotionRepository implements club.TierPromotionRepository using GORM
type GormTierPromotionRepository struct {
	db *gorm.DB
}

// NewGormTierPromotionRepository creates a new GormTierPromotionRepository
func NewGormTierPromotionRepository(db *gorm.DB) *GormTierPromotionRepository {
	return &GormTierPromotionRepository{db: db}
}

// FindByID finds a promotion record within a tenant
func (r *GormTierPromotionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.TierPromotion, error) {
	var model models.TierPromotionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, club.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTier returns promotion records for a tier, oldest first
func (r *GormTierPromotionRepository) FindByTier(ctx context.Context, tenantID, tierID uuid.UUID) ([]*club.TierPromotion, error) {
	var records []*models.TierPromotionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND tier_id = ?", tenantID, tierID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	promos := make([]*club.TierPromotion, len(records))
	for i, m := range records {
		promos[i] = m.ToDomain()
	}
	return promos, nil
}

// Save creates or updates a promotion record
func (r *GormTierPromotionRepository) Save(ctx context.Context, p *club.TierPromotion) error {
	var model models.TierPromotionModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a promotion record
func (r *GormTierPromotionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TierPromotionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return club.ErrNotFound
	}
	return nil
}

// DeleteByTier removes all promotion records for a tier. Removing records
// for a tier that has none is not an error.
func (r *GormTierPromotionRepository) DeleteByTier(ctx context.Context, tenantID, tierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.TierPromotionModel{}, "tenant_id = ? AND tier_id = ?", tenantID, tierID).Error
}

var _ club.TierPromotionRepository = (*GormTierPromotionRepository)(nil)
