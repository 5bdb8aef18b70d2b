package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormTierRepository implements club.TierRepository using GORM
type GormTierRepository struct {
	db *gorm.DB
}

// NewGormTierRepository creates a new GormTierRepository
func NewGormTierRepository(db *gorm.DB) *GormTierRepository {
	return &GormTierRepository{db: db}
}

// FindByID finds a tier within a tenant
func (r *GormTierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.Tier, error) {
	var model models.TierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, club.ErrTierNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns all tiers for a tenant ordered by stage order
func (r *GormTierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*club.Tier, error) {
	var records []*models.TierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("stage_order ASC, name ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	tiers := make([]*club.Tier, len(records))
	for i, m := range records {
		tiers[i] = m.ToDomain()
	}
	return tiers, nil
}

// FindActiveForTenant returns active tiers for a tenant ordered by stage order
func (r *GormTierRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*club.Tier, error) {
	var records []*models.TierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("stage_order ASC, name ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	tiers := make([]*club.Tier, len(records))
	for i, m := range records {
		tiers[i] = m.ToDomain()
	}
	return tiers, nil
}

// Save creates or updates a tier
func (r *GormTierRepository) Save(ctx context.Context, tier *club.Tier) error {
	var model models.TierModel
	model.FromDomain(tier)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a tier row
func (r *GormTierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TierModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return club.ErrTierNotFound
	}
	return nil
}

var _ club.TierRepository = (*GormTierRepository)(nil)
