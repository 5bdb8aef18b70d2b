package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormLoyaltyConfigRepository implements club.LoyaltyConfigRepository using GORM
type GormLoyaltyConfigRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyConfigRepository creates a new GormLoyaltyConfigRepository
func NewGormLoyaltyConfigRepository(db *gorm.DB) *GormLoyaltyConfigRepository {
	return &GormLoyaltyConfigRepository{db: db}
}

// FindForTenant returns the tenant's loyalty config
func (r *GormLoyaltyConfigRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*club.LoyaltyConfig, error) {
	var model models.LoyaltyConfigModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, club.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates the loyalty config
func (r *GormLoyaltyConfigRepository) Save(ctx context.Context, cfg *club.LoyaltyConfig) error {
	var model models.LoyaltyConfigModel
	if err := model.FromDomain(cfg); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

var _ club.LoyaltyConfigRepository = (*GormLoyaltyConfigRepository)(nil)
