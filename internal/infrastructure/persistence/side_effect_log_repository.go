package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormSideEffectLogRepository implements club.SideEffectLogRepository using GORM
type GormSideEffectLogRepository struct {
	db *gorm.DB
}

// NewGormSideEffectLogRepository creates a new GormSideEffectLogRepository
func NewGormSideEffectLogRepository(db *gorm.DB) *GormSideEffectLogRepository {
	return &GormSideEffectLogRepository{db: db}
}

// Save appends a side-effect failure record
func (r *GormSideEffectLogRepository) Save(ctx context.Context, entry *club.SideEffectLog) error {
	var model models.SideEffectLogModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindForTenant lists recent failures for a tenant, newest first
func (r *GormSideEffectLogRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*club.SideEffectLog, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []*models.SideEffectLogModel
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]*club.SideEffectLog, len(records))
	for i, m := range records {
		entries[i] = m.ToDomain()
	}
	return entries, nil
}

var _ club.SideEffectLogRepository = (*GormSideEffectLogRepository)(nil)
