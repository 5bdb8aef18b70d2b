package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/enrollment"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormDraftRepository implements enrollment.DraftRepository using GORM.
// Drafts are keyed by (tenant, session); concurrent writers for the same
// session are last-write-wins.
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// Find returns the draft for a session
func (r *GormDraftRepository) Find(ctx context.Context, tenantID uuid.UUID, sessionID string) (*enrollment.Draft, error) {
	var model models.EnrollmentDraftModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, enrollment.ErrDraftNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or replaces the session's draft
func (r *GormDraftRepository) Save(ctx context.Context, d *enrollment.Draft) error {
	var model models.EnrollmentDraftModel
	if err := model.FromDomain(d); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete clears the session's draft. Deleting an absent draft is not an error.
func (r *GormDraftRepository) Delete(ctx context.Context, tenantID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.EnrollmentDraftModel{}, "tenant_id = ? AND session_id = ?", tenantID, sessionID).Error
}

var _ enrollment.DraftRepository = (*GormDraftRepository)(nil)
