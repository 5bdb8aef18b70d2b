package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/infrastructure/persistence/models"
)

// GormEnrollmentRepository implements club.EnrollmentRepository using GORM
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewGormEnrollmentRepository creates a new GormEnrollmentRepository
func NewGormEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// FindByID finds an enrollment within a tenant
func (r *GormEnrollmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.Enrollment, error) {
	var model models.EnrollmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, club.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByCustomer returns the customer's active enrollments, newest first
func (r *GormEnrollmentRepository) FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*club.Enrollment, error) {
	var records []*models.EnrollmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ? AND status = ?", tenantID, customerID, string(club.EnrollmentActive)).
		Order("enrolled_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	enrollments := make([]*club.Enrollment, len(records))
	for i, m := range records {
		enrollments[i] = m.ToDomain()
	}
	return enrollments, nil
}

// Save creates or updates an enrollment
func (r *GormEnrollmentRepository) Save(ctx context.Context, e *club.Enrollment) error {
	var model models.EnrollmentModel
	model.FromDomain(e)
	return r.db.WithContext(ctx).Save(&model).Error
}

var _ club.EnrollmentRepository = (*GormEnrollmentRepository)(nil)
