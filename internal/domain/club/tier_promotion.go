package club

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/promotion"
)

// TierPromotion links a tier to one external promotion. Only the external
// id and a cached title persist; full promotion detail is fetched from the
// platform at read time and held in Detail for display.
type TierPromotion struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	TierID   uuid.UUID
	// ExternalPromotionID is the platform promotion id, empty until created
	ExternalPromotionID string
	// Title is a display cache of the promotion title
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Detail is the remote promotion fetched at read time. Never persisted.
	Detail *promotion.Discount `gorm:"-"`
}

// NewTierPromotion creates a promotion record for a tier
func NewTierPromotion(tenantID, tierID uuid.UUID, title string) *TierPromotion {
	now := time.Now()
	return &TierPromotion{
		ID:        uuid.New(),
		TenantID:  tenantID,
		TierID:    tierID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsSynced reports whether the record references a remote promotion
func (p *TierPromotion) IsSynced() bool {
	return p.ExternalPromotionID != ""
}

// SetExternal records the remote promotion id and refreshes the title cache
func (p *TierPromotion) SetExternal(externalID, title string) {
	p.ExternalPromotionID = externalID
	if title != "" {
		p.Title = title
	}
	p.UpdatedAt = time.Now()
}

// TierPromotionRepository provides persistence for tier promotion records
type TierPromotionRepository interface {
	// FindByID finds a promotion record within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TierPromotion, error)
	// FindByTier returns promotion records for a tier
	FindByTier(ctx context.Context, tenantID, tierID uuid.UUID) ([]*TierPromotion, error)
	// Save creates or updates a promotion record
	Save(ctx context.Context, p *TierPromotion) error
	// Delete removes a promotion record
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// DeleteByTier removes all promotion records for a tier
	DeleteByTier(ctx context.Context, tenantID, tierID uuid.UUID) error
}
