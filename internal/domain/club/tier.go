package club

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tier is a membership stage (Bronze/Silver/Gold) a customer can enroll
// into. Tiers are never hard-deleted once the remote platform references
// them: removing a referenced tier retires it instead, freezing the record.
type Tier struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	// DurationMonths is how long an enrollment in this tier lasts
	DurationMonths int
	// MinPurchaseCents is the minimum single-purchase threshold, minor units
	MinPurchaseCents int64
	// MinLTVCents is the minimum lifetime-value threshold, minor units
	MinLTVCents int64
	// Upgradable marks whether members may move up from this tier
	Upgradable bool
	// StageOrder is the tier's position, taken from submitted order
	StageOrder int
	// ExternalClubID is the platform club/tier id, nil until first synced
	ExternalClubID *string
	// Active is false once the tier has been retired
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTier creates an active, not-yet-synced tier
func NewTier(tenantID uuid.UUID, name string, durationMonths int) (*Tier, error) {
	if name == "" {
		return nil, NewValidationError("name", "tier name cannot be empty")
	}
	if durationMonths <= 0 {
		return nil, NewValidationError("duration_months", "tier duration must be positive")
	}
	now := time.Now()
	return &Tier{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           name,
		DurationMonths: durationMonths,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsSynced reports whether the tier has a remote club counterpart
func (t *Tier) IsSynced() bool {
	return t.ExternalClubID != nil && *t.ExternalClubID != ""
}

// SetExternalClubID records the remote club id after a successful upsert
func (t *Tier) SetExternalClubID(id string) {
	t.ExternalClubID = &id
	t.UpdatedAt = time.Now()
}

// Retire deactivates a tier that the remote platform still references.
// A retired tier is frozen: its fields no longer change.
func (t *Tier) Retire() {
	t.Active = false
	t.UpdatedAt = time.Now()
}

// Qualifies reports whether a customer with the given lifetime value meets
// this tier's thresholds
func (t *Tier) Qualifies(ltvCents int64) bool {
	return ltvCents >= t.MinLTVCents
}

// ExpiryFrom computes when an enrollment started at the given time expires
func (t *Tier) ExpiryFrom(enrolledAt time.Time) time.Time {
	return enrolledAt.AddDate(0, t.DurationMonths, 0)
}

// TierRepository provides persistence for tiers
type TierRepository interface {
	// FindByID finds a tier within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Tier, error)
	// FindAllForTenant returns all tiers ordered by stage order
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Tier, error)
	// FindActiveForTenant returns active tiers ordered by stage order
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Tier, error)
	// Save creates or updates a tier
	Save(ctx context.Context, tier *Tier) error
	// Delete removes a tier row. Callers must prefer Retire for tiers the
	// remote platform references.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
