package club

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoyaltyConfig is the per-tenant loyalty rule. Its persistence is
// authoritative: a failure to save it aborts the whole setup operation,
// unlike promotion sync failures which are downgraded to warnings.
type LoyaltyConfig struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	// Enabled toggles the loyalty program
	Enabled bool
	// WelcomeBonusPoints is awarded once after a successful enrollment
	WelcomeBonusPoints int64
	// PointsPerDollar is the earn rate on purchases
	PointsPerDollar int64
	// TierLoyaltyIDs maps local tier id to the platform loyalty-tier id
	TierLoyaltyIDs map[uuid.UUID]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewLoyaltyConfig creates a disabled loyalty config for a tenant
func NewLoyaltyConfig(tenantID uuid.UUID) *LoyaltyConfig {
	now := time.Now()
	return &LoyaltyConfig{
		ID:             uuid.New(),
		TenantID:       tenantID,
		TierLoyaltyIDs: make(map[uuid.UUID]string),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SetTierLoyaltyID records the platform loyalty-tier id for a local tier
func (c *LoyaltyConfig) SetTierLoyaltyID(tierID uuid.UUID, externalID string) {
	if c.TierLoyaltyIDs == nil {
		c.TierLoyaltyIDs = make(map[uuid.UUID]string)
	}
	c.TierLoyaltyIDs[tierID] = externalID
	c.UpdatedAt = time.Now()
}

// RemoveTier drops the loyalty-tier mapping for a deleted tier
func (c *LoyaltyConfig) RemoveTier(tierID uuid.UUID) {
	delete(c.TierLoyaltyIDs, tierID)
	c.UpdatedAt = time.Now()
}

// LoyaltyConfigRepository provides persistence for loyalty configs
type LoyaltyConfigRepository interface {
	// FindForTenant returns the tenant's loyalty config
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*LoyaltyConfig, error)
	// Save creates or updates the loyalty config
	Save(ctx context.Context, cfg *LoyaltyConfig) error
}

// SideEffectKind labels a best-effort side effect for the operator-facing
// failure log
type SideEffectKind string

const (
	// SideEffectLoyaltyBonus is the welcome bonus points award
	SideEffectLoyaltyBonus SideEffectKind = "loyalty-bonus"
	// SideEffectWelcomeMessage is the post-enrollment welcome communication
	SideEffectWelcomeMessage SideEffectKind = "welcome-message"
)

// SideEffectLog records a failed best-effort side effect so operators can
// reconcile missed awards or messages after the fact. Failures land here
// instead of being swallowed.
type SideEffectLog struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Kind     SideEffectKind
	// SubjectID identifies what the side effect was for, e.g. the external
	// customer id the bonus should have reached
	SubjectID  string
	Detail     string
	OccurredAt time.Time
}

// NewSideEffectLog records one failed side effect
func NewSideEffectLog(tenantID uuid.UUID, kind SideEffectKind, subjectID, detail string) *SideEffectLog {
	return &SideEffectLog{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Kind:       kind,
		SubjectID:  subjectID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
}

// SideEffectLogRepository provides persistence for the side-effect log
type SideEffectLogRepository interface {
	// Save appends a side-effect failure record
	Save(ctx context.Context, entry *SideEffectLog) error
	// FindForTenant lists recent failures for a tenant, newest first
	FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*SideEffectLog, error)
}
