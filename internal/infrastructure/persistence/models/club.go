package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/club"
)

// TierModel is the persistence model for the club Tier entity.
type TierModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tier_tenant_name,priority:1"`
	Name             string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_tier_tenant_name,priority:2"`
	DurationMonths   int       `gorm:"not null"`
	MinPurchaseCents int64     `gorm:"not null;default:0"`
	MinLTVCents      int64     `gorm:"column:min_ltv_cents;not null;default:0"`
	Upgradable       bool      `gorm:"not null;default:false"`
	StageOrder       int       `gorm:"not null;default:0"`
	ExternalClubID   *string   `gorm:"type:varchar(100);index"`
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TierModel) TableName() string {
	return "club_tiers"
}

// ToDomain converts the persistence model to a domain Tier
func (m *TierModel) ToDomain() *club.Tier {
	return &club.Tier{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Name:             m.Name,
		DurationMonths:   m.DurationMonths,
		MinPurchaseCents: m.MinPurchaseCents,
		MinLTVCents:      m.MinLTVCents,
		Upgradable:       m.Upgradable,
		StageOrder:       m.StageOrder,
		ExternalClubID:   m.ExternalClubID,
		Active:           m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Tier
func (m *TierModel) FromDomain(t *club.Tier) {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.Name = t.Name
	m.DurationMonths = t.DurationMonths
	m.MinPurchaseCents = t.MinPurchaseCents
	m.MinLTVCents = t.MinLTVCents
	m.Upgradable = t.Upgradable
	m.StageOrder = t.StageOrder
	m.ExternalClubID = t.ExternalClubID
	m.IsActive = t.Active
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// TierPromotionModel is the persistence model for tier promotion records.
// Only the external reference and a cached title persist; promotion detail
// lives on the platform side.
type TierPromotionModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID            uuid.UUID `gorm:"type:uuid;not null;index"`
	TierID              uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalPromotionID string    `gorm:"type:varchar(100);index"`
	Title               string    `gorm:"type:varchar(300)"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TierPromotionModel) TableName() string {
	return "tier_promotions"
}

// ToDomain converts the persistence model to a domain TierPromotion
func (m *TierPromotionModel) ToDomain() *club.TierPromotion {
	return &club.TierPromotion{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		TierID:              m.TierID,
		ExternalPromotionID: m.ExternalPromotionID,
		Title:               m.Title,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain TierPromotion
func (m *TierPromotionModel) FromDomain(p *club.TierPromotion) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.TierID = p.TierID
	m.ExternalPromotionID = p.ExternalPromotionID
	m.Title = p.Title
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// LoyaltyConfigModel is the persistence model for the per-tenant loyalty
// rule. The tier to loyalty-tier mapping is stored as a JSON document.
type LoyaltyConfigModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Enabled            bool      `gorm:"not null;default:false"`
	WelcomeBonusPoints int64     `gorm:"not null;default:0"`
	PointsPerDollar    int64     `gorm:"not null;default:0"`
	TierLoyaltyIDs     string    `gorm:"type:jsonb"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LoyaltyConfigModel) TableName() string {
	return "loyalty_configs"
}

// ToDomain converts the persistence model to a domain LoyaltyConfig
func (m *LoyaltyConfigModel) ToDomain() (*club.LoyaltyConfig, error) {
	mapping := make(map[uuid.UUID]string)
	if m.TierLoyaltyIDs != "" {
		if err := json.Unmarshal([]byte(m.TierLoyaltyIDs), &mapping); err != nil {
			return nil, err
		}
	}
	return &club.LoyaltyConfig{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		Enabled:            m.Enabled,
		WelcomeBonusPoints: m.WelcomeBonusPoints,
		PointsPerDollar:    m.PointsPerDollar,
		TierLoyaltyIDs:     mapping,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

// FromDomain populates the model from a domain LoyaltyConfig
func (m *LoyaltyConfigModel) FromDomain(c *club.LoyaltyConfig) error {
	mapping := c.TierLoyaltyIDs
	if mapping == nil {
		mapping = make(map[uuid.UUID]string)
	}
	encoded, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.Enabled = c.Enabled
	m.WelcomeBonusPoints = c.WelcomeBonusPoints
	m.PointsPerDollar = c.PointsPerDollar
	m.TierLoyaltyIDs = string(encoded)
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
	return nil
}

// SideEffectLogModel is the persistence model for the side-effect failure log.
type SideEffectLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"type:varchar(50);not null"`
	SubjectID  string    `gorm:"type:varchar(200)"`
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SideEffectLogModel) TableName() string {
	return "side_effect_logs"
}

// ToDomain converts the persistence model to a domain SideEffectLog
func (m *SideEffectLogModel) ToDomain() *club.SideEffectLog {
	return &club.SideEffectLog{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Kind:       club.SideEffectKind(m.Kind),
		SubjectID:  m.SubjectID,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the model from a domain SideEffectLog
func (m *SideEffectLogModel) FromDomain(e *club.SideEffectLog) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.Kind = string(e.Kind)
	m.SubjectID = e.SubjectID
	m.Detail = e.Detail
	m.OccurredAt = e.OccurredAt
}
