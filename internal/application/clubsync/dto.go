package clubsync

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/promotion"
)

// =============================================================================
// Club Setup DTOs
// =============================================================================

// tempIDPrefix marks client-generated ids for rows that do not exist yet.
// Anything that is not a parseable UUID is also treated as new.
const tempIDPrefix = "tmp-"

// TierSubmission is one tier row as submitted by the admin console. ID is
// either a persisted tier id or a client temp token for a new row.
type TierSubmission struct {
	ID               string                `json:"id"`
	Name             string                `json:"name" binding:"required,min=1,max=100"`
	DurationMonths   int                   `json:"duration_months" binding:"required,gt=0"`
	MinPurchaseCents int64                 `json:"min_purchase_cents" binding:"gte=0"`
	MinLTVCents      int64                 `json:"min_ltv_cents" binding:"gte=0"`
	Upgradable       bool                  `json:"upgradable"`
	Promotions       []PromotionSubmission `json:"promotions" binding:"dive"`
}

// PromotionSubmission is one promotion row under a tier. ID follows the
// same persisted-or-temp convention as TierSubmission.
type PromotionSubmission struct {
	ID       string             `json:"id"`
	Discount promotion.Discount `json:"discount"`
}

// LoyaltySubmission carries the tenant loyalty rule. It is applied after
// all tier work; unlike tier sync its failure aborts the operation.
type LoyaltySubmission struct {
	Enabled            bool  `json:"enabled"`
	WelcomeBonusPoints int64 `json:"welcome_bonus_points" binding:"gte=0"`
	PointsPerDollar    int64 `json:"points_per_dollar" binding:"gte=0"`
}

// SetupRequest is the full club configuration as submitted. Submitted
// order defines stage order; persisted tiers absent from the list are
// removed.
type SetupRequest struct {
	Tiers   []TierSubmission   `json:"tiers" binding:"dive"`
	Loyalty *LoyaltySubmission `json:"loyalty"`
}

// IsNewID reports whether a submitted id denotes a not-yet-persisted row
func IsNewID(id string) bool {
	if id == "" || strings.HasPrefix(id, tempIDPrefix) {
		return true
	}
	_, err := uuid.Parse(id)
	return err != nil
}

// =============================================================================
// Result DTOs
// =============================================================================

// SyncWarning is one non-fatal remote failure collected during setup
type SyncWarning struct {
	TierName    string `json:"tier_name,omitempty"`
	PromotionID string `json:"promotion_id,omitempty"`
	Message     string `json:"message"`
}

// SetupResult is the outcome of a setup operation. The operation as a
// whole succeeded; Warnings lists remote calls that did not.
type SetupResult struct {
	Tiers    []TierView    `json:"tiers"`
	Warnings []SyncWarning `json:"warnings"`
}

// TierView is a tier with its promotion records for API responses
type TierView struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	DurationMonths   int             `json:"duration_months"`
	MinPurchaseCents int64           `json:"min_purchase_cents"`
	MinLTVCents      int64           `json:"min_ltv_cents"`
	Upgradable       bool            `json:"upgradable"`
	StageOrder       int             `json:"stage_order"`
	ExternalClubID   string          `json:"external_club_id,omitempty"`
	Active           bool            `json:"active"`
	Promotions       []PromotionView `json:"promotions"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PromotionView is a promotion record, optionally enriched with remote
// detail. Detail is nil when enrichment failed or was skipped; Title is
// always present from the local cache.
type PromotionView struct {
	ID                  uuid.UUID           `json:"id"`
	ExternalPromotionID string              `json:"external_promotion_id,omitempty"`
	Title               string              `json:"title"`
	Detail              *promotion.Discount `json:"detail,omitempty"`
}

// ToTierView converts a tier and its promotion records to a view
func ToTierView(t *club.Tier, promos []*club.TierPromotion) TierView {
	view := TierView{
		ID:               t.ID,
		Name:             t.Name,
		DurationMonths:   t.DurationMonths,
		MinPurchaseCents: t.MinPurchaseCents,
		MinLTVCents:      t.MinLTVCents,
		Upgradable:       t.Upgradable,
		StageOrder:       t.StageOrder,
		Active:           t.Active,
		Promotions:       make([]PromotionView, 0, len(promos)),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if t.ExternalClubID != nil {
		view.ExternalClubID = *t.ExternalClubID
	}
	for _, p := range promos {
		view.Promotions = append(view.Promotions, PromotionView{
			ID:                  p.ID,
			ExternalPromotionID: p.ExternalPromotionID,
			Title:               p.Title,
			Detail:              p.Detail,
		})
	}
	return view
}
