package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/promotion"
)

// ---------------------------------------------------------------------------
// Provider Errors
// ---------------------------------------------------------------------------

var (
	// ErrNotFound means the remote object is absent. It must stay distinct
	// from other failures: reconciliation treats it as "already gone,
	// recreate" while anything else is reported as a transient failure.
	ErrNotFound = errors.New("crm: remote object not found")

	ErrProviderNotConfigured = errors.New("crm: provider not configured")
	ErrProviderUnavailable   = errors.New("crm: provider temporarily unavailable")
	ErrProviderRequestFailed = errors.New("crm: provider request failed")
	ErrProviderAuthFailed    = errors.New("crm: provider authentication failed")
	ErrInvalidResponse       = errors.New("crm: invalid provider response")
	ErrInvalidSignature      = errors.New("crm: invalid webhook signature")
	ErrUnknownPlatform       = errors.New("crm: unknown platform code")
)

// ---------------------------------------------------------------------------
// PlatformCode
// ---------------------------------------------------------------------------

// PlatformCode identifies an external CRM/commerce platform
type PlatformCode string

const (
	// PlatformCommerce7 is the Commerce7 wine CRM platform
	PlatformCommerce7 PlatformCode = "COMMERCE7"
	// PlatformShopify is the Shopify commerce platform
	PlatformShopify PlatformCode = "SHOPIFY"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	return c == PlatformCommerce7 || c == PlatformShopify
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// ParsePlatformCode normalizes a platform string, case-insensitively
func ParsePlatformCode(s string) (PlatformCode, error) {
	code := PlatformCode(strings.ToUpper(s))
	if !code.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return code, nil
}

// ---------------------------------------------------------------------------
// Inputs and Value Objects
// ---------------------------------------------------------------------------

// ClubUpsert carries the tier fields a platform needs to create or update
// its club/tier object. ExternalID empty means create.
type ClubUpsert struct {
	ExternalID       string
	Name             string
	DurationMonths   int
	MinPurchaseCents int64
	StageOrder       int
}

// LoyaltyTierCreate carries the fields for a platform loyalty tier
type LoyaltyTierCreate struct {
	Name            string
	MinLTVCents     int64
	PointsPerDollar int64
}

// MembershipCreate is the input for the irreversible club-membership call.
// All referenced ids must already be platform-side ids, never local drafts.
type MembershipCreate struct {
	CustomerExternalID string
	ClubExternalID     string
	BillToAddressID    string
	ShipToAddressID    string
	PaymentMethodID    string
	SignupDate         time.Time
	// ClientRef is a caller-stable idempotency reference. Providers that
	// support it will not create a second membership for the same ref.
	ClientRef string
}

// Webhook is a registered platform webhook subscription
type Webhook struct {
	ID      string
	Topic   string
	Address string
}

// ---------------------------------------------------------------------------
// CRMProvider Port Interface
// ---------------------------------------------------------------------------

// CRMProvider is the port interface for an external club/promotion platform.
// It is defined in the domain layer; concrete adapters (Commerce7, Shopify)
// live in the infrastructure layer. Implementations must return ErrNotFound
// (possibly wrapped) whenever the remote object is absent so callers can
// distinguish drift from transient failure.
type CRMProvider interface {
	// PlatformCode returns the platform this provider talks to
	PlatformCode() PlatformCode

	// UpsertClub creates or updates the platform club for a tier and
	// returns its external id. The call is idempotent: an empty
	// ExternalID creates, a populated one updates in place.
	UpsertClub(ctx context.Context, tenantID uuid.UUID, club ClubUpsert) (string, error)

	// DeleteClub removes the platform club
	DeleteClub(ctx context.Context, tenantID uuid.UUID, externalID string) error

	// CreatePromotion creates a promotion scoped to a club and returns the
	// canonical form of what the platform stored
	CreatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error)

	// UpdatePromotion updates an existing promotion in place
	UpdatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error)

	// DeletePromotion removes a promotion
	DeletePromotion(ctx context.Context, tenantID uuid.UUID, externalID string) error

	// GetPromotion fetches a promotion by external id, ErrNotFound if absent
	GetPromotion(ctx context.Context, tenantID uuid.UUID, externalID string) (*promotion.Discount, error)

	// CreateLoyaltyTier creates a platform loyalty tier and returns its id
	CreateLoyaltyTier(ctx context.Context, tenantID uuid.UUID, tier LoyaltyTierCreate) (string, error)

	// DeleteLoyaltyTier removes a platform loyalty tier
	DeleteLoyaltyTier(ctx context.Context, tenantID uuid.UUID, externalID string) error

	// CreateClubMembership performs the irreversible membership creation
	// and returns the platform membership id
	CreateClubMembership(ctx context.Context, tenantID uuid.UUID, m MembershipCreate) (string, error)

	// PreloadBonusPoints credits loyalty points to a customer
	PreloadBonusPoints(ctx context.Context, tenantID uuid.UUID, customerExternalID string, points int64, label string) error

	// ListWebhooks returns the registered webhook subscriptions
	ListWebhooks(ctx context.Context, tenantID uuid.UUID) ([]Webhook, error)

	// RegisterWebhook subscribes an address to a topic
	RegisterWebhook(ctx context.Context, tenantID uuid.UUID, topic, address string) (Webhook, error)

	// DeleteWebhook removes a webhook subscription
	DeleteWebhook(ctx context.Context, tenantID uuid.UUID, webhookID string) error
}

// ProviderFactory hands out the provider for a tenant and platform. It is
// injected into services at construction time; there is no process-wide
// registry, which keeps fakes trivial to wire in tests.
type ProviderFactory interface {
	// Provider returns the CRMProvider for the tenant's platform
	Provider(ctx context.Context, tenantID uuid.UUID, code PlatformCode) (CRMProvider, error)
}
