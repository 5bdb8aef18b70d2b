package commerce7

import (
	"encoding/json"
	"errors"
)

// ---------------------------------------------------------------------------
// Common Commerce7 API Types
// ---------------------------------------------------------------------------

// APIError is the Commerce7 error body
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Commerce7 status strings for promotions and coupons
const (
	statusEnabled   = "Enabled"
	statusDisabled  = "Disabled"
	statusScheduled = "Scheduled"
)

// Commerce7 discount target strings
const (
	targetProduct  = "Product"
	targetShipping = "Shipping"
)

// ---------------------------------------------------------------------------
// Promotion (current shape)
// ---------------------------------------------------------------------------

// PromotionPayload is the current Commerce7 promotion shape.
//
// Numeric conventions: percentOff is integer basis points (1000 = 10%),
// amountOff is minor units (cents), while the cart-requirement fields
// (cartMinimumSubtotal) are major units (dollars). The codec converts
// selectively per field.
type PromotionPayload struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Tag    string `json:"tag,omitempty"`
	Status string `json:"status"`
	// StartDate is RFC 3339
	StartDate string `json:"startDate,omitempty"`

	DiscountTarget string `json:"discountTarget"`
	// PercentOff is basis points; nil when AmountOff is used. Presence of
	// the field, not its value, marks a percentage discount, so a 0%
	// promotion keeps its kind on decode.
	PercentOff *int64 `json:"percentOff,omitempty"`
	// AmountOff is minor units (cents); zero when PercentOff is used
	AmountOff int64 `json:"amountOff,omitempty"`

	AppliesToAllProducts bool `json:"appliesToAllProducts"`
	// ProductIDs/CollectionIDs must be omitted (not empty arrays) for
	// store-wide promotions; the API distinguishes the two.
	ProductIDs    []string `json:"productIds,omitempty"`
	CollectionIDs []string `json:"collectionIds,omitempty"`

	// AvailableToClubIDs scopes the promotion to members of these clubs
	AvailableToClubIDs []string `json:"availableToClubIds,omitempty"`

	// Cart requirement fields, only sent for shipping promotions
	CartMinimumQuantity int64 `json:"cartMinimumQuantity,omitempty"`
	// CartMinimumSubtotal is major units (dollars)
	CartMinimumSubtotal float64 `json:"cartMinimumSubtotal,omitempty"`

	// Extension passthrough
	PromotionUsage string `json:"promotionUsage,omitempty"`
	ChannelWeb     bool   `json:"channelWeb,omitempty"`
	ChannelPOS     bool   `json:"channelPos,omitempty"`
	ChannelClub    bool   `json:"channelClub,omitempty"`
}

// ---------------------------------------------------------------------------
// Coupon (legacy shape)
// ---------------------------------------------------------------------------

// CouponPayload is the older code-based Commerce7 shape, retained for
// objects created before the promotion API existed. Same numeric
// conventions as PromotionPayload.
type CouponPayload struct {
	ID     string `json:"id,omitempty"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Status string `json:"status"`

	DiscountTarget string `json:"discountTarget"`
	PercentOff     *int64 `json:"percentOff,omitempty"`
	AmountOff      int64  `json:"amountOff,omitempty"`

	AppliesToAllProducts bool     `json:"appliesToAllProducts"`
	ProductIDs           []string `json:"productIds,omitempty"`

	AvailableToClubIDs []string `json:"availableToClubIds,omitempty"`

	CartMinimumQuantity int64   `json:"cartMinimumQuantity,omitempty"`
	CartMinimumSubtotal float64 `json:"cartMinimumSubtotal,omitempty"`
}

// ---------------------------------------------------------------------------
// Promotion / Coupon Envelope
// ---------------------------------------------------------------------------

// ShapeKind discriminates the two Commerce7 discount wire shapes
type ShapeKind string

const (
	// ShapePromotion is the current promotion shape
	ShapePromotion ShapeKind = "promotion"
	// ShapeCoupon is the legacy code-based shape
	ShapeCoupon ShapeKind = "coupon"
)

// ErrEnvelopeShapeMismatch is returned when an envelope carries the wrong
// payload for its kind, or both payloads at once
var ErrEnvelopeShapeMismatch = errors.New("commerce7: envelope kind does not match payload")

// Envelope joins the two wire shapes behind an explicit kind discriminant.
// An object keeps its shape for its whole lifecycle; conversion code can
// only reach the payload matching Kind, so fields from the two shapes
// cannot silently mix.
type Envelope struct {
	Kind      ShapeKind         `json:"kind"`
	Promotion *PromotionPayload `json:"promotion,omitempty"`
	Coupon    *CouponPayload    `json:"coupon,omitempty"`
}

// NewPromotionEnvelope wraps a current-shape payload
func NewPromotionEnvelope(p *PromotionPayload) Envelope {
	return Envelope{Kind: ShapePromotion, Promotion: p}
}

// NewCouponEnvelope wraps a legacy-shape payload
func NewCouponEnvelope(c *CouponPayload) Envelope {
	return Envelope{Kind: ShapeCoupon, Coupon: c}
}

// Validate checks that exactly the payload matching Kind is present
func (e Envelope) Validate() error {
	switch e.Kind {
	case ShapePromotion:
		if e.Promotion == nil || e.Coupon != nil {
			return ErrEnvelopeShapeMismatch
		}
	case ShapeCoupon:
		if e.Coupon == nil || e.Promotion != nil {
			return ErrEnvelopeShapeMismatch
		}
	default:
		return ErrEnvelopeShapeMismatch
	}
	return nil
}

// ---------------------------------------------------------------------------
// Club / Membership / Loyalty Types
// ---------------------------------------------------------------------------

// ClubPayload is the Commerce7 club shape
type ClubPayload struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	// DurationMonths is the membership term
	DurationMonths int `json:"durationMonths"`
	// MinimumPurchase is major units (dollars)
	MinimumPurchase float64 `json:"minimumPurchase,omitempty"`
	StageOrder      int     `json:"stageOrder"`
}

// MembershipPayload is the club-membership creation shape
type MembershipPayload struct {
	ID              string `json:"id,omitempty"`
	CustomerID      string `json:"customerId"`
	ClubID          string `json:"clubId"`
	BillToAddressID string `json:"billToCustomerAddressId"`
	ShipToAddressID string `json:"shipToCustomerAddressId"`
	PaymentMethodID string `json:"customerCreditCardId"`
	SignupDate      string `json:"signupDate"`
	// ExternalRef is echoed back; requests reusing a ref are deduplicated
	ExternalRef string `json:"externalRef,omitempty"`
}

// LoyaltyTierPayload is the Commerce7 loyalty-tier shape
type LoyaltyTierPayload struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	// MinimumLifetimeValue is major units (dollars)
	MinimumLifetimeValue float64 `json:"minimumLifetimeValue,omitempty"`
	PointsPerDollar      int64   `json:"pointsPerDollar,omitempty"`
}

// LoyaltyTransactionPayload credits or debits loyalty points
type LoyaltyTransactionPayload struct {
	CustomerID string `json:"customerId"`
	Points     int64  `json:"points"`
	Notes      string `json:"notes,omitempty"`
}

// ProductPayload is the slice of the Commerce7 product shape the decoder
// needs for title enrichment
type ProductPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WebhookPayload is the Commerce7 webhook subscription shape
type WebhookPayload struct {
	ID     string `json:"id,omitempty"`
	Object string `json:"object"`
	Action string `json:"action"`
	URL    string `json:"url"`
}

// listResponse is the generic Commerce7 collection wrapper
type listResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// decodeList unwraps a Commerce7 collection body
func decodeList[T any](body []byte) ([]T, error) {
	var resp listResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
