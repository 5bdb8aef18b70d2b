package shopify

// ---------------------------------------------------------------------------
// Common Shopify API Types
// ---------------------------------------------------------------------------

// APIError is the Shopify error body
type APIError struct {
	Errors any `json:"errors"`
}

// Shopify price rule status strings
const (
	statusActive    = "ACTIVE"
	statusExpired   = "EXPIRED"
	statusScheduled = "SCHEDULED"
)

// Shopify price rule value types
const (
	valueTypePercentage  = "percentage"
	valueTypeFixedAmount = "fixed_amount"
)

// Shopify price rule target types
const (
	targetTypeLineItem     = "line_item"
	targetTypeShippingLine = "shipping_line"
)

// Shopify target selection values
const (
	selectionAll      = "all"
	selectionEntitled = "entitled"
)

// ---------------------------------------------------------------------------
// Price Rule
// ---------------------------------------------------------------------------

// MoneyRange is a lower-bound money constraint in major units (dollars)
type MoneyRange struct {
	GreaterThanOrEqualTo float64 `json:"greater_than_or_equal_to"`
}

// QuantityRange is a lower-bound quantity constraint
type QuantityRange struct {
	GreaterThanOrEqualTo int64 `json:"greater_than_or_equal_to"`
}

// PriceRulePayload is the Shopify price rule shape.
//
// Numeric conventions differ from Commerce7 throughout: percentages are
// 0-1 fractions (0.125 = 12.5%), and every money field is major units
// (dollars), including the discount amount. Resource ids are numeric.
type PriceRulePayload struct {
	ID     int64  `json:"id,omitempty"`
	Title  string `json:"title"`
	Status string `json:"status"`
	// StartsAt is RFC 3339
	StartsAt string `json:"starts_at,omitempty"`

	ValueType string `json:"value_type"`
	// Value is a 0-1 fraction for percentage rules, dollars for
	// fixed-amount rules
	Value float64 `json:"value"`

	TargetType string `json:"target_type"`
	// TargetSelection is "all" for store-wide rules; entitlement lists
	// must then be omitted entirely, an empty array means "nothing".
	TargetSelection       string  `json:"target_selection"`
	EntitledProductIDs    []int64 `json:"entitled_product_ids,omitempty"`
	EntitledCollectionIDs []int64 `json:"entitled_collection_ids,omitempty"`

	// PrerequisiteSegmentIDs scopes the rule to customer segments
	PrerequisiteSegmentIDs []int64 `json:"prerequisite_segment_ids,omitempty"`

	PrerequisiteSubtotalRange *MoneyRange    `json:"prerequisite_subtotal_range,omitempty"`
	PrerequisiteQuantityRange *QuantityRange `json:"prerequisite_quantity_range,omitempty"`

	// Extension passthrough
	OncePerCustomer bool  `json:"once_per_customer,omitempty"`
	AllocationLimit int64 `json:"allocation_limit,omitempty"`
}

// priceRuleEnvelope is the single-object response wrapper
type priceRuleEnvelope struct {
	PriceRule PriceRulePayload `json:"price_rule"`
}

// ---------------------------------------------------------------------------
// Segments / Products / Webhooks
// ---------------------------------------------------------------------------

// SegmentPayload is the Shopify customer segment shape. A club tier maps
// to a segment; price rules reference it through prerequisite segment ids.
type SegmentPayload struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

type segmentEnvelope struct {
	Segment SegmentPayload `json:"segment"`
}

// ProductPayload is the slice of the product shape used for title lookup
type ProductPayload struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type productEnvelope struct {
	Product ProductPayload `json:"product"`
}

// WebhookPayload is the Shopify webhook subscription shape
type WebhookPayload struct {
	ID      int64  `json:"id,omitempty"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format,omitempty"`
}

type webhookEnvelope struct {
	Webhook WebhookPayload `json:"webhook"`
}

type webhookListEnvelope struct {
	Webhooks []WebhookPayload `json:"webhooks"`
}

// ---------------------------------------------------------------------------
// Companion App Types
// ---------------------------------------------------------------------------

// Memberships and loyalty have no native Shopify resource; they go through
// the companion app's REST surface mounted on the same host.

// MembershipPayload is the companion club-membership shape
type MembershipPayload struct {
	ID              int64  `json:"id,omitempty"`
	CustomerID      int64  `json:"customer_id"`
	SegmentID       int64  `json:"segment_id"`
	BillToAddressID string `json:"bill_to_address_id"`
	ShipToAddressID string `json:"ship_to_address_id"`
	PaymentMethodID string `json:"payment_method_id"`
	SignupDate      string `json:"signup_date"`
	// ClientRef is echoed back; requests reusing a ref are deduplicated
	ClientRef string `json:"client_ref,omitempty"`
}

type membershipEnvelope struct {
	Membership MembershipPayload `json:"membership"`
}

// LoyaltyTierPayload is the companion loyalty-tier shape
type LoyaltyTierPayload struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	// MinLifetimeValue is major units (dollars)
	MinLifetimeValue float64 `json:"min_lifetime_value,omitempty"`
	PointsPerDollar  int64   `json:"points_per_dollar,omitempty"`
}

type loyaltyTierEnvelope struct {
	LoyaltyTier LoyaltyTierPayload `json:"loyalty_tier"`
}

// LoyaltyTransactionPayload credits or debits loyalty points
type LoyaltyTransactionPayload struct {
	CustomerID int64  `json:"customer_id"`
	Points     int64  `json:"points"`
	Notes      string `json:"notes,omitempty"`
}
