package promotion

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Discount Errors
// ---------------------------------------------------------------------------

var (
	ErrDiscountMissingTitle    = errors.New("promotion: discount title is required")
	ErrDiscountInvalidStatus   = errors.New("promotion: invalid discount status")
	ErrDiscountInvalidValue    = errors.New("promotion: exactly one of percentage or amount must be set")
	ErrDiscountPercentageRange = errors.New("promotion: percentage must be between 0 and 100")
	ErrDiscountNegativeAmount  = errors.New("promotion: amount must not be negative")
	ErrDiscountInvalidTarget   = errors.New("promotion: invalid discount target")
	ErrDiscountInvalidScope    = errors.New("promotion: invalid discount scope")
	ErrDiscountScopeRefs       = errors.New("promotion: store-wide discount must not carry product or collection refs")
	ErrDiscountInvalidMinimum  = errors.New("promotion: invalid minimum requirement")
)

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// Status represents the lifecycle state of a discount
type Status string

const (
	// StatusActive indicates the discount is currently applying
	StatusActive Status = "active"
	// StatusInactive indicates the discount is disabled
	StatusInactive Status = "inactive"
	// StatusScheduled indicates the discount starts in the future
	StatusScheduled Status = "scheduled"
)

// IsValid returns true if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusScheduled:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ValueType discriminates between percentage and fixed-amount discounts
type ValueType string

const (
	// ValuePercentage is a percentage-off discount (0-100)
	ValuePercentage ValueType = "percentage"
	// ValueFixedAmount is a fixed amount off, in minor currency units
	ValueFixedAmount ValueType = "fixed-amount"
)

// IsValid returns true if the value type is a known value
func (t ValueType) IsValid() bool {
	return t == ValuePercentage || t == ValueFixedAmount
}

// Target is what the discount applies against
type Target string

const (
	// TargetProduct discounts product line items
	TargetProduct Target = "product"
	// TargetShipping discounts the shipping cost
	TargetShipping Target = "shipping"
)

// IsValid returns true if the target is a known value
func (t Target) IsValid() bool {
	return t == TargetProduct || t == TargetShipping
}

// Scope is the applicability breadth of the discount
type Scope string

const (
	// ScopeAll applies store-wide
	ScopeAll Scope = "all"
	// ScopeSpecific applies only to listed products/collections
	ScopeSpecific Scope = "specific"
)

// IsValid returns true if the scope is a known value
func (s Scope) IsValid() bool {
	return s == ScopeAll || s == ScopeSpecific
}

// MinimumType is the kind of purchase minimum gating a discount
type MinimumType string

const (
	// MinimumNone means no minimum requirement
	MinimumNone MinimumType = "none"
	// MinimumQuantity requires a minimum item count
	MinimumQuantity MinimumType = "quantity"
	// MinimumAmount requires a minimum subtotal, in minor currency units
	MinimumAmount MinimumType = "amount"
)

// IsValid returns true if the minimum type is a known value
func (t MinimumType) IsValid() bool {
	switch t {
	case MinimumNone, MinimumQuantity, MinimumAmount:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Value is the discount magnitude. Exactly one of Percentage/AmountCents is
// meaningful, selected by Type.
type Value struct {
	// Type selects which field below is populated
	Type ValueType `json:"type"`
	// Percentage is the percent off (0-100), set when Type is percentage
	Percentage float64 `json:"percentage,omitempty"`
	// AmountCents is the fixed amount off in minor currency units,
	// set when Type is fixed-amount
	AmountCents int64 `json:"amount_cents,omitempty"`
}

// Validate checks the exactly-one-of invariant
func (v Value) Validate() error {
	switch v.Type {
	case ValuePercentage:
		if v.AmountCents != 0 {
			return ErrDiscountInvalidValue
		}
		if v.Percentage < 0 || v.Percentage > 100 {
			return ErrDiscountPercentageRange
		}
	case ValueFixedAmount:
		if v.Percentage != 0 {
			return ErrDiscountInvalidValue
		}
		if v.AmountCents < 0 {
			return ErrDiscountNegativeAmount
		}
	default:
		return ErrDiscountInvalidValue
	}
	return nil
}

// ResourceRef points at an external product or collection. Title is a
// display cache only; an empty title is valid when enrichment failed.
type ResourceRef struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
}

// AppliesTo describes the target and breadth of a discount
type AppliesTo struct {
	Target Target `json:"target"`
	Scope  Scope  `json:"scope"`
	// ProductRefs lists targeted products when Scope is specific
	ProductRefs []ResourceRef `json:"product_refs,omitempty"`
	// CollectionRefs lists targeted collections when Scope is specific
	CollectionRefs []ResourceRef `json:"collection_refs,omitempty"`
}

// Validate checks enum validity and the store-wide ref suppression invariant
func (a AppliesTo) Validate() error {
	if !a.Target.IsValid() {
		return ErrDiscountInvalidTarget
	}
	if !a.Scope.IsValid() {
		return ErrDiscountInvalidScope
	}
	if a.Scope == ScopeAll && (len(a.ProductRefs) > 0 || len(a.CollectionRefs) > 0) {
		return ErrDiscountScopeRefs
	}
	return nil
}

// MinimumRequirement gates the discount behind a purchase minimum.
// AmountCents is always minor units; codecs convert per platform field.
type MinimumRequirement struct {
	Type        MinimumType `json:"type"`
	QuantityMin int64       `json:"quantity_min,omitempty"`
	AmountCents int64       `json:"amount_cents,omitempty"`
}

// Validate checks enum validity and non-negative thresholds
func (m MinimumRequirement) Validate() error {
	if !m.Type.IsValid() {
		return ErrDiscountInvalidMinimum
	}
	switch m.Type {
	case MinimumQuantity:
		if m.QuantityMin <= 0 || m.AmountCents != 0 {
			return ErrDiscountInvalidMinimum
		}
	case MinimumAmount:
		if m.AmountCents <= 0 || m.QuantityMin != 0 {
			return ErrDiscountInvalidMinimum
		}
	case MinimumNone:
		if m.QuantityMin != 0 || m.AmountCents != 0 {
			return ErrDiscountInvalidMinimum
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Canonical Discount
// ---------------------------------------------------------------------------

// Discount is the platform-agnostic representation of a promotional
// discount. It is the unit both codecs encode from and decode into.
// Discounts never expire: there is a start timestamp but no end.
type Discount struct {
	// ExternalID is the platform-side id, empty until first created remotely
	ExternalID string `json:"external_id,omitempty"`
	// Title is the human-readable promotion name
	Title string `json:"title"`
	// PlatformTag labels the discount for platform-side filtering
	PlatformTag string `json:"platform_tag,omitempty"`
	// Status is the lifecycle state
	Status Status `json:"status"`
	// StartsAt is when the discount begins applying
	StartsAt time.Time `json:"starts_at"`
	// Value is the discount magnitude
	Value Value `json:"value"`
	// AppliesTo is the target scope
	AppliesTo AppliesTo `json:"applies_to"`
	// CustomerSegments are external segment/tag/club ids restricting the
	// discount to a single membership tier's customers
	CustomerSegments []string `json:"customer_segments,omitempty"`
	// Minimum is the purchase minimum; only transmitted for shipping targets
	Minimum MinimumRequirement `json:"minimum"`
	// Extension carries platform-specific data that has no canonical home.
	// It is serialized through the tagged envelope, not directly.
	Extension Extension `json:"-"`
}

// discountAlias breaks the MarshalJSON/UnmarshalJSON recursion
type discountAlias Discount

// discountJSON shadows the extension field with its envelope form
type discountJSON struct {
	*discountAlias
	Extension json.RawMessage `json:"extension,omitempty"`
}

// MarshalJSON encodes the discount with the extension wrapped in its
// kind-tagged envelope
func (d Discount) MarshalJSON() ([]byte, error) {
	var ext json.RawMessage
	if d.Extension != nil {
		encoded, err := MarshalExtension(d.Extension)
		if err != nil {
			return nil, err
		}
		ext = encoded
	}
	alias := discountAlias(d)
	return json.Marshal(discountJSON{discountAlias: &alias, Extension: ext})
}

// UnmarshalJSON decodes the discount, routing the extension field through
// the tagged envelope so each platform variant comes back as its own type
func (d *Discount) UnmarshalJSON(data []byte) error {
	body := discountJSON{discountAlias: (*discountAlias)(d)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	if len(body.Extension) == 0 {
		d.Extension = nil
		return nil
	}
	ext, err := UnmarshalExtension(body.Extension)
	if err != nil {
		return err
	}
	d.Extension = ext
	return nil
}

// Validate checks all model invariants. It does not reach the network, so
// it is always safe to call before any remote operation.
func (d *Discount) Validate() error {
	if d.Title == "" {
		return ErrDiscountMissingTitle
	}
	if !d.Status.IsValid() {
		return ErrDiscountInvalidStatus
	}
	if err := d.Value.Validate(); err != nil {
		return err
	}
	if err := d.AppliesTo.Validate(); err != nil {
		return err
	}
	if err := d.Minimum.Validate(); err != nil {
		return err
	}
	return nil
}

// IsStoreWide returns true if the discount applies to the whole catalog
func (d *Discount) IsStoreWide() bool {
	return d.AppliesTo.Scope == ScopeAll
}

// TransmitsMinimum reports whether the minimum requirement should cross the
// wire. Only shipping discounts carry minimums to the platforms.
func (d *Discount) TransmitsMinimum() bool {
	return d.AppliesTo.Target == TargetShipping && d.Minimum.Type != MinimumNone
}

// String returns a short description for logs
func (d *Discount) String() string {
	switch d.Value.Type {
	case ValuePercentage:
		return fmt.Sprintf("%s (%.2f%% off, %s)", d.Title, d.Value.Percentage, d.Status)
	default:
		return fmt.Sprintf("%s (%d minor units off, %s)", d.Title, d.Value.AmountCents, d.Status)
	}
}
