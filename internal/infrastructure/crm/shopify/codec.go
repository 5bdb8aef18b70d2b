package shopify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cellarclub/backend/internal/domain/promotion"
)

const (
	centsPerDollar     = 100
	percentPerFraction = 100
)

var (
	// ErrCodecUnknownStatus is returned when decoding an unrecognized status
	ErrCodecUnknownStatus = errors.New("shopify: unknown price rule status")
	// ErrCodecUnknownValueType is returned when decoding an unrecognized value type
	ErrCodecUnknownValueType = errors.New("shopify: unknown price rule value type")
	// ErrCodecUnknownTarget is returned when decoding an unrecognized target type
	ErrCodecUnknownTarget = errors.New("shopify: unknown price rule target type")
	// ErrCodecInvalidResourceID is returned when a resource id is not numeric
	ErrCodecInvalidResourceID = errors.New("shopify: resource id is not numeric")
)

// TitleResolver resolves a numeric resource id to its title during decode
// enrichment. Implementations may hit the network.
type TitleResolver func(ctx context.Context, id int64) (string, error)

// Codec maps between the canonical discount model and the Shopify price
// rule shape. Percentages cross the wire as 0-1 fractions and every money
// field as dollars, so both value kinds convert here rather than in the
// adapter.
type Codec struct{}

// ---------------------------------------------------------------------------
// Unit Conversions
// ---------------------------------------------------------------------------

// percentToFraction converts a 0-100 percentage to a 0-1 fraction
func percentToFraction(pct float64) float64 {
	return decimal.NewFromFloat(pct).Div(decimal.NewFromInt(percentPerFraction)).InexactFloat64()
}

// fractionToPercent converts a 0-1 fraction back to a percentage
func fractionToPercent(f float64) float64 {
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(percentPerFraction)).InexactFloat64()
}

// centsToDollars converts minor units to major units. Unlike Commerce7,
// Shopify wants dollars for the discount amount too.
func centsToDollars(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(centsPerDollar)).InexactFloat64()
}

// dollarsToCents converts major units back to minor units
func dollarsToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(decimal.NewFromInt(centsPerDollar)).Round(0).IntPart()
}

// ---------------------------------------------------------------------------
// ID / Status / Target Mapping
// ---------------------------------------------------------------------------

// parseResourceID parses a canonical external id into a Shopify numeric id
func parseResourceID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, ErrCodecInvalidResourceID
	}
	return n, nil
}

// formatResourceID renders a Shopify numeric id as a canonical external id
func formatResourceID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func encodeStatus(s promotion.Status) string {
	switch s {
	case promotion.StatusActive:
		return statusActive
	case promotion.StatusScheduled:
		return statusScheduled
	default:
		return statusExpired
	}
}

func decodeStatus(s string) (promotion.Status, error) {
	switch s {
	case statusActive:
		return promotion.StatusActive, nil
	case statusExpired:
		return promotion.StatusInactive, nil
	case statusScheduled:
		return promotion.StatusScheduled, nil
	default:
		return "", ErrCodecUnknownStatus
	}
}

func encodeTarget(t promotion.Target) string {
	if t == promotion.TargetShipping {
		return targetTypeShippingLine
	}
	return targetTypeLineItem
}

func decodeTarget(t string) (promotion.Target, error) {
	switch t {
	case targetTypeLineItem:
		return promotion.TargetProduct, nil
	case targetTypeShippingLine:
		return promotion.TargetShipping, nil
	default:
		return "", ErrCodecUnknownTarget
	}
}

// ---------------------------------------------------------------------------
// Price Rule Codec
// ---------------------------------------------------------------------------

// EncodePriceRule maps a canonical discount to the Shopify price rule shape
func (Codec) EncodePriceRule(d *promotion.Discount) (*PriceRulePayload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	p := &PriceRulePayload{
		Title:      d.Title,
		Status:     encodeStatus(d.Status),
		TargetType: encodeTarget(d.AppliesTo.Target),
	}
	if d.ExternalID != "" {
		id, err := parseResourceID(d.ExternalID)
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	if !d.StartsAt.IsZero() {
		p.StartsAt = d.StartsAt.UTC().Format(time.RFC3339)
	}

	switch d.Value.Type {
	case promotion.ValuePercentage:
		p.ValueType = valueTypePercentage
		p.Value = percentToFraction(d.Value.Percentage)
	case promotion.ValueFixedAmount:
		p.ValueType = valueTypeFixedAmount
		p.Value = centsToDollars(d.Value.AmountCents)
	}

	if d.IsStoreWide() {
		p.TargetSelection = selectionAll
		// Entitlement lists stay nil for store-wide rules.
	} else {
		p.TargetSelection = selectionEntitled
		for _, ref := range d.AppliesTo.ProductRefs {
			id, err := parseResourceID(ref.ExternalID)
			if err != nil {
				return nil, err
			}
			p.EntitledProductIDs = append(p.EntitledProductIDs, id)
		}
		for _, ref := range d.AppliesTo.CollectionRefs {
			id, err := parseResourceID(ref.ExternalID)
			if err != nil {
				return nil, err
			}
			p.EntitledCollectionIDs = append(p.EntitledCollectionIDs, id)
		}
	}

	for _, seg := range d.CustomerSegments {
		id, err := parseResourceID(seg)
		if err != nil {
			return nil, err
		}
		p.PrerequisiteSegmentIDs = append(p.PrerequisiteSegmentIDs, id)
	}

	if d.TransmitsMinimum() {
		switch d.Minimum.Type {
		case promotion.MinimumQuantity:
			p.PrerequisiteQuantityRange = &QuantityRange{
				GreaterThanOrEqualTo: d.Minimum.QuantityMin,
			}
		case promotion.MinimumAmount:
			p.PrerequisiteSubtotalRange = &MoneyRange{
				GreaterThanOrEqualTo: centsToDollars(d.Minimum.AmountCents),
			}
		}
	}

	if ext, ok := d.Extension.(promotion.ShopifyExtension); ok {
		p.OncePerCustomer = ext.OncePerCustomer
		p.AllocationLimit = int64(ext.AllocationLimit)
	}

	return p, nil
}

// DecodePriceRule maps a price rule response back to the canonical model.
// resolve may be nil; when a title lookup fails the ref keeps its bare id.
func (Codec) DecodePriceRule(ctx context.Context, p *PriceRulePayload, resolve TitleResolver) (*promotion.Discount, error) {
	status, err := decodeStatus(p.Status)
	if err != nil {
		return nil, err
	}
	target, err := decodeTarget(p.TargetType)
	if err != nil {
		return nil, err
	}

	d := &promotion.Discount{
		Title:   p.Title,
		Status:  status,
		Minimum: promotion.MinimumRequirement{Type: promotion.MinimumNone},
	}
	if p.ID != 0 {
		d.ExternalID = formatResourceID(p.ID)
	}
	if p.StartsAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.StartsAt); err == nil {
			d.StartsAt = ts
		}
	}

	switch p.ValueType {
	case valueTypePercentage:
		d.Value = promotion.Value{
			Type:       promotion.ValuePercentage,
			Percentage: fractionToPercent(p.Value),
		}
	case valueTypeFixedAmount:
		d.Value = promotion.Value{
			Type:        promotion.ValueFixedAmount,
			AmountCents: dollarsToCents(p.Value),
		}
	default:
		return nil, ErrCodecUnknownValueType
	}

	d.AppliesTo = promotion.AppliesTo{Target: target}
	if p.TargetSelection == selectionAll {
		d.AppliesTo.Scope = promotion.ScopeAll
	} else {
		d.AppliesTo.Scope = promotion.ScopeSpecific
		d.AppliesTo.ProductRefs = resolveRefs(ctx, p.EntitledProductIDs, resolve)
		d.AppliesTo.CollectionRefs = resolveRefs(ctx, p.EntitledCollectionIDs, resolve)
	}

	for _, id := range p.PrerequisiteSegmentIDs {
		d.CustomerSegments = append(d.CustomerSegments, formatResourceID(id))
	}

	if target == promotion.TargetShipping {
		if p.PrerequisiteQuantityRange != nil {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumQuantity,
				QuantityMin: p.PrerequisiteQuantityRange.GreaterThanOrEqualTo,
			}
		} else if p.PrerequisiteSubtotalRange != nil {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumAmount,
				AmountCents: dollarsToCents(p.PrerequisiteSubtotalRange.GreaterThanOrEqualTo),
			}
		}
	}

	if p.OncePerCustomer || p.AllocationLimit != 0 {
		d.Extension = promotion.ShopifyExtension{
			OncePerCustomer: p.OncePerCustomer,
			AllocationLimit: int(p.AllocationLimit),
		}
	}

	return d, nil
}

// resolveRefs builds resource refs, tolerating resolver failures
func resolveRefs(ctx context.Context, ids []int64, resolve TitleResolver) []promotion.ResourceRef {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]promotion.ResourceRef, 0, len(ids))
	for _, id := range ids {
		ref := promotion.ResourceRef{ExternalID: formatResourceID(id)}
		if resolve != nil {
			if title, err := resolve(ctx, id); err == nil {
				ref.Title = title
			}
		}
		refs = append(refs, ref)
	}
	return refs
}
