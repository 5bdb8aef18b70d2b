package commerce7

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cellarclub/backend/internal/domain/promotion"
)

// centsPerDollar converts between minor and major currency units
const centsPerDollar = 100

// basisPointsPerPercent converts between whole percents and basis points
const basisPointsPerPercent = 100

var (
	// ErrCodecUnknownStatus is returned when decoding an unrecognized status
	ErrCodecUnknownStatus = errors.New("commerce7: unknown promotion status")
	// ErrCodecUnknownTarget is returned when decoding an unrecognized target
	ErrCodecUnknownTarget = errors.New("commerce7: unknown discount target")
	// ErrCouponMissingCode is returned when encoding a coupon without a code
	ErrCouponMissingCode = errors.New("commerce7: coupon code is required")
)

// TitleResolver resolves an external product or collection id to its title
// during decode enrichment. Implementations may hit the network.
type TitleResolver func(ctx context.Context, externalID string) (string, error)

// Codec maps between the canonical discount model and the two Commerce7
// wire shapes. Encoding validates first, so nothing malformed reaches the
// network. Both directions are lossless for the fields the canonical model
// carries: decode(encode(d)) reproduces d's value within floating-point
// tolerance for two-decimal percentages.
type Codec struct{}

// ---------------------------------------------------------------------------
// Unit Conversions
// ---------------------------------------------------------------------------

// percentToBasisPoints converts a 0-100 percentage to integer basis points
func percentToBasisPoints(pct float64) int64 {
	return int64(math.Round(pct * basisPointsPerPercent))
}

// basisPointsToPercent converts integer basis points back to a percentage
func basisPointsToPercent(bp int64) float64 {
	return float64(bp) / basisPointsPerPercent
}

// centsToDollars converts minor units to major units for the cart
// requirement fields. Discount amount fields stay in cents.
func centsToDollars(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(centsPerDollar)).InexactFloat64()
}

// dollarsToCents converts major units back to minor units
func dollarsToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(decimal.NewFromInt(centsPerDollar)).Round(0).IntPart()
}

// ---------------------------------------------------------------------------
// Status / Target Mapping
// ---------------------------------------------------------------------------

func encodeStatus(s promotion.Status) string {
	switch s {
	case promotion.StatusActive:
		return statusEnabled
	case promotion.StatusScheduled:
		return statusScheduled
	default:
		return statusDisabled
	}
}

func decodeStatus(s string) (promotion.Status, error) {
	switch s {
	case statusEnabled:
		return promotion.StatusActive, nil
	case statusDisabled:
		return promotion.StatusInactive, nil
	case statusScheduled:
		return promotion.StatusScheduled, nil
	default:
		return "", ErrCodecUnknownStatus
	}
}

func encodeTarget(t promotion.Target) string {
	if t == promotion.TargetShipping {
		return targetShipping
	}
	return targetProduct
}

func decodeTarget(t string) (promotion.Target, error) {
	switch t {
	case targetProduct:
		return promotion.TargetProduct, nil
	case targetShipping:
		return promotion.TargetShipping, nil
	default:
		return "", ErrCodecUnknownTarget
	}
}

// ---------------------------------------------------------------------------
// Promotion Shape (current)
// ---------------------------------------------------------------------------

// EncodePromotion maps a canonical discount to the current promotion shape
func (Codec) EncodePromotion(d *promotion.Discount) (*PromotionPayload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	p := &PromotionPayload{
		ID:             d.ExternalID,
		Title:          d.Title,
		Tag:            d.PlatformTag,
		Status:         encodeStatus(d.Status),
		DiscountTarget: encodeTarget(d.AppliesTo.Target),
	}
	if !d.StartsAt.IsZero() {
		p.StartDate = d.StartsAt.UTC().Format(time.RFC3339)
	}

	switch d.Value.Type {
	case promotion.ValuePercentage:
		bp := percentToBasisPoints(d.Value.Percentage)
		p.PercentOff = &bp
	case promotion.ValueFixedAmount:
		// Discount amounts stay minor units; only cart requirements
		// convert to dollars below.
		p.AmountOff = d.Value.AmountCents
	}

	if d.IsStoreWide() {
		p.AppliesToAllProducts = true
		// Id lists stay nil: the API treats an empty array as "applies
		// to nothing", which is not the same as store-wide.
	} else {
		for _, ref := range d.AppliesTo.ProductRefs {
			p.ProductIDs = append(p.ProductIDs, ref.ExternalID)
		}
		for _, ref := range d.AppliesTo.CollectionRefs {
			p.CollectionIDs = append(p.CollectionIDs, ref.ExternalID)
		}
	}

	if len(d.CustomerSegments) > 0 {
		p.AvailableToClubIDs = append(p.AvailableToClubIDs, d.CustomerSegments...)
	}

	if d.TransmitsMinimum() {
		switch d.Minimum.Type {
		case promotion.MinimumQuantity:
			p.CartMinimumQuantity = d.Minimum.QuantityMin
		case promotion.MinimumAmount:
			p.CartMinimumSubtotal = centsToDollars(d.Minimum.AmountCents)
		}
	}

	if ext, ok := d.Extension.(promotion.Commerce7Extension); ok {
		p.PromotionUsage = ext.PromotionUsage
		p.ChannelWeb = ext.ChannelWeb
		p.ChannelPOS = ext.ChannelPOS
		p.ChannelClub = ext.ChannelClub
	}

	return p, nil
}

// DecodePromotion maps a promotion response back to the canonical model.
// resolve may be nil; when a title lookup fails the ref keeps its bare id
// with an empty title instead of failing the whole decode.
func (Codec) DecodePromotion(ctx context.Context, p *PromotionPayload, resolve TitleResolver) (*promotion.Discount, error) {
	status, err := decodeStatus(p.Status)
	if err != nil {
		return nil, err
	}
	target, err := decodeTarget(p.DiscountTarget)
	if err != nil {
		return nil, err
	}

	d := &promotion.Discount{
		ExternalID:  p.ID,
		Title:       p.Title,
		PlatformTag: p.Tag,
		Status:      status,
		Minimum:     promotion.MinimumRequirement{Type: promotion.MinimumNone},
	}
	if p.StartDate != "" {
		if ts, err := time.Parse(time.RFC3339, p.StartDate); err == nil {
			d.StartsAt = ts
		}
	}

	if p.PercentOff != nil {
		d.Value = promotion.Value{
			Type:       promotion.ValuePercentage,
			Percentage: basisPointsToPercent(*p.PercentOff),
		}
	} else {
		d.Value = promotion.Value{
			Type:        promotion.ValueFixedAmount,
			AmountCents: p.AmountOff,
		}
	}

	d.AppliesTo = promotion.AppliesTo{Target: target}
	if p.AppliesToAllProducts {
		d.AppliesTo.Scope = promotion.ScopeAll
	} else {
		d.AppliesTo.Scope = promotion.ScopeSpecific
		d.AppliesTo.ProductRefs = resolveRefs(ctx, p.ProductIDs, resolve)
		d.AppliesTo.CollectionRefs = resolveRefs(ctx, p.CollectionIDs, resolve)
	}

	d.CustomerSegments = append(d.CustomerSegments, p.AvailableToClubIDs...)

	if target == promotion.TargetShipping {
		if p.CartMinimumQuantity > 0 {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumQuantity,
				QuantityMin: p.CartMinimumQuantity,
			}
		} else if p.CartMinimumSubtotal > 0 {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumAmount,
				AmountCents: dollarsToCents(p.CartMinimumSubtotal),
			}
		}
	}

	if p.PromotionUsage != "" || p.ChannelWeb || p.ChannelPOS || p.ChannelClub {
		d.Extension = promotion.Commerce7Extension{
			PromotionUsage: p.PromotionUsage,
			ChannelWeb:     p.ChannelWeb,
			ChannelPOS:     p.ChannelPOS,
			ChannelClub:    p.ChannelClub,
		}
	}

	return d, nil
}

// resolveRefs builds resource refs, tolerating resolver failures
func resolveRefs(ctx context.Context, ids []string, resolve TitleResolver) []promotion.ResourceRef {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]promotion.ResourceRef, 0, len(ids))
	for _, id := range ids {
		ref := promotion.ResourceRef{ExternalID: id}
		if resolve != nil {
			if title, err := resolve(ctx, id); err == nil {
				ref.Title = title
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// ---------------------------------------------------------------------------
// Coupon Shape (legacy)
// ---------------------------------------------------------------------------

// EncodeCoupon maps a canonical discount to the legacy code-based shape.
// Only objects that were created as coupons ever take this path; the two
// shapes never mix within one object's lifecycle.
func (Codec) EncodeCoupon(d *promotion.Discount, code string) (*CouponPayload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrCouponMissingCode
	}

	c := &CouponPayload{
		ID:             d.ExternalID,
		Code:           code,
		Title:          d.Title,
		Status:         encodeStatus(d.Status),
		DiscountTarget: encodeTarget(d.AppliesTo.Target),
	}

	switch d.Value.Type {
	case promotion.ValuePercentage:
		bp := percentToBasisPoints(d.Value.Percentage)
		c.PercentOff = &bp
	case promotion.ValueFixedAmount:
		c.AmountOff = d.Value.AmountCents
	}

	if d.IsStoreWide() {
		c.AppliesToAllProducts = true
	} else {
		for _, ref := range d.AppliesTo.ProductRefs {
			c.ProductIDs = append(c.ProductIDs, ref.ExternalID)
		}
	}

	if len(d.CustomerSegments) > 0 {
		c.AvailableToClubIDs = append(c.AvailableToClubIDs, d.CustomerSegments...)
	}

	if d.TransmitsMinimum() {
		switch d.Minimum.Type {
		case promotion.MinimumQuantity:
			c.CartMinimumQuantity = d.Minimum.QuantityMin
		case promotion.MinimumAmount:
			c.CartMinimumSubtotal = centsToDollars(d.Minimum.AmountCents)
		}
	}

	return c, nil
}

// DecodeCoupon maps a legacy coupon response back to the canonical model
func (Codec) DecodeCoupon(ctx context.Context, c *CouponPayload, resolve TitleResolver) (*promotion.Discount, error) {
	status, err := decodeStatus(c.Status)
	if err != nil {
		return nil, err
	}
	target, err := decodeTarget(c.DiscountTarget)
	if err != nil {
		return nil, err
	}

	d := &promotion.Discount{
		ExternalID: c.ID,
		Title:      c.Title,
		Status:     status,
		Minimum:    promotion.MinimumRequirement{Type: promotion.MinimumNone},
	}

	if c.PercentOff != nil {
		d.Value = promotion.Value{
			Type:       promotion.ValuePercentage,
			Percentage: basisPointsToPercent(*c.PercentOff),
		}
	} else {
		d.Value = promotion.Value{
			Type:        promotion.ValueFixedAmount,
			AmountCents: c.AmountOff,
		}
	}

	d.AppliesTo = promotion.AppliesTo{Target: target}
	if c.AppliesToAllProducts {
		d.AppliesTo.Scope = promotion.ScopeAll
	} else {
		d.AppliesTo.Scope = promotion.ScopeSpecific
		d.AppliesTo.ProductRefs = resolveRefs(ctx, c.ProductIDs, resolve)
	}

	d.CustomerSegments = append(d.CustomerSegments, c.AvailableToClubIDs...)

	if target == promotion.TargetShipping {
		if c.CartMinimumQuantity > 0 {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumQuantity,
				QuantityMin: c.CartMinimumQuantity,
			}
		} else if c.CartMinimumSubtotal > 0 {
			d.Minimum = promotion.MinimumRequirement{
				Type:        promotion.MinimumAmount,
				AmountCents: dollarsToCents(c.CartMinimumSubtotal),
			}
		}
	}

	return d, nil
}

// DecodeEnvelope decodes either wire shape through the kind discriminant
func (cd Codec) DecodeEnvelope(ctx context.Context, e Envelope, resolve TitleResolver) (*promotion.Discount, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Kind == ShapeCoupon {
		return cd.DecodeCoupon(ctx, e.Coupon, resolve)
	}
	return cd.DecodePromotion(ctx, e.Promotion, resolve)
}
