package commerce7

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarclub/backend/internal/domain/promotion"
)

func basisPoints(bp int64) *int64 {
	return &bp
}

func percentDiscount(pct float64) *promotion.Discount {
	return &promotion.Discount{
		Title:  "Member Savings",
		Status: promotion.StatusActive,
		Value: promotion.Value{
			Type:       promotion.ValuePercentage,
			Percentage: pct,
		},
		AppliesTo: promotion.AppliesTo{
			Target: promotion.TargetProduct,
			Scope:  promotion.ScopeAll,
		},
		Minimum: promotion.MinimumRequirement{Type: promotion.MinimumNone},
	}
}

// ---------------------------------------------------------------------------
// Unit Conversion Tests
// ---------------------------------------------------------------------------

func TestPercentBasisPointConversion(t *testing.T) {
	tests := []struct {
		pct float64
		bp  int64
	}{
		{10, 1000},
		{12.5, 1250},
		{0.01, 1},
		{100, 10000},
		{33.33, 3333},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bp, percentToBasisPoints(tt.pct))
		assert.InDelta(t, tt.pct, basisPointsToPercent(tt.bp), 1e-6)
	}
}

func TestCentsDollarConversion(t *testing.T) {
	assert.Equal(t, 50.0, centsToDollars(5000))
	assert.Equal(t, int64(5000), dollarsToCents(50.0))
	assert.Equal(t, 0.01, centsToDollars(1))
	assert.Equal(t, int64(1), dollarsToCents(0.01))
	assert.Equal(t, int64(1999), dollarsToCents(19.99))
}

// ---------------------------------------------------------------------------
// Promotion Codec Tests
// ---------------------------------------------------------------------------

func TestCodec_EncodePromotion_Percentage(t *testing.T) {
	var codec Codec

	d := percentDiscount(12.5)
	d.StartsAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d.PlatformTag = "club-sync"

	p, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	require.NotNil(t, p.PercentOff)
	assert.Equal(t, int64(1250), *p.PercentOff)
	assert.Zero(t, p.AmountOff)
	assert.Equal(t, "Enabled", p.Status)
	assert.Equal(t, "Product", p.DiscountTarget)
	assert.Equal(t, "club-sync", p.Tag)
	assert.Equal(t, "2026-03-01T00:00:00Z", p.StartDate)
}

func TestCodec_EncodePromotion_StoreWideOmitsIDLists(t *testing.T) {
	var codec Codec

	p, err := codec.EncodePromotion(percentDiscount(10))
	require.NoError(t, err)

	assert.True(t, p.AppliesToAllProducts)
	assert.Nil(t, p.ProductIDs)
	assert.Nil(t, p.CollectionIDs)
}

func TestCodec_EncodePromotion_SpecificRefs(t *testing.T) {
	var codec Codec

	d := percentDiscount(10)
	d.AppliesTo.Scope = promotion.ScopeSpecific
	d.AppliesTo.ProductRefs = []promotion.ResourceRef{
		{ExternalID: "prod-1", Title: "Estate Red"},
		{ExternalID: "prod-2"},
	}
	d.AppliesTo.CollectionRefs = []promotion.ResourceRef{
		{ExternalID: "coll-1"},
	}

	p, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	assert.False(t, p.AppliesToAllProducts)
	assert.Equal(t, []string{"prod-1", "prod-2"}, p.ProductIDs)
	assert.Equal(t, []string{"coll-1"}, p.CollectionIDs)
}

func TestCodec_EncodePromotion_FixedAmountStaysCents(t *testing.T) {
	var codec Codec

	d := percentDiscount(0)
	d.Value = promotion.Value{
		Type:        promotion.ValueFixedAmount,
		AmountCents: 1500,
	}

	p, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), p.AmountOff)
	assert.Nil(t, p.PercentOff)
}

func TestCodec_EncodePromotion_ShippingMinimumConvertsToDollars(t *testing.T) {
	var codec Codec

	d := percentDiscount(10)
	d.AppliesTo.Target = promotion.TargetShipping
	d.Minimum = promotion.MinimumRequirement{
		Type:        promotion.MinimumAmount,
		AmountCents: 5000,
	}

	p, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	assert.Equal(t, 50.0, p.CartMinimumSubtotal)
	assert.Zero(t, p.CartMinimumQuantity)
}

func TestCodec_EncodePromotion_ProductMinimumNotTransmitted(t *testing.T) {
	var codec Codec

	d := percentDiscount(10)
	d.Minimum = promotion.MinimumRequirement{
		Type:        promotion.MinimumAmount,
		AmountCents: 5000,
	}

	p, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	assert.Zero(t, p.CartMinimumSubtotal)
	assert.Zero(t, p.CartMinimumQuantity)
}

func TestCodec_EncodePromotion_InvalidDiscount(t *testing.T) {
	var codec Codec

	d := percentDiscount(10)
	d.Title = ""

	_, err := codec.EncodePromotion(d)
	assert.ErrorIs(t, err, promotion.ErrDiscountMissingTitle)
}

func TestCodec_PromotionRoundTrip(t *testing.T) {
	var codec Codec

	d := percentDiscount(12.34)
	d.ExternalID = "promo-7"
	d.PlatformTag = "club-sync"
	d.StartsAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	d.CustomerSegments = []string{"club-gold"}
	d.AppliesTo.Target = promotion.TargetShipping
	d.Minimum = promotion.MinimumRequirement{
		Type:        promotion.MinimumAmount,
		AmountCents: 7550,
	}
	d.Extension = promotion.Commerce7Extension{
		PromotionUsage: "once-per-order",
		ChannelWeb:     true,
		ChannelClub:    true,
	}

	encoded, err := codec.EncodePromotion(d)
	require.NoError(t, err)

	decoded, err := codec.DecodePromotion(context.Background(), encoded, nil)
	require.NoError(t, err)

	assert.Equal(t, d.ExternalID, decoded.ExternalID)
	assert.Equal(t, d.Title, decoded.Title)
	assert.Equal(t, d.PlatformTag, decoded.PlatformTag)
	assert.Equal(t, d.Status, decoded.Status)
	assert.True(t, d.StartsAt.Equal(decoded.StartsAt))
	assert.InDelta(t, d.Value.Percentage, decoded.Value.Percentage, 1e-6)
	assert.Equal(t, d.AppliesTo.Target, decoded.AppliesTo.Target)
	assert.Equal(t, d.AppliesTo.Scope, decoded.AppliesTo.Scope)
	assert.Equal(t, d.CustomerSegments, decoded.CustomerSegments)
	assert.Equal(t, d.Minimum, decoded.Minimum)
	assert.Equal(t, d.Extension, decoded.Extension)
	require.NoError(t, decoded.Validate())
}

func TestCodec_PromotionRoundTrip_ZeroPercentKeepsValueType(t *testing.T) {
	var codec Codec

	d := percentDiscount(0)
	d.ExternalID = "promo-zero"

	encoded, err := codec.EncodePromotion(d)
	require.NoError(t, err)
	require.NotNil(t, encoded.PercentOff)
	assert.Zero(t, *encoded.PercentOff)

	decoded, err := codec.DecodePromotion(context.Background(), encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, promotion.ValuePercentage, decoded.Value.Type)
	assert.Zero(t, decoded.Value.Percentage)
	assert.Zero(t, decoded.Value.AmountCents)
}

func TestCodec_DecodePromotion_TitleResolverFailureKeepsBareID(t *testing.T) {
	var codec Codec

	payload := &PromotionPayload{
		ID:             "promo-1",
		Title:          "Member Savings",
		Status:         "Enabled",
		DiscountTarget: "Product",
		PercentOff:     basisPoints(1000),
		ProductIDs:     []string{"prod-1", "prod-2"},
	}

	resolve := func(ctx context.Context, id string) (string, error) {
		if id == "prod-1" {
			return "Estate Red", nil
		}
		return "", errors.New("lookup failed")
	}

	d, err := codec.DecodePromotion(context.Background(), payload, resolve)
	require.NoError(t, err)

	require.Len(t, d.AppliesTo.ProductRefs, 2)
	assert.Equal(t, "Estate Red", d.AppliesTo.ProductRefs[0].Title)
	assert.Equal(t, "prod-2", d.AppliesTo.ProductRefs[1].ExternalID)
	assert.Empty(t, d.AppliesTo.ProductRefs[1].Title)
}

func TestCodec_DecodePromotion_UnknownStatus(t *testing.T) {
	var codec Codec

	payload := &PromotionPayload{
		Title:          "Broken",
		Status:         "Paused",
		DiscountTarget: "Product",
		PercentOff:     basisPoints(1000),
	}

	_, err := codec.DecodePromotion(context.Background(), payload, nil)
	assert.ErrorIs(t, err, ErrCodecUnknownStatus)
}

// ---------------------------------------------------------------------------
// Coupon Codec Tests
// ---------------------------------------------------------------------------

func TestCodec_CouponRoundTrip(t *testing.T) {
	var codec Codec

	d := percentDiscount(15)
	d.ExternalID = "coupon-3"
	d.CustomerSegments = []string{"club-silver"}

	encoded, err := codec.EncodeCoupon(d, "WELCOME15")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME15", encoded.Code)
	assert.True(t, encoded.AppliesToAllProducts)
	assert.Nil(t, encoded.ProductIDs)

	decoded, err := codec.DecodeCoupon(context.Background(), encoded, nil)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, decoded.Value.Percentage, 1e-6)
	assert.Equal(t, promotion.ScopeAll, decoded.AppliesTo.Scope)
	assert.Equal(t, d.CustomerSegments, decoded.CustomerSegments)
}

func TestCodec_EncodeCoupon_MissingCode(t *testing.T) {
	var codec Codec

	_, err := codec.EncodeCoupon(percentDiscount(10), "")
	assert.ErrorIs(t, err, ErrCouponMissingCode)
}

// ---------------------------------------------------------------------------
// Envelope Tests
// ---------------------------------------------------------------------------

func TestEnvelope_Validate(t *testing.T) {
	promo := &PromotionPayload{Title: "x"}
	coupon := &CouponPayload{Title: "x", Code: "X"}

	assert.NoError(t, NewPromotionEnvelope(promo).Validate())
	assert.NoError(t, NewCouponEnvelope(coupon).Validate())

	assert.ErrorIs(t, Envelope{Kind: ShapePromotion, Coupon: coupon}.Validate(), ErrEnvelopeShapeMismatch)
	assert.ErrorIs(t, Envelope{Kind: ShapeCoupon, Promotion: promo}.Validate(), ErrEnvelopeShapeMismatch)
	assert.ErrorIs(t, Envelope{Kind: ShapePromotion, Promotion: promo, Coupon: coupon}.Validate(), ErrEnvelopeShapeMismatch)
	assert.ErrorIs(t, Envelope{Kind: "voucher", Promotion: promo}.Validate(), ErrEnvelopeShapeMismatch)
}

func TestCodec_DecodeEnvelope(t *testing.T) {
	var codec Codec

	promo := &PromotionPayload{
		Title:                "Member Savings",
		Status:               "Enabled",
		DiscountTarget:       "Product",
		PercentOff:           basisPoints(1000),
		AppliesToAllProducts: true,
	}

	d, err := codec.DecodeEnvelope(context.Background(), NewPromotionEnvelope(promo), nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, d.Value.Percentage, 1e-6)

	_, err = codec.DecodeEnvelope(context.Background(), Envelope{Kind: ShapeCoupon}, nil)
	assert.ErrorIs(t, err, ErrEnvelopeShapeMismatch)
}
