package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDiscount() Discount {
	return Discount{
		Title:     "Summer case deal",
		Status:    StatusActive,
		StartsAt:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Value:     Value{Type: ValuePercentage, Percentage: 15},
		AppliesTo: AppliesTo{Target: TargetProduct, Scope: ScopeAll},
		Minimum:   MinimumRequirement{Type: MinimumNone},
	}
}

func TestValueValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		wantErr error
	}{
		{"valid percentage", Value{Type: ValuePercentage, Percentage: 10}, nil},
		{"zero percentage is allowed", Value{Type: ValuePercentage}, nil},
		{"hundred percent is allowed", Value{Type: ValuePercentage, Percentage: 100}, nil},
		{"valid fixed amount", Value{Type: ValueFixedAmount, AmountCents: 500}, nil},
		{"zero fixed amount is allowed", Value{Type: ValueFixedAmount}, nil},
		{"percentage with amount set", Value{Type: ValuePercentage, Percentage: 10, AmountCents: 500}, ErrDiscountInvalidValue},
		{"fixed amount with percentage set", Value{Type: ValueFixedAmount, AmountCents: 500, Percentage: 10}, ErrDiscountInvalidValue},
		{"negative percentage", Value{Type: ValuePercentage, Percentage: -1}, ErrDiscountPercentageRange},
		{"percentage above 100", Value{Type: ValuePercentage, Percentage: 100.01}, ErrDiscountPercentageRange},
		{"negative amount", Value{Type: ValueFixedAmount, AmountCents: -1}, ErrDiscountNegativeAmount},
		{"unknown type", Value{Type: "cashback"}, ErrDiscountInvalidValue},
		{"empty type", Value{}, ErrDiscountInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAppliesToValidate(t *testing.T) {
	ref := ResourceRef{ExternalID: "prod-1", Title: "Pinot Noir"}

	tests := []struct {
		name    string
		applies AppliesTo
		wantErr error
	}{
		{"store-wide product", AppliesTo{Target: TargetProduct, Scope: ScopeAll}, nil},
		{"specific with product refs", AppliesTo{Target: TargetProduct, Scope: ScopeSpecific, ProductRefs: []ResourceRef{ref}}, nil},
		{"specific with no refs is allowed", AppliesTo{Target: TargetProduct, Scope: ScopeSpecific}, nil},
		{"shipping store-wide", AppliesTo{Target: TargetShipping, Scope: ScopeAll}, nil},
		{"store-wide with product refs", AppliesTo{Target: TargetProduct, Scope: ScopeAll, ProductRefs: []ResourceRef{ref}}, ErrDiscountScopeRefs},
		{"store-wide with collection refs", AppliesTo{Target: TargetProduct, Scope: ScopeAll, CollectionRefs: []ResourceRef{ref}}, ErrDiscountScopeRefs},
		{"invalid target", AppliesTo{Target: "order", Scope: ScopeAll}, ErrDiscountInvalidTarget},
		{"invalid scope", AppliesTo{Target: TargetProduct, Scope: "some"}, ErrDiscountInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.applies.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMinimumRequirementValidate(t *testing.T) {
	tests := []struct {
		name    string
		minimum MinimumRequirement
		wantErr bool
	}{
		{"none", MinimumRequirement{Type: MinimumNone}, false},
		{"quantity", MinimumRequirement{Type: MinimumQuantity, QuantityMin: 6}, false},
		{"amount", MinimumRequirement{Type: MinimumAmount, AmountCents: 10000}, false},
		{"none with leftover quantity", MinimumRequirement{Type: MinimumNone, QuantityMin: 1}, true},
		{"quantity of zero", MinimumRequirement{Type: MinimumQuantity}, true},
		{"quantity with amount set", MinimumRequirement{Type: MinimumQuantity, QuantityMin: 6, AmountCents: 100}, true},
		{"amount of zero", MinimumRequirement{Type: MinimumAmount}, true},
		{"unknown type", MinimumRequirement{Type: "weight"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.minimum.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDiscountInvalidMinimum)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscountValidate(t *testing.T) {
	t.Run("accepts a well-formed discount", func(t *testing.T) {
		d := validDiscount()
		require.NoError(t, d.Validate())
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		d := validDiscount()
		d.Title = ""
		assert.ErrorIs(t, d.Validate(), ErrDiscountMissingTitle)
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		d := validDiscount()
		d.Status = "archived"
		assert.ErrorIs(t, d.Validate(), ErrDiscountInvalidStatus)
	})

	t.Run("propagates value and scope failures", func(t *testing.T) {
		d := validDiscount()
		d.Value = Value{Type: ValuePercentage, Percentage: 120}
		assert.ErrorIs(t, d.Validate(), ErrDiscountPercentageRange)

		d = validDiscount()
		d.AppliesTo.ProductRefs = []ResourceRef{{ExternalID: "prod-1"}}
		assert.ErrorIs(t, d.Validate(), ErrDiscountScopeRefs)
	})
}

func TestDiscountTransmitsMinimum(t *testing.T) {
	d := validDiscount()
	d.AppliesTo.Target = TargetShipping
	d.Minimum = MinimumRequirement{Type: MinimumAmount, AmountCents: 5000}
	assert.True(t, d.TransmitsMinimum())

	// Product-target discounts never carry their minimum over the wire
	d.AppliesTo.Target = TargetProduct
	assert.False(t, d.TransmitsMinimum())

	d.AppliesTo.Target = TargetShipping
	d.Minimum = MinimumRequirement{Type: MinimumNone}
	assert.False(t, d.TransmitsMinimum())
}

func TestDiscountString(t *testing.T) {
	d := validDiscount()
	assert.Contains(t, d.String(), "15.00% off")

	d.Value = Value{Type: ValueFixedAmount, AmountCents: 750}
	assert.Contains(t, d.String(), "750 minor units off")
}
