package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDraftNotFound is returned when no draft exists for a session
var ErrDraftNotFound = errors.New("enrollment: draft not found")

// Gate names used when reporting an incomplete draft
const (
	GateCustomer = "customer"
	GateTier     = "tier"
	GateAddress  = "address"
	GatePayment  = "payment"
)

// CustomerSelection is the customer snapshot captured by the wizard's first
// step. All ids are platform-side external ids.
type CustomerSelection struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	// BillToAddressID / ShipToAddressID are verified platform address ids
	BillToAddressID string `json:"bill_to_address_id,omitempty"`
	ShipToAddressID string `json:"ship_to_address_id,omitempty"`
	// LTVCents is the customer's lifetime value, minor units
	LTVCents int64 `json:"ltv_cents"`
}

// TierSelection is the tier chosen in the wizard, with the qualification
// flag computed against the customer's lifetime value at selection time.
type TierSelection struct {
	TierID         uuid.UUID `json:"tier_id"`
	TierName       string    `json:"tier_name"`
	ClubExternalID string    `json:"club_external_id,omitempty"`
	DurationMonths int       `json:"duration_months"`
	Qualified      bool      `json:"qualified"`
}

// PaymentSummary is the display snapshot of the verified payment method
type PaymentSummary struct {
	PaymentMethodID string `json:"payment_method_id"`
	CardBrand       string `json:"card_brand,omitempty"`
	LastFour        string `json:"last_four,omitempty"`
	ExpiryMonth     int    `json:"expiry_month,omitempty"`
	ExpiryYear      int    `json:"expiry_year,omitempty"`
}

// CommunicationPreference is the member's communication opt-in snapshot
type CommunicationPreference struct {
	Channel   string `json:"channel,omitempty"`
	OptedIn   bool   `json:"opted_in"`
	Frequency string `json:"frequency,omitempty"`
}

// Draft is the per-session state of the guided enrollment workflow. Each
// wizard step is additive: fields accumulate and are never unset except by
// Reset. The terminal completion action reads and clears the draft exactly
// once; clearing is the commit signal.
type Draft struct {
	SessionID string
	TenantID  uuid.UUID

	Customer        *CustomerSelection
	Tier            *TierSelection
	AddressVerified bool
	PaymentVerified bool
	Payment         *PaymentSummary
	Communication   *CommunicationPreference

	// ClientRef is a draft-stable reference sent with the membership
	// creation call so a replay after a lost response cannot create a
	// duplicate membership.
	ClientRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDraft creates an empty draft for a session
func NewDraft(tenantID uuid.UUID, sessionID string) *Draft {
	now := time.Now()
	return &Draft{
		SessionID: sessionID,
		TenantID:  tenantID,
		ClientRef: uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCustomer records the selected customer
func (d *Draft) SetCustomer(c CustomerSelection) {
	d.Customer = &c
	d.UpdatedAt = time.Now()
}

// SetTier records the selected tier
func (d *Draft) SetTier(t TierSelection) {
	d.Tier = &t
	d.UpdatedAt = time.Now()
}

// MarkAddressVerified records that the customer's addresses were verified
func (d *Draft) MarkAddressVerified() {
	d.AddressVerified = true
	d.UpdatedAt = time.Now()
}

// MarkPaymentVerified records the verified payment method
func (d *Draft) MarkPaymentVerified(p PaymentSummary) {
	d.PaymentVerified = true
	d.Payment = &p
	d.UpdatedAt = time.Now()
}

// SetCommunication records the communication preference snapshot
func (d *Draft) SetCommunication(c CommunicationPreference) {
	d.Communication = &c
	d.UpdatedAt = time.Now()
}

// MissingGates names the completion gates not yet satisfied, in wizard
// order. An empty result means the draft is complete.
func (d *Draft) MissingGates() []string {
	var missing []string
	if d.Customer == nil {
		missing = append(missing, GateCustomer)
	}
	if d.Tier == nil {
		missing = append(missing, GateTier)
	}
	if !d.AddressVerified {
		missing = append(missing, GateAddress)
	}
	if !d.PaymentVerified || d.Payment == nil {
		missing = append(missing, GatePayment)
	}
	return missing
}

// IsComplete reports whether all completion gates are satisfied
func (d *Draft) IsComplete() bool {
	return len(d.MissingGates()) == 0
}

// DraftRepository provides persistence for enrollment drafts, keyed by
// session id. Concurrent writers for the same session are last-write-wins.
type DraftRepository interface {
	// Find returns the draft for a session, ErrDraftNotFound if absent
	Find(ctx context.Context, tenantID uuid.UUID, sessionID string) (*Draft, error)
	// Save creates or replaces the session's draft
	Save(ctx context.Context, d *Draft) error
	// Delete clears the session's draft. Deleting an absent draft is not
	// an error.
	Delete(ctx context.Context, tenantID uuid.UUID, sessionID string) error
}
