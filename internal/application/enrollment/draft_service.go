package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/enrollment"
)

// =============================================================================
// Draft Wizard DTOs
// =============================================================================

// SelectCustomerRequest captures the customer chosen in the wizard
type SelectCustomerRequest struct {
	ExternalID      string `json:"external_id" binding:"required"`
	Email           string `json:"email" binding:"omitempty,email"`
	FirstName       string `json:"first_name" binding:"max=100"`
	LastName        string `json:"last_name" binding:"max=100"`
	BillToAddressID string `json:"bill_to_address_id"`
	ShipToAddressID string `json:"ship_to_address_id"`
	LTVCents        int64  `json:"ltv_cents" binding:"gte=0"`
}

// SelectTierRequest captures the tier chosen in the wizard
type SelectTierRequest struct {
	TierID uuid.UUID `json:"tier_id" binding:"required"`
}

// VerifyPaymentRequest records the verified payment method
type VerifyPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	CardBrand       string `json:"card_brand" binding:"max=50"`
	LastFour        string `json:"last_four" binding:"omitempty,len=4"`
	ExpiryMonth     int    `json:"expiry_month" binding:"omitempty,min=1,max=12"`
	ExpiryYear      int    `json:"expiry_year" binding:"omitempty,gte=2000"`
}

// CommunicationRequest records the communication preference snapshot
type CommunicationRequest struct {
	Channel   string `json:"channel" binding:"max=50"`
	OptedIn   bool   `json:"opted_in"`
	Frequency string `json:"frequency" binding:"max=50"`
}

// DraftResponse is the wizard state for API responses
type DraftResponse struct {
	SessionID       string                              `json:"session_id"`
	Customer        *enrollment.CustomerSelection       `json:"customer,omitempty"`
	Tier            *enrollment.TierSelection           `json:"tier,omitempty"`
	AddressVerified bool                                `json:"address_verified"`
	PaymentVerified bool                                `json:"payment_verified"`
	Payment         *enrollment.PaymentSummary          `json:"payment,omitempty"`
	Communication   *enrollment.CommunicationPreference `json:"communication,omitempty"`
	MissingGates    []string                            `json:"missing_gates"`
}

// ToDraftResponse converts a draft to its API shape
func ToDraftResponse(d *enrollment.Draft) DraftResponse {
	missing := d.MissingGates()
	if missing == nil {
		missing = []string{}
	}
	return DraftResponse{
		SessionID:       d.SessionID,
		Customer:        d.Customer,
		Tier:            d.Tier,
		AddressVerified: d.AddressVerified,
		PaymentVerified: d.PaymentVerified,
		Payment:         d.Payment,
		Communication:   d.Communication,
		MissingGates:    missing,
	}
}

// =============================================================================
// DraftService
// =============================================================================

// DraftService drives the enrollment wizard. Steps may arrive in any
// order; each one loads the draft, applies its additive mutation and
// saves. A step for a session without a draft starts one implicitly.
type DraftService struct {
	drafts enrollment.DraftRepository
	tiers  club.TierRepository
	logger *zap.Logger
}

// NewDraftService creates a draft service
func NewDraftService(drafts enrollment.DraftRepository, tiers club.TierRepository, logger *zap.Logger) *DraftService {
	return &DraftService{
		drafts: drafts,
		tiers:  tiers,
		logger: logger,
	}
}

// loadOrStart returns the session's draft, creating one if absent
func (s *DraftService) loadOrStart(ctx context.Context, tenantID uuid.UUID, sessionID string) (*enrollment.Draft, error) {
	d, err := s.drafts.Find(ctx, tenantID, sessionID)
	if errors.Is(err, enrollment.ErrDraftNotFound) {
		return enrollment.NewDraft(tenantID, sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// StartDraft creates an empty draft for the session, replacing any
// existing one
func (s *DraftService) StartDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) (*DraftResponse, error) {
	d := enrollment.NewDraft(tenantID, sessionID)
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// GetDraft returns the session's draft state
func (s *DraftService) GetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) (*DraftResponse, error) {
	d, err := s.drafts.Find(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// SelectCustomer records the chosen customer and their verified ids
func (s *DraftService) SelectCustomer(ctx context.Context, tenantID uuid.UUID, sessionID string, req SelectCustomerRequest) (*DraftResponse, error) {
	d, err := s.loadOrStart(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	d.SetCustomer(enrollment.CustomerSelection{
		ExternalID:      req.ExternalID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		BillToAddressID: req.BillToAddressID,
		ShipToAddressID: req.ShipToAddressID,
		LTVCents:        req.LTVCents,
	})

	// Tier qualification depends on the customer's lifetime value, so a
	// customer change recomputes it for a previously chosen tier.
	if d.Tier != nil {
		if tier, err := s.tiers.FindByID(ctx, tenantID, d.Tier.TierID); err == nil {
			sel := *d.Tier
			sel.Qualified = tier.Qualifies(req.LTVCents)
			d.SetTier(sel)
		}
	}

	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// SelectTier records the chosen tier with its qualification flag
func (s *DraftService) SelectTier(ctx context.Context, tenantID uuid.UUID, sessionID string, req SelectTierRequest) (*DraftResponse, error) {
	d, err := s.loadOrStart(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	tier, err := s.tiers.FindByID(ctx, tenantID, req.TierID)
	if err != nil {
		return nil, err
	}
	if !tier.Active {
		return nil, club.ErrTierRetired
	}

	sel := enrollment.TierSelection{
		TierID:         tier.ID,
		TierName:       tier.Name,
		DurationMonths: tier.DurationMonths,
	}
	if tier.ExternalClubID != nil {
		sel.ClubExternalID = *tier.ExternalClubID
	}
	if d.Customer != nil {
		sel.Qualified = tier.Qualifies(d.Customer.LTVCents)
	}
	d.SetTier(sel)

	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// VerifyAddress marks the customer's addresses as verified
func (s *DraftService) VerifyAddress(ctx context.Context, tenantID uuid.UUID, sessionID string) (*DraftResponse, error) {
	d, err := s.loadOrStart(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	d.MarkAddressVerified()
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// VerifyPayment records the verified payment method
func (s *DraftService) VerifyPayment(ctx context.Context, tenantID uuid.UUID, sessionID string, req VerifyPaymentRequest) (*DraftResponse, error) {
	d, err := s.loadOrStart(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	d.MarkPaymentVerified(enrollment.PaymentSummary{
		PaymentMethodID: req.PaymentMethodID,
		CardBrand:       req.CardBrand,
		LastFour:        req.LastFour,
		ExpiryMonth:     req.ExpiryMonth,
		ExpiryYear:      req.ExpiryYear,
	})
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// SetCommunicationPreference records the communication opt-in snapshot
func (s *DraftService) SetCommunicationPreference(ctx context.Context, tenantID uuid.UUID, sessionID string, req CommunicationRequest) (*DraftResponse, error) {
	d, err := s.loadOrStart(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	d.SetCommunication(enrollment.CommunicationPreference{
		Channel:   req.Channel,
		OptedIn:   req.OptedIn,
		Frequency: req.Frequency,
	})
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDraftResponse(d)
	return &resp, nil
}

// ResetDraft discards the session's draft
func (s *DraftService) ResetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) error {
	return s.drafts.Delete(ctx, tenantID, sessionID)
}
