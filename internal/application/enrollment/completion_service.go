package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/enrollment"
)

// =============================================================================
// Completion DTOs
// =============================================================================

// EnrollmentResponse is the completed enrollment for API responses
type EnrollmentResponse struct {
	ID                   uuid.UUID             `json:"id"`
	CustomerID           uuid.UUID             `json:"customer_id"`
	TierID               uuid.UUID             `json:"tier_id"`
	Status               club.EnrollmentStatus `json:"status"`
	EnrolledAt           time.Time             `json:"enrolled_at"`
	ExpiresAt            time.Time             `json:"expires_at"`
	ExternalMembershipID string                `json:"external_membership_id,omitempty"`
}

// BonusAwarder dispatches the welcome bonus side effect
type BonusAwarder interface {
	Award(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, customerExternalID string, points int64, label string)
}

// =============================================================================
// CompletionService
// =============================================================================

// CompletionService performs the terminal enrollment action. Gate checks
// run before any remote call; the membership creation is the single
// irreversible step and carries the draft's stable client reference so a
// retry after a lost response cannot enroll twice.
type CompletionService struct {
	drafts      enrollment.DraftRepository
	tiers       club.TierRepository
	customers   club.CustomerRepository
	enrollments club.EnrollmentRepository
	loyalty     club.LoyaltyConfigRepository
	factory     crm.ProviderFactory
	bonus       BonusAwarder
	logger      *zap.Logger
}

// NewCompletionService creates a completion service
func NewCompletionService(
	drafts enrollment.DraftRepository,
	tiers club.TierRepository,
	customers club.CustomerRepository,
	enrollments club.EnrollmentRepository,
	loyalty club.LoyaltyConfigRepository,
	factory crm.ProviderFactory,
	bonus BonusAwarder,
	logger *zap.Logger,
) *CompletionService {
	return &CompletionService{
		drafts:      drafts,
		tiers:       tiers,
		customers:   customers,
		enrollments: enrollments,
		loyalty:     loyalty,
		factory:     factory,
		bonus:       bonus,
		logger:      logger,
	}
}

// Complete turns a complete draft into a platform membership and a local
// enrollment. The draft is cleared only after both are durably written;
// an earlier failure keeps the draft so the client can retry.
func (s *CompletionService) Complete(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, sessionID string) (*EnrollmentResponse, error) {
	d, err := s.drafts.Find(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if missing := d.MissingGates(); len(missing) > 0 {
		return nil, &club.DraftIncompleteError{MissingGates: missing}
	}

	// Everything the membership call references must already be a
	// platform-side id.
	if d.Customer.BillToAddressID == "" || d.Customer.ShipToAddressID == "" {
		return nil, club.NewValidationError("address", "verified address ids are required")
	}
	if d.Payment.PaymentMethodID == "" {
		return nil, club.NewValidationError("payment", "verified payment method id is required")
	}
	if d.Tier.ClubExternalID == "" {
		return nil, club.NewValidationError("tier", "selected tier has no remote club")
	}

	tier, err := s.tiers.FindByID(ctx, tenantID, d.Tier.TierID)
	if err != nil {
		return nil, err
	}
	if !tier.Active {
		return nil, club.ErrTierRetired
	}
	if !tier.Qualifies(d.Customer.LTVCents) {
		return nil, club.NewValidationError("tier", "customer does not qualify for this tier")
	}

	provider, err := s.factory.Provider(ctx, tenantID, platform)
	if err != nil {
		return nil, err
	}

	enrolledAt := time.Now()
	expiresAt := tier.ExpiryFrom(enrolledAt)

	membershipID, err := provider.CreateClubMembership(ctx, tenantID, crm.MembershipCreate{
		CustomerExternalID: d.Customer.ExternalID,
		ClubExternalID:     d.Tier.ClubExternalID,
		BillToAddressID:    d.Customer.BillToAddressID,
		ShipToAddressID:    d.Customer.ShipToAddressID,
		PaymentMethodID:    d.Payment.PaymentMethodID,
		SignupDate:         enrolledAt,
		ClientRef:          d.ClientRef,
	})
	if err != nil {
		return nil, err
	}

	customer, err := s.upsertCustomer(ctx, tenantID, d.Customer)
	if err != nil {
		s.logger.Error("membership created but local customer write failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("membership_id", membershipID),
			zap.Error(err))
		return nil, err
	}

	e := club.NewEnrollment(tenantID, customer.ID, tier.ID, enrolledAt, expiresAt)
	e.SetExternalMembershipID(membershipID)
	if err := s.enrollments.Save(ctx, e); err != nil {
		s.logger.Error("membership created but local enrollment write failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("membership_id", membershipID),
			zap.Error(err))
		return nil, err
	}

	s.dispatchWelcomeBonus(ctx, tenantID, platform, d.Customer.ExternalID)

	// Clearing the draft is the commit signal; a delete failure only
	// means a stale draft lingers until its session expires.
	if err := s.drafts.Delete(ctx, tenantID, sessionID); err != nil {
		s.logger.Warn("failed to clear completed draft",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	return &EnrollmentResponse{
		ID:                   e.ID,
		CustomerID:           e.CustomerID,
		TierID:               e.TierID,
		Status:               e.Status,
		EnrolledAt:           e.EnrolledAt,
		ExpiresAt:            e.ExpiresAt,
		ExternalMembershipID: membershipID,
	}, nil
}

// upsertCustomer creates or refreshes the local mirror for the platform
// customer the enrollment references
func (s *CompletionService) upsertCustomer(ctx context.Context, tenantID uuid.UUID, sel *enrollment.CustomerSelection) (*club.Customer, error) {
	customer, err := s.customers.FindByExternalID(ctx, tenantID, sel.ExternalID)
	switch {
	case errors.Is(err, club.ErrCustomerNotFound) || errors.Is(err, club.ErrNotFound):
		customer = club.NewCustomer(tenantID, sel.ExternalID, sel.Email, sel.FirstName, sel.LastName)
	case err != nil:
		return nil, err
	default:
		customer.Email = sel.Email
		customer.FirstName = sel.FirstName
		customer.LastName = sel.LastName
	}
	customer.LTVCents = sel.LTVCents
	customer.UpdatedAt = time.Now()

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// dispatchWelcomeBonus fires the best-effort welcome bonus when the
// tenant's loyalty program calls for one
func (s *CompletionService) dispatchWelcomeBonus(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, customerExternalID string) {
	cfg, err := s.loyalty.FindForTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, club.ErrNotFound) {
			s.logger.Warn("loyalty config lookup failed", zap.Error(err))
		}
		return
	}
	if !cfg.Enabled || cfg.WelcomeBonusPoints <= 0 {
		return
	}
	s.bonus.Award(ctx, tenantID, platform, customerExternalID, cfg.WelcomeBonusPoints, "club welcome bonus")
}
