package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/enrollment"
)

type completionFixture struct {
	drafts      *MockDraftRepository
	tiers       *MockTierRepository
	customers   *MockCustomerRepository
	enrollments *MockEnrollmentRepository
	loyalty     *MockLoyaltyConfigRepository
	provider    *membershipProvider
	bonus       *bonusRecorder
	service     *CompletionService
}

func newCompletionFixture() *completionFixture {
	f := &completionFixture{
		drafts:      new(MockDraftRepository),
		tiers:       new(MockTierRepository),
		customers:   new(MockCustomerRepository),
		enrollments: new(MockEnrollmentRepository),
		loyalty:     new(MockLoyaltyConfigRepository),
		provider:    &membershipProvider{returnID: "member-1"},
		bonus:       &bonusRecorder{},
	}
	f.service = NewCompletionService(
		f.drafts, f.tiers, f.customers, f.enrollments, f.loyalty,
		&staticFactory{provider: f.provider}, f.bonus, zap.NewNop())
	return f
}

func completeDraft(tenantID uuid.UUID, tier *club.Tier) *enrollment.Draft {
	d := enrollment.NewDraft(tenantID, "sess-1")
	d.SetCustomer(enrollment.CustomerSelection{
		ExternalID:      "cust-1",
		Email:           "m@example.com",
		FirstName:       "Morgan",
		LastName:        "Vintner",
		BillToAddressID: "addr-b",
		ShipToAddressID: "addr-s",
		LTVCents:        100_000,
	})
	sel := enrollment.TierSelection{
		TierID:         tier.ID,
		TierName:       tier.Name,
		DurationMonths: tier.DurationMonths,
		Qualified:      true,
	}
	if tier.ExternalClubID != nil {
		sel.ClubExternalID = *tier.ExternalClubID
	}
	d.SetTier(sel)
	d.MarkAddressVerified()
	d.MarkPaymentVerified(enrollment.PaymentSummary{PaymentMethodID: "card-1"})
	return d
}

func TestComplete_HappyPath(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 50_000)
	draft := completeDraft(tenantID, tier)

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)
	f.tiers.On("FindByID", ctx, tenantID, tier.ID).Return(tier, nil)
	f.customers.On("FindByExternalID", ctx, tenantID, "cust-1").Return(nil, club.ErrCustomerNotFound)
	f.customers.On("Save", ctx, mock.AnythingOfType("*club.Customer")).Return(nil)

	var savedEnrollment *club.Enrollment
	f.enrollments.On("Save", ctx, mock.AnythingOfType("*club.Enrollment")).Run(func(args mock.Arguments) {
		savedEnrollment = args.Get(1).(*club.Enrollment)
	}).Return(nil)

	cfg := club.NewLoyaltyConfig(tenantID)
	cfg.Enabled = true
	cfg.WelcomeBonusPoints = 500
	f.loyalty.On("FindForTenant", ctx, tenantID).Return(cfg, nil)
	f.drafts.On("Delete", ctx, tenantID, "sess-1").Return(nil)

	resp, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "member-1", resp.ExternalMembershipID)
	assert.Equal(t, club.EnrollmentActive, resp.Status)

	// Expiry is enrollment time plus the tier duration in months.
	assert.WithinDuration(t, resp.EnrolledAt.AddDate(0, 12, 0), resp.ExpiresAt, time.Second)

	require.Len(t, f.provider.created, 1)
	mc := f.provider.created[0]
	assert.Equal(t, "cust-1", mc.CustomerExternalID)
	assert.Equal(t, "club-1", mc.ClubExternalID)
	assert.Equal(t, "card-1", mc.PaymentMethodID)
	assert.Equal(t, draft.ClientRef, mc.ClientRef)

	require.NotNil(t, savedEnrollment)
	require.NotNil(t, savedEnrollment.ExternalMembershipID)
	assert.Equal(t, "member-1", *savedEnrollment.ExternalMembershipID)

	assert.Equal(t, []int64{500}, f.bonus.awards)
	f.drafts.AssertExpectations(t)
}

func TestComplete_IncompleteDraftMakesNoRemoteCalls(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	d := enrollment.NewDraft(tenantID, "sess-1")
	d.SetCustomer(enrollment.CustomerSelection{ExternalID: "cust-1", BillToAddressID: "a", ShipToAddressID: "b"})

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(d, nil)

	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")

	var incomplete *club.DraftIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, []string{enrollment.GateTier, enrollment.GateAddress, enrollment.GatePayment}, incomplete.MissingGates)

	assert.Empty(t, f.provider.created)
	f.drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete_MissingExternalIDsFailValidation(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 0)
	draft := completeDraft(tenantID, tier)
	draft.Customer.ShipToAddressID = ""

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)

	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")

	var validation *club.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "address", validation.Field)
	assert.Empty(t, f.provider.created)
}

func TestComplete_UnqualifiedCustomerRejected(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 500_000)
	draft := completeDraft(tenantID, tier)

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)
	f.tiers.On("FindByID", ctx, tenantID, tier.ID).Return(tier, nil)

	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")

	var validation *club.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "tier", validation.Field)
	assert.Empty(t, f.provider.created)
}

func TestComplete_RemoteFailureKeepsDraft(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 0)
	draft := completeDraft(tenantID, tier)
	f.provider.err = crm.ErrProviderUnavailable

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)
	f.tiers.On("FindByID", ctx, tenantID, tier.ID).Return(tier, nil)

	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")
	require.ErrorIs(t, err, crm.ErrProviderUnavailable)

	// The draft survives so the client can retry with the same ref.
	f.drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.enrollments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestComplete_RetryReusesClientRef(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 0)
	draft := completeDraft(tenantID, tier)

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)
	f.tiers.On("FindByID", ctx, tenantID, tier.ID).Return(tier, nil)

	// First attempt dies at the provider.
	f.provider.err = crm.ErrProviderUnavailable
	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")
	require.Error(t, err)

	// Retry succeeds and sends the same client reference, so the
	// platform can deduplicate if the first call actually landed.
	f.provider.err = nil
	f.customers.On("FindByExternalID", ctx, tenantID, "cust-1").Return(nil, club.ErrCustomerNotFound)
	f.customers.On("Save", ctx, mock.AnythingOfType("*club.Customer")).Return(nil)
	f.enrollments.On("Save", ctx, mock.AnythingOfType("*club.Enrollment")).Return(nil)
	f.loyalty.On("FindForTenant", ctx, tenantID).Return(nil, club.ErrNotFound)
	f.drafts.On("Delete", ctx, tenantID, "sess-1").Return(nil)

	_, err = f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")
	require.NoError(t, err)

	require.Len(t, f.provider.created, 1)
	assert.Equal(t, draft.ClientRef, f.provider.created[0].ClientRef)
}

func TestComplete_ExistingCustomerIsRefreshed(t *testing.T) {
	f := newCompletionFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	tier := activeTier(tenantID, "Gold", 0)
	draft := completeDraft(tenantID, tier)
	existing := club.NewCustomer(tenantID, "cust-1", "old@example.com", "Morgan", "Vintner")

	f.drafts.On("Find", ctx, tenantID, "sess-1").Return(draft, nil)
	f.tiers.On("FindByID", ctx, tenantID, tier.ID).Return(tier, nil)
	f.customers.On("FindByExternalID", ctx, tenantID, "cust-1").Return(existing, nil)
	f.customers.On("Save", ctx, mock.MatchedBy(func(c *club.Customer) bool {
		return c.ID == existing.ID && c.Email == "m@example.com" && c.LTVCents == 100_000
	})).Return(nil)
	f.enrollments.On("Save", ctx, mock.AnythingOfType("*club.Enrollment")).Return(nil)
	f.loyalty.On("FindForTenant", ctx, tenantID).Return(nil, club.ErrNotFound)
	f.drafts.On("Delete", ctx, tenantID, "sess-1").Return(nil)

	_, err := f.service.Complete(ctx, tenantID, crm.PlatformCommerce7, "sess-1")
	require.NoError(t, err)

	f.customers.AssertExpectations(t)
	assert.Empty(t, f.bonus.awards)
}
