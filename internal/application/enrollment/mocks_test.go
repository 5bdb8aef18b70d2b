package enrollment

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/enrollment"
)

// MockDraftRepository is a mock implementation of enrollment.DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Find(ctx context.Context, tenantID uuid.UUID, sessionID string) (*enrollment.Draft, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Draft), args.Error(1)
}

func (m *MockDraftRepository) Save(ctx context.Context, d *enrollment.Draft) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, tenantID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Error(0)
}

// MockTierRepository is a mock implementation of club.TierRepository
type MockTierRepository struct {
	mock.Mock
}

func (m *MockTierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.Tier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Tier), args.Error(1)
}

func (m *MockTierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*club.Tier, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*club.Tier), args.Error(1)
}

func (m *MockTierRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*club.Tier, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*club.Tier), args.Error(1)
}

func (m *MockTierRepository) Save(ctx context.Context, tier *club.Tier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockTierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of club.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*club.Customer, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *club.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockEnrollmentRepository is a mock implementation of club.EnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.Enrollment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*club.Enrollment, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*club.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) Save(ctx context.Context, e *club.Enrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockLoyaltyConfigRepository is a mock implementation of club.LoyaltyConfigRepository
type MockLoyaltyConfigRepository struct {
	mock.Mock
}

func (m *MockLoyaltyConfigRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*club.LoyaltyConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.LoyaltyConfig), args.Error(1)
}

func (m *MockLoyaltyConfigRepository) Save(ctx context.Context, cfg *club.LoyaltyConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// membershipProvider implements crm.CRMProvider for completion tests;
// only the membership path is live.
type membershipProvider struct {
	crm.CRMProvider
	err      error
	created  []crm.MembershipCreate
	returnID string
}

func (p *membershipProvider) CreateClubMembership(ctx context.Context, tenantID uuid.UUID, mc crm.MembershipCreate) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, mc)
	return p.returnID, nil
}

// staticFactory returns the same provider for every lookup
type staticFactory struct {
	provider crm.CRMProvider
	err      error
}

func (f *staticFactory) Provider(ctx context.Context, tenantID uuid.UUID, code crm.PlatformCode) (crm.CRMProvider, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

// bonusRecorder captures welcome bonus dispatches
type bonusRecorder struct {
	awards []int64
}

func (b *bonusRecorder) Award(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, customerExternalID string, points int64, label string) {
	b.awards = append(b.awards, points)
}
