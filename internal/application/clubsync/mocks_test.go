package clubsync

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/promotion"
)

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

// MockTierPromotionRepository is a mock implementation of club.TierPromotionRepository
type MockTierPromotionRepository struct {
	mock.Mock
}

func (m *MockTierPromotionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*club.TierPromotion, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.TierPromotion), args.Error(1)
}

func (m *MockTierPromotionRepository) FindByTier(ctx context.Context, tenantID, tierID uuid.UUID) ([]*club.TierPromotion, error) {
	args := m.Called(ctx, tenantID, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*club.TierPromotion), args.Error(1)
}

func (m *MockTierPromotionRepository) Save(ctx context.Context, p *club.TierPromotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockTierPromotionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTierPromotionRepository) DeleteByTier(ctx context.Context, tenantID, tierID uuid.UUID) error {
	args := m.Called(ctx, tenantID, tierID)
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

// MockCRMProvider is a mock implementation of crm.CRMProvider
type MockCRMProvider struct {
	mock.Mock
}

func (m *MockCRMProvider) PlatformCode() crm.PlatformCode {
	args := m.Called()
	return args.Get(0).(crm.PlatformCode)
}

func (m *MockCRMProvider) UpsertClub(ctx context.Context, tenantID uuid.UUID, c crm.ClubUpsert) (string, error) {
	args := m.Called(ctx, tenantID, c)
	return args.String(0), args.Error(1)
}

func (m *MockCRMProvider) DeleteClub(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	args := m.Called(ctx, tenantID, externalID)
	return args.Error(0)
}

func (m *MockCRMProvider) CreatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	args := m.Called(ctx, tenantID, d, clubExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Discount), args.Error(1)
}

func (m *MockCRMProvider) UpdatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	args := m.Called(ctx, tenantID, d, clubExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Discount), args.Error(1)
}

func (m *MockCRMProvider) DeletePromotion(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	args := m.Called(ctx, tenantID, externalID)
	return args.Error(0)
}

func (m *MockCRMProvider) GetPromotion(ctx context.Context, tenantID uuid.UUID, externalID string) (*promotion.Discount, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Discount), args.Error(1)
}

func (m *MockCRMProvider) CreateLoyaltyTier(ctx context.Context, tenantID uuid.UUID, tier crm.LoyaltyTierCreate) (string, error) {
	args := m.Called(ctx, tenantID, tier)
	return args.String(0), args.Error(1)
}

func (m *MockCRMProvider) DeleteLoyaltyTier(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	args := m.Called(ctx, tenantID, externalID)
	return args.Error(0)
}

func (m *MockCRMProvider) CreateClubMembership(ctx context.Context, tenantID uuid.UUID, mc crm.MembershipCreate) (string, error) {
	args := m.Called(ctx, tenantID, mc)
	return args.String(0), args.Error(1)
}

func (m *MockCRMProvider) PreloadBonusPoints(ctx context.Context, tenantID uuid.UUID, customerExternalID string, points int64, label string) error {
	args := m.Called(ctx, tenantID, customerExternalID, points, label)
	return args.Error(0)
}

func (m *MockCRMProvider) ListWebhooks(ctx context.Context, tenantID uuid.UUID) ([]crm.Webhook, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Webhook), args.Error(1)
}

func (m *MockCRMProvider) RegisterWebhook(ctx context.Context, tenantID uuid.UUID, topic, address string) (crm.Webhook, error) {
	args := m.Called(ctx, tenantID, topic, address)
	return args.Get(0).(crm.Webhook), args.Error(1)
}

func (m *MockCRMProvider) DeleteWebhook(ctx context.Context, tenantID uuid.UUID, webhookID string) error {
	args := m.Called(ctx, tenantID, webhookID)
	return args.Error(0)
}

// staticFactory returns the same provider for every lookup
type staticFactory struct {
	provider crm.CRMProvider
}

func (f *staticFactory) Provider(ctx context.Context, tenantID uuid.UUID, code crm.PlatformCode) (crm.CRMProvider, error) {
	return f.provider, nil
}
