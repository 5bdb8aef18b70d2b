package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cellarclub/backend/internal/application/clubsync"
	appenrollment "github.com/cellarclub/backend/internal/application/enrollment"
	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// withSession injects session claims the way the auth middleware would
func withSession(tenantID uuid.UUID, platform, sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionTenantKey, tenantID.String())
		c.Set(middleware.SessionPlatform, platform)
		c.Set(middleware.SessionIDKey, sessionID)
		c.Next()
	}
}

// MockSetupService is a mock implementation of ClubSetupService
type MockSetupService struct {
	mock.Mock
}

func (m *MockSetupService) ApplyTierSet(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, req clubsync.SetupRequest) (*clubsync.SetupResult, error) {
	args := m.Called(ctx, tenantID, platform, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clubsync.SetupResult), args.Error(1)
}

func (m *MockSetupService) ListTiers(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode) ([]clubsync.TierView, error) {
	args := m.Called(ctx, tenantID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clubsync.TierView), args.Error(1)
}

// MockSideEffectLogRepository is a mock implementation of club.SideEffectLogRepository
type MockSideEffectLogRepository struct {
	mock.Mock
}

func (m *MockSideEffectLogRepository) Save(ctx context.Context, entry *club.SideEffectLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSideEffectLogRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*club.SideEffectLog, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*club.SideEffectLog), args.Error(1)
}

// MockDraftWizardService is a mock implementation of DraftWizardService
type MockDraftWizardService struct {
	mock.Mock
}

func (m *MockDraftWizardService) GetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) SelectCustomer(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.SelectCustomerRequest) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) SelectTier(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.SelectTierRequest) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) VerifyAddress(ctx context.Context, tenantID uuid.UUID, sessionID string) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) VerifyPayment(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.VerifyPaymentRequest) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) SetCommunicationPreference(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.CommunicationRequest) (*appenrollment.DraftResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.DraftResponse), args.Error(1)
}

func (m *MockDraftWizardService) ResetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Error(0)
}

// MockCompleter is a mock implementation of EnrollmentCompleter
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, sessionID string) (*appenrollment.EnrollmentResponse, error) {
	args := m.Called(ctx, tenantID, platform, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appenrollment.EnrollmentResponse), args.Error(1)
}

// MockTenantDataRepository is a mock implementation of club.TenantDataRepository
type MockTenantDataRepository struct {
	mock.Mock
}

func (m *MockTenantDataRepository) PurgeTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// webhookProvider implements crm.CRMProvider for webhook passthrough tests
type webhookProvider struct {
	crm.CRMProvider
	webhooks   []crm.Webhook
	registered []crm.Webhook
	err        error
}

func (p *webhookProvider) ListWebhooks(ctx context.Context, tenantID uuid.UUID) ([]crm.Webhook, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.webhooks, nil
}

func (p *webhookProvider) RegisterWebhook(ctx context.Context, tenantID uuid.UUID, topic, address string) (crm.Webhook, error) {
	if p.err != nil {
		return crm.Webhook{}, p.err
	}
	wh := crm.Webhook{ID: "wh-1", Topic: topic, Address: address}
	p.registered = append(p.registered, wh)
	return wh, nil
}

func (p *webhookProvider) DeleteWebhook(ctx context.Context, tenantID uuid.UUID, webhookID string) error {
	return p.err
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
