package commerce7

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/promotion"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Adapter implements the CRMProvider interface for the Commerce7 platform
type Adapter struct {
	config     *Config
	codec      Codec
	httpClient *http.Client

	// tenantConfigs stores per-tenant configurations
	tenantConfigs map[uuid.UUID]*Config
	mu            sync.RWMutex // Protects tenantConfigs map access
}

var _ crm.CRMProvider = (*Adapter)(nil)

// NewAdapter creates a Commerce7 adapter with the given default configuration
func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tenantConfigs: make(map[uuid.UUID]*Config),
	}, nil
}

// SetTenantConfig sets the configuration for a specific tenant
func (a *Adapter) SetTenantConfig(tenantID uuid.UUID, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tenantConfigs[tenantID] = config
	return nil
}

// getTenantConfig retrieves the configuration for a tenant
func (a *Adapter) getTenantConfig(tenantID uuid.UUID) (*Config, error) {
	a.mu.RLock()
	config, ok := a.tenantConfigs[tenantID]
	a.mu.RUnlock()
	if ok {
		return config, nil
	}
	if a.config != nil {
		return a.config, nil
	}
	return nil, crm.ErrProviderNotConfigured
}

// PlatformCode returns the platform code this adapter handles
func (a *Adapter) PlatformCode() crm.PlatformCode {
	return crm.PlatformCommerce7
}

// ---------------------------------------------------------------------------
// Club Operations
// ---------------------------------------------------------------------------

// UpsertClub creates or updates the Commerce7 club for a tier
func (a *Adapter) UpsertClub(ctx context.Context, tenantID uuid.UUID, club crm.ClubUpsert) (string, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	payload := ClubPayload{
		Title:           club.Name,
		DurationMonths:  club.DurationMonths,
		MinimumPurchase: centsToDollars(club.MinPurchaseCents),
		StageOrder:      club.StageOrder,
	}

	var body []byte
	if club.ExternalID == "" {
		body, err = a.doRequest(ctx, config, http.MethodPost, "/club", payload)
	} else {
		body, err = a.doRequest(ctx, config, http.MethodPut, "/club/"+url.PathEscape(club.ExternalID), payload)
	}
	if err != nil {
		return "", err
	}

	var saved ClubPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.ID == "" {
		return "", fmt.Errorf("%w: club response missing id", crm.ErrInvalidResponse)
	}
	return saved.ID, nil
}

// DeleteClub removes the Commerce7 club
func (a *Adapter) DeleteClub(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, "/club/"+url.PathEscape(externalID), nil)
	return err
}

// ---------------------------------------------------------------------------
// Promotion Operations
// ---------------------------------------------------------------------------

// CreatePromotion creates a club-scoped promotion and returns the canonical
// form of what Commerce7 stored
func (a *Adapter) CreatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}

	payload, err := a.codec.EncodePromotion(d)
	if err != nil {
		return nil, err
	}
	if clubExternalID != "" {
		payload.AvailableToClubIDs = []string{clubExternalID}
	}

	body, err := a.doRequest(ctx, config, http.MethodPost, "/promotion", payload)
	if err != nil {
		return nil, err
	}

	var saved PromotionPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return a.codec.DecodePromotion(ctx, &saved, a.resolveTitle(config))
}

// UpdatePromotion updates an existing promotion in place
func (a *Adapter) UpdatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}
	if d.ExternalID == "" {
		return nil, crm.ErrNotFound
	}

	payload, err := a.codec.EncodePromotion(d)
	if err != nil {
		return nil, err
	}
	if clubExternalID != "" {
		payload.AvailableToClubIDs = []string{clubExternalID}
	}

	body, err := a.doRequest(ctx, config, http.MethodPut, "/promotion/"+url.PathEscape(d.ExternalID), payload)
	if err != nil {
		return nil, err
	}

	var saved PromotionPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return a.codec.DecodePromotion(ctx, &saved, a.resolveTitle(config))
}

// DeletePromotion removes a promotion
func (a *Adapter) DeletePromotion(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, "/promotion/"+url.PathEscape(externalID), nil)
	return err
}

// GetPromotion fetches a promotion by external id
func (a *Adapter) GetPromotion(ctx context.Context, tenantID uuid.UUID, externalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, config, http.MethodGet, "/promotion/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, err
	}

	var payload PromotionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return a.codec.DecodePromotion(ctx, &payload, a.resolveTitle(config))
}

// resolveTitle returns a title resolver backed by the product endpoint.
// Lookups are best effort; the codec keeps bare ids when one fails.
func (a *Adapter) resolveTitle(config *Config) TitleResolver {
	return func(ctx context.Context, externalID string) (string, error) {
		body, err := a.doRequest(ctx, config, http.MethodGet, "/product/"+url.PathEscape(externalID), nil)
		if err != nil {
			return "", err
		}
		var p ProductPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return p.Title, nil
	}
}

// ---------------------------------------------------------------------------
// Loyalty Operations
// ---------------------------------------------------------------------------

// CreateLoyaltyTier creates a Commerce7 loyalty tier and returns its id
func (a *Adapter) CreateLoyaltyTier(ctx context.Context, tenantID uuid.UUID, tier crm.LoyaltyTierCreate) (string, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	payload := LoyaltyTierPayload{
		Title:                tier.Name,
		MinimumLifetimeValue: centsToDollars(tier.MinLTVCents),
		PointsPerDollar:      tier.PointsPerDollar,
	}

	body, err := a.doRequest(ctx, config, http.MethodPost, "/loyalty-tier", payload)
	if err != nil {
		return "", err
	}

	var saved LoyaltyTierPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.ID == "" {
		return "", fmt.Errorf("%w: loyalty tier response missing id", crm.ErrInvalidResponse)
	}
	return saved.ID, nil
}

// DeleteLoyaltyTier removes a Commerce7 loyalty tier
func (a *Adapter) DeleteLoyaltyTier(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, "/loyalty-tier/"+url.PathEscape(externalID), nil)
	return err
}

// PreloadBonusPoints credits loyalty points to a customer
func (a *Adapter) PreloadBonusPoints(ctx context.Context, tenantID uuid.UUID, customerExternalID string, points int64, label string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	payload := LoyaltyTransactionPayload{
		CustomerID: customerExternalID,
		Points:     points,
		Notes:      label,
	}
	_, err = a.doRequest(ctx, config, http.MethodPost, "/loyalty-transaction", payload)
	return err
}

// ---------------------------------------------------------------------------
// Membership Operations
// ---------------------------------------------------------------------------

// CreateClubMembership performs the irreversible membership creation.
// The client reference is forwarded so retries of the same enrollment do
// not create a second membership.
func (a *Adapter) CreateClubMembership(ctx context.Context, tenantID uuid.UUID, m crm.MembershipCreate) (string, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	payload := MembershipPayload{
		CustomerID:      m.CustomerExternalID,
		ClubID:          m.ClubExternalID,
		BillToAddressID: m.BillToAddressID,
		ShipToAddressID: m.ShipToAddressID,
		PaymentMethodID: m.PaymentMethodID,
		SignupDate:      m.SignupDate.UTC().Format(time.RFC3339),
		ExternalRef:     m.ClientRef,
	}

	body, err := a.doRequest(ctx, config, http.MethodPost, "/club-membership", payload)
	if err != nil {
		return "", err
	}

	var saved MembershipPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.ID == "" {
		return "", fmt.Errorf("%w: membership response missing id", crm.ErrInvalidResponse)
	}
	return saved.ID, nil
}

// ---------------------------------------------------------------------------
// Webhook Operations
// ---------------------------------------------------------------------------

// ListWebhooks returns the registered webhook subscriptions
func (a *Adapter) ListWebhooks(ctx context.Context, tenantID uuid.UUID) ([]crm.Webhook, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, config, http.MethodGet, "/webhook", nil)
	if err != nil {
		return nil, err
	}

	payloads, err := decodeList[WebhookPayload](body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}

	hooks := make([]crm.Webhook, 0, len(payloads))
	for _, p := range payloads {
		hooks = append(hooks, crm.Webhook{
			ID:      p.ID,
			Topic:   p.Object + "/" + p.Action,
			Address: p.URL,
		})
	}
	return hooks, nil
}

// RegisterWebhook subscribes an address to a topic. Topics use the
// "object/action" form, e.g. "app/uninstalled".
func (a *Adapter) RegisterWebhook(ctx context.Context, tenantID uuid.UUID, topic, address string) (crm.Webhook, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return crm.Webhook{}, err
	}

	object, action, ok := splitTopic(topic)
	if !ok {
		return crm.Webhook{}, fmt.Errorf("%w: malformed webhook topic %q", crm.ErrProviderRequestFailed, topic)
	}

	payload := WebhookPayload{Object: object, Action: action, URL: address}
	body, err := a.doRequest(ctx, config, http.MethodPost, "/webhook", payload)
	if err != nil {
		return crm.Webhook{}, err
	}

	var saved WebhookPayload
	if err := json.Unmarshal(body, &saved); err != nil {
		return crm.Webhook{}, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return crm.Webhook{
		ID:      saved.ID,
		Topic:   saved.Object + "/" + saved.Action,
		Address: saved.URL,
	}, nil
}

// DeleteWebhook removes a webhook subscription
func (a *Adapter) DeleteWebhook(ctx context.Context, tenantID uuid.UUID, webhookID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, "/webhook/"+url.PathEscape(webhookID), nil)
	return err
}

// splitTopic splits an "object/action" topic string
func splitTopic(topic string) (object, action string, ok bool) {
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			if i == 0 || i == len(topic)-1 {
				return "", "", false
			}
			return topic[:i], topic[i+1:], true
		}
	}
	return "", "", false
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated request against the Commerce7 API
func (a *Adapter) doRequest(ctx context.Context, config *Config, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("commerce7: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, config.APIBaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("commerce7: failed to create request: %w", err)
	}

	req.SetBasicAuth(config.AppID, config.AppSecret)
	req.Header.Set("Tenant", config.TenantShop)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("commerce7: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", crm.ErrNotFound, method, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr APIError
		if unmarshalErr := json.Unmarshal(body, &apiErr); unmarshalErr == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%w: HTTP %d: %s", crm.ErrProviderRequestFailed, resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderRequestFailed, resp.StatusCode)
	}

	return body, nil
}
