package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/promotion"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Adapter implements the CRMProvider interface for the Shopify platform.
// Price rules, segments and webhooks use the Admin REST API; memberships
// and loyalty go through the companion app paths on the same host.
type Adapter struct {
	config     *Config
	codec      Codec
	httpClient *http.Client

	// tenantConfigs stores per-tenant configurations
	tenantConfigs map[uuid.UUID]*Config
	mu            sync.RWMutex // Protects tenantConfigs map access
}

var _ crm.CRMProvider = (*Adapter)(nil)

// NewAdapter creates a Shopify adapter with the given default configuration
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
	return crm.PlatformShopify
}

// ---------------------------------------------------------------------------
// Club Operations
// ---------------------------------------------------------------------------

// UpsertClub creates or updates the customer segment backing a tier and
// returns its id. Price rules reference the segment for availability.
func (a *Adapter) UpsertClub(ctx context.Context, tenantID uuid.UUID, club crm.ClubUpsert) (string, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	payload := segmentEnvelope{Segment: SegmentPayload{
		Name:  club.Name,
		Query: fmt.Sprintf("club_tier = '%s'", club.Name),
	}}

	var body []byte
	if club.ExternalID == "" {
		body, err = a.doRequest(ctx, config, http.MethodPost, config.basePath()+"/segments.json", payload)
	} else {
		id, parseErr := parseResourceID(club.ExternalID)
		if parseErr != nil {
			return "", parseErr
		}
		payload.Segment.ID = id
		body, err = a.doRequest(ctx, config, http.MethodPut, config.basePath()+"/segments/"+formatResourceID(id)+".json", payload)
	}
	if err != nil {
		return "", err
	}

	var saved segmentEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.Segment.ID == 0 {
		return "", fmt.Errorf("%w: segment response missing id", crm.ErrInvalidResponse)
	}
	return formatResourceID(saved.Segment.ID), nil
}

// DeleteClub removes the customer segment backing a tier
func (a *Adapter) DeleteClub(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	id, err := parseResourceID(externalID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, config.basePath()+"/segments/"+formatResourceID(id)+".json", nil)
	return err
}

// ---------------------------------------------------------------------------
// Promotion Operations
// ---------------------------------------------------------------------------

// CreatePromotion creates a segment-scoped price rule and returns the
// canonical form of what Shopify stored
func (a *Adapter) CreatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}

	payload, err := a.encodeWithClub(d, clubExternalID)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, config, http.MethodPost, config.basePath()+"/price_rules.json", priceRuleEnvelope{PriceRule: *payload})
	if err != nil {
		return nil, err
	}
	return a.decodePriceRuleBody(ctx, config, body)
}

// UpdatePromotion updates an existing price rule in place
func (a *Adapter) UpdatePromotion(ctx context.Context, tenantID uuid.UUID, d *promotion.Discount, clubExternalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}
	if d.ExternalID == "" {
		return nil, crm.ErrNotFound
	}

	payload, err := a.encodeWithClub(d, clubExternalID)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, config, http.MethodPut, config.basePath()+"/price_rules/"+d.ExternalID+".json", priceRuleEnvelope{PriceRule: *payload})
	if err != nil {
		return nil, err
	}
	return a.decodePriceRuleBody(ctx, config, body)
}

// DeletePromotion removes a price rule
func (a *Adapter) DeletePromotion(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, config.basePath()+"/price_rules/"+externalID+".json", nil)
	return err
}

// GetPromotion fetches a price rule by external id
func (a *Adapter) GetPromotion(ctx context.Context, tenantID uuid.UUID, externalID string) (*promotion.Discount, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, config, http.MethodGet, config.basePath()+"/price_rules/"+externalID+".json", nil)
	if err != nil {
		return nil, err
	}
	return a.decodePriceRuleBody(ctx, config, body)
}

// encodeWithClub encodes a discount and scopes it to the club's segment
func (a *Adapter) encodeWithClub(d *promotion.Discount, clubExternalID string) (*PriceRulePayload, error) {
	payload, err := a.codec.EncodePriceRule(d)
	if err != nil {
		return nil, err
	}
	if clubExternalID != "" {
		segID, err := parseResourceID(clubExternalID)
		if err != nil {
			return nil, err
		}
		payload.PrerequisiteSegmentIDs = []int64{segID}
	}
	return payload, nil
}

func (a *Adapter) decodePriceRuleBody(ctx context.Context, config *Config, body []byte) (*promotion.Discount, error) {
	var saved priceRuleEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return a.codec.DecodePriceRule(ctx, &saved.PriceRule, a.resolveTitle(config))
}

// resolveTitle returns a title resolver backed by the product endpoint.
// Lookups are best effort; the codec keeps bare ids when one fails.
func (a *Adapter) resolveTitle(config *Config) TitleResolver {
	return func(ctx context.Context, id int64) (string, error) {
		body, err := a.doRequest(ctx, config, http.MethodGet, config.basePath()+"/products/"+formatResourceID(id)+".json", nil)
		if err != nil {
			return "", err
		}
		var p productEnvelope
		if err := json.Unmarshal(body, &p); err != nil {
			return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
		}
		return p.Product.Title, nil
	}
}

// ---------------------------------------------------------------------------
// Loyalty Operations
// ---------------------------------------------------------------------------

// CreateLoyaltyTier creates a companion loyalty tier and returns its id
func (a *Adapter) CreateLoyaltyTier(ctx context.Context, tenantID uuid.UUID, tier crm.LoyaltyTierCreate) (string, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	payload := loyaltyTierEnvelope{LoyaltyTier: LoyaltyTierPayload{
		Name:             tier.Name,
		MinLifetimeValue: centsToDollars(tier.MinLTVCents),
		PointsPerDollar:  tier.PointsPerDollar,
	}}

	body, err := a.doRequest(ctx, config, http.MethodPost, "/apps/club/loyalty_tiers.json", payload)
	if err != nil {
		return "", err
	}

	var saved loyaltyTierEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.LoyaltyTier.ID == 0 {
		return "", fmt.Errorf("%w: loyalty tier response missing id", crm.ErrInvalidResponse)
	}
	return formatResourceID(saved.LoyaltyTier.ID), nil
}

// DeleteLoyaltyTier removes a companion loyalty tier
func (a *Adapter) DeleteLoyaltyTier(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	id, err := parseResourceID(externalID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, "/apps/club/loyalty_tiers/"+formatResourceID(id)+".json", nil)
	return err
}

// PreloadBonusPoints credits loyalty points to a customer
func (a *Adapter) PreloadBonusPoints(ctx context.Context, tenantID uuid.UUID, customerExternalID string, points int64, label string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	customerID, err := parseResourceID(customerExternalID)
	if err != nil {
		return err
	}

	payload := LoyaltyTransactionPayload{
		CustomerID: customerID,
		Points:     points,
		Notes:      label,
	}
	_, err = a.doRequest(ctx, config, http.MethodPost, "/apps/club/loyalty_transactions.json", payload)
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
	customerID, err := parseResourceID(m.CustomerExternalID)
	if err != nil {
		return "", err
	}
	segmentID, err := parseResourceID(m.ClubExternalID)
	if err != nil {
		return "", err
	}

	payload := membershipEnvelope{Membership: MembershipPayload{
		CustomerID:      customerID,
		SegmentID:       segmentID,
		BillToAddressID: m.BillToAddressID,
		ShipToAddressID: m.ShipToAddressID,
		PaymentMethodID: m.PaymentMethodID,
		SignupDate:      m.SignupDate.UTC().Format(time.RFC3339),
		ClientRef:       m.ClientRef,
	}}

	body, err := a.doRequest(ctx, config, http.MethodPost, "/apps/club/memberships.json", payload)
	if err != nil {
		return "", err
	}

	var saved membershipEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		return "", fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	if saved.Membership.ID == 0 {
		return "", fmt.Errorf("%w: membership response missing id", crm.ErrInvalidResponse)
	}
	return formatResourceID(saved.Membership.ID), nil
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

	body, err := a.doRequest(ctx, config, http.MethodGet, config.basePath()+"/webhooks.json", nil)
	if err != nil {
		return nil, err
	}

	var list webhookListEnvelope
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}

	hooks := make([]crm.Webhook, 0, len(list.Webhooks))
	for _, p := range list.Webhooks {
		hooks = append(hooks, crm.Webhook{
			ID:      strconv.FormatInt(p.ID, 10),
			Topic:   p.Topic,
			Address: p.Address,
		})
	}
	return hooks, nil
}

// RegisterWebhook subscribes an address to a topic
func (a *Adapter) RegisterWebhook(ctx context.Context, tenantID uuid.UUID, topic, address string) (crm.Webhook, error) {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return crm.Webhook{}, err
	}

	payload := webhookEnvelope{Webhook: WebhookPayload{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}}

	body, err := a.doRequest(ctx, config, http.MethodPost, config.basePath()+"/webhooks.json", payload)
	if err != nil {
		return crm.Webhook{}, err
	}

	var saved webhookEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		return crm.Webhook{}, fmt.Errorf("%w: %v", crm.ErrInvalidResponse, err)
	}
	return crm.Webhook{
		ID:      strconv.FormatInt(saved.Webhook.ID, 10),
		Topic:   saved.Webhook.Topic,
		Address: saved.Webhook.Address,
	}, nil
}

// DeleteWebhook removes a webhook subscription
func (a *Adapter) DeleteWebhook(ctx context.Context, tenantID uuid.UUID, webhookID string) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}
	_, err = a.doRequest(ctx, config, http.MethodDelete, config.basePath()+"/webhooks/"+webhookID+".json", nil)
	return err
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated request against the shop host
func (a *Adapter) doRequest(ctx context.Context, config *Config, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, config.APIBaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", config.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crm.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", crm.ErrNotFound, method, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr APIError
		if unmarshalErr := json.Unmarshal(body, &apiErr); unmarshalErr == nil && apiErr.Errors != nil {
			return nil, fmt.Errorf("%w: HTTP %d: %v", crm.ErrProviderRequestFailed, resp.StatusCode, apiErr.Errors)
		}
		return nil, fmt.Errorf("%w: HTTP %d", crm.ErrProviderRequestFailed, resp.StatusCode)
	}

	return body, nil
}
