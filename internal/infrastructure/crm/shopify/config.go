package shopify

import "errors"

// Config holds configuration for the Shopify Admin API integration
type Config struct {
	// ShopDomain is the myshopify.com domain for the store
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion selects the Admin API version, e.g. "2026-01"
	APIVersion string
	// APIBaseURL overrides the shop URL, used in tests
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// DefaultAPIVersion is the Admin API version the adapter is built against
const DefaultAPIVersion = "2026-01"

// Errors for Shopify configuration
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// NewConfig creates a Shopify configuration with defaults
func NewConfig(shopDomain, accessToken string) *Config {
	return &Config{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APIVersion:     DefaultAPIVersion,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shopify configuration and fills defaults
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://" + c.ShopDomain
	}
	return nil
}

// basePath returns the versioned Admin API path prefix
func (c *Config) basePath() string {
	return "/admin/api/" + c.APIVersion
}
