package commerce7

import "errors"

// Config holds configuration for the Commerce7 API integration
type Config struct {
	// AppID is the application id from the Commerce7 dev portal
	AppID string
	// AppSecret is the application secret, used as the basic-auth password
	AppSecret string
	// TenantShop is the Commerce7 tenant identifier sent on every request
	TenantShop string
	// APIBaseURL is the base URL for the Commerce7 API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Commerce7ProductionAPIURL is the production API endpoint
const Commerce7ProductionAPIURL = "https://api.commerce7.com/v1"

// Errors for Commerce7 configuration
var (
	ErrConfigMissingAppID      = errors.New("commerce7: app id is required")
	ErrConfigMissingAppSecret  = errors.New("commerce7: app secret is required")
	ErrConfigMissingTenantShop = errors.New("commerce7: tenant shop is required")
)

// NewConfig creates a Commerce7 configuration with defaults
func NewConfig(appID, appSecret, tenantShop string) *Config {
	return &Config{
		AppID:          appID,
		AppSecret:      appSecret,
		TenantShop:     tenantShop,
		APIBaseURL:     Commerce7ProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Commerce7 configuration and fills defaults
func (c *Config) Validate() error {
	if c.AppID == "" {
		return ErrConfigMissingAppID
	}
	if c.AppSecret == "" {
		return ErrConfigMissingAppSecret
	}
	if c.TenantShop == "" {
		return ErrConfigMissingTenantShop
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = Commerce7ProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
