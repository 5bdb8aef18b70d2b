package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session token has expired")
	ErrTokenNotYetValid = errors.New("session token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid session token claims")
	ErrMissingTenantID  = errors.New("missing tenant claim in session token")
)

// SessionClaims are the claims carried by an embedded-app session token.
// The platform's admin frontend mints one per request; the backend only
// verifies and reads it.
type SessionClaims struct {
	jwt.RegisteredClaims
	// TenantID identifies the installed shop or winery
	TenantID string `json:"tenant_id"`
	// Platform is the platform code, e.g. "commerce7" or "shopify"
	Platform string `json:"platform,omitempty"`
	// SessionID keys the enrollment wizard draft for this admin session
	SessionID string `json:"session_id,omitempty"`
}

// SessionTokenService verifies embedded-app session tokens
type SessionTokenService struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewSessionTokenService creates a new SessionTokenService
func NewSessionTokenService(cfg config.SessionConfig) *SessionTokenService {
	return &SessionTokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
	}
}

// Verify validates a session token and returns its claims
func (s *SessionTokenService) Verify(tokenString string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(s.leeway),
		jwt.WithIssuedAt(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if _, err := uuid.Parse(claims.TenantID); err != nil {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// TenantUUID parses the tenant claim as a UUID. Verify has already checked
// that it parses.
func (c *SessionClaims) TenantUUID() uuid.UUID {
	id, _ := uuid.Parse(c.TenantID)
	return id
}

// Mint signs a session token for the given claims. Production tokens come
// from the platform frontend; this exists for local development and tests.
func (s *SessionTokenService) Mint(tenantID uuid.UUID, platform, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   tenantID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:  tenantID.String(),
		Platform:  platform,
		SessionID: sessionID,
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
