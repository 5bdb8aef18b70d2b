package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/infrastructure/auth"
	"github.com/cellarclub/backend/internal/infrastructure/logger"
	"github.com/cellarclub/backend/internal/interfaces/http/dto"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	SessionTenantKey = "session_tenant_id"
	SessionPlatform  = "session_platform"
	SessionIDKey     = "session_id"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// SessionMiddlewareConfig holds configuration for session token middleware
type SessionMiddlewareConfig struct {
	// Tokens is required for token verification
	Tokens *auth.SessionTokenService
	// SkipPaths are paths that don't require a session token
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require a session token
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultSessionConfig returns default session middleware configuration
func DefaultSessionConfig(tokens *auth.SessionTokenService) SessionMiddlewareConfig {
	return SessionMiddlewareConfig{
		Tokens: tokens,
		SkipPaths: []string{
			"/health",
			"/ping",
			"/api/v1/health",
			"/api/v1/ping",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhooks",
		},
	}
}

// SessionAuth creates session token authentication middleware
func SessionAuth(tokens *auth.SessionTokenService) gin.HandlerFunc {
	return SessionAuthWithConfig(DefaultSessionConfig(tokens))
}

// SessionAuthWithConfig creates session token middleware with custom config.
// Every authenticated request carries a short-lived token minted by the
// platform's embedded admin frontend; the middleware verifies it and exposes
// the tenant, platform, and wizard session identity to handlers.
func SessionAuthWithConfig(cfg SessionMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "missing token")
			return
		}

		claims, err := cfg.Tokens.Verify(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "session token verification failed")
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(SessionTenantKey, claims.TenantID)
		c.Set(SessionPlatform, claims.Platform)
		c.Set(SessionIDKey, claims.SessionID)

		// Propagate identity into the request context for the logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, log = logger.WithTenantID(ctx, log, claims.TenantID)
		if claims.SessionID != "" {
			ctx, _ = logger.WithSessionID(ctx, log, claims.SessionID)
		}
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("session token verified",
				zap.String("tenant_id", claims.TenantID),
				zap.String("platform", claims.Platform),
			)
		}

		c.Next()
	}
}

func handleAuthError(c *gin.Context, cfg SessionMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("session authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	errorMessage := "authentication required"

	switch err {
	case auth.ErrExpiredToken:
		code = dto.ErrCodeTokenExpired
		errorMessage = "session token has expired"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims:
		code = dto.ErrCodeTokenInvalid
		errorMessage = "invalid session token"
	case auth.ErrMissingTenantID:
		code = dto.ErrCodeTokenInvalid
		errorMessage = "session token is missing a tenant"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, errorMessage))
}

// GetSessionClaims retrieves session claims from gin.Context
func GetSessionClaims(c *gin.Context) *auth.SessionClaims {
	if claims, exists := c.Get(SessionClaimsKey); exists {
		if sc, ok := claims.(*auth.SessionClaims); ok {
			return sc
		}
	}
	return nil
}

// GetTenantID retrieves the tenant ID from session claims in context
func GetTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(SessionTenantKey); exists {
		if id, ok := tenantID.(string); ok {
			return id
		}
	}
	return ""
}

// GetPlatform retrieves the platform code from session claims in context
func GetPlatform(c *gin.Context) string {
	if platform, exists := c.Get(SessionPlatform); exists {
		if p, ok := platform.(string); ok {
			return p
		}
	}
	return ""
}

// GetSessionID retrieves the wizard session ID from session claims in context
func GetSessionID(c *gin.Context) string {
	if sessionID, exists := c.Get(SessionIDKey); exists {
		if id, ok := sessionID.(string); ok {
			return id
		}
	}
	return ""
}
