package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/interfaces/http/dto"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
)

// Platform signature headers for inbound webhooks
const (
	shopifyHmacHeader   = "X-Shopify-Hmac-Sha256"
	commerce7HmacHeader = "X-C7-Hmac-Sha256"
)

// WebhookHandler handles inbound platform webhooks and the authenticated
// webhook management passthrough. Inbound calls are unauthenticated and
// rely on the HMAC signature instead of a session token.
type WebhookHandler struct {
	BaseHandler
	factory         crm.ProviderFactory
	tenantData      club.TenantDataRepository
	shopifySecret   string
	commerce7Secret string
	logger          *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(factory crm.ProviderFactory, tenantData club.TenantDataRepository, shopifySecret, commerce7Secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		factory:         factory,
		tenantData:      tenantData,
		shopifySecret:   shopifySecret,
		commerce7Secret: commerce7Secret,
		logger:          logger,
	}
}

// RegisterWebhookRequest subscribes a delivery address to a platform topic
type RegisterWebhookRequest struct {
	Topic   string `json:"topic" binding:"required,max=200"`
	Address string `json:"address" binding:"required,url"`
}

// ListWebhooks handles GET /api/v1/club/webhooks
func (h *WebhookHandler) ListWebhooks(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	platform, err := getPlatform(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	provider, err := h.factory.Provider(c.Request.Context(), tenantID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	webhooks, err := provider.ListWebhooks(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, webhooks)
}

// RegisterWebhook handles POST /api/v1/club/webhooks
func (h *WebhookHandler) RegisterWebhook(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	platform, err := getPlatform(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req RegisterWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	provider, err := h.factory.Provider(c.Request.Context(), tenantID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	webhook, err := provider.RegisterWebhook(c.Request.Context(), tenantID, req.Topic, req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, webhook)
}

// DeleteWebhook handles DELETE /api/v1/club/webhooks/:id
func (h *WebhookHandler) DeleteWebhook(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	platform, err := getPlatform(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	webhookID := c.Param("id")
	if webhookID == "" {
		h.BadRequest(c, "webhook id is required")
		return
	}

	provider, err := h.factory.Provider(c.Request.Context(), tenantID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := provider.DeleteWebhook(c.Request.Context(), tenantID, webhookID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Uninstalled handles POST /api/v1/webhooks/:platform/:tenant_id/uninstalled
// The platform signs the raw body with the shared webhook secret; a valid
// signature authorizes purging everything the tenant owns.
func (h *WebhookHandler) Uninstalled(c *gin.Context) {
	platform, err := crm.ParsePlatformCode(c.Param("platform"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tenantID, err := uuid.Parse(c.Param("tenant_id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "unable to read request body")
		return
	}

	var secret, header string
	switch platform {
	case crm.PlatformShopify:
		secret, header = h.shopifySecret, shopifyHmacHeader
	case crm.PlatformCommerce7:
		secret, header = h.commerce7Secret, commerce7HmacHeader
	}
	if secret == "" {
		h.ErrorWithCode(c, dto.ErrCodeProviderNotConfigured, "webhook secret is not configured")
		return
	}

	if !verifySignature(body, secret, c.GetHeader(header)) {
		h.logger.Warn("rejected webhook with invalid signature",
			zap.String("platform", platform.String()),
			zap.String("tenant_id", tenantID.String()),
		)
		h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, "webhook signature verification failed")
		return
	}

	if err := h.tenantData.PurgeTenant(c.Request.Context(), tenantID); err != nil {
		h.logger.Error("tenant purge failed after uninstall",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		h.InternalError(c, "tenant data purge failed")
		return
	}

	h.logger.Info("purged tenant data after uninstall",
		zap.String("platform", platform.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	h.NoContent(c)
}

// RegisterRoutes registers the webhook management and inbound routes.
// The inbound uninstall route must be excluded from session auth; it is
// protected by the HMAC signature instead.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := rg.Group("/club/webhooks")
	{
		manage.GET("", h.ListWebhooks)
		manage.POST("", h.RegisterWebhook)
		manage.DELETE("/:id", h.DeleteWebhook)
	}

	rg.POST("/webhooks/:platform/:tenant_id/uninstalled", h.Uninstalled)
}

// verifySignature checks a base64 HMAC-SHA256 signature over the raw body
func verifySignature(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
