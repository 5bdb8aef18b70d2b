package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appenrollment "github.com/cellarclub/backend/internal/application/enrollment"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
)

// DraftWizardService is the application surface for the enrollment wizard
type DraftWizardService interface {
	GetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) (*appenrollment.DraftResponse, error)
	SelectCustomer(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.SelectCustomerRequest) (*appenrollment.DraftResponse, error)
	SelectTier(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.SelectTierRequest) (*appenrollment.DraftResponse, error)
	VerifyAddress(ctx context.Context, tenantID uuid.UUID, sessionID string) (*appenrollment.DraftResponse, error)
	VerifyPayment(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.VerifyPaymentRequest) (*appenrollment.DraftResponse, error)
	SetCommunicationPreference(ctx context.Context, tenantID uuid.UUID, sessionID string, req appenrollment.CommunicationRequest) (*appenrollment.DraftResponse, error)
	ResetDraft(ctx context.Context, tenantID uuid.UUID, sessionID string) error
}

// EnrollmentCompleter is the application surface for enrollment completion
type EnrollmentCompleter interface {
	Complete(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, sessionID string) (*appenrollment.EnrollmentResponse, error)
}

// EnrollmentHandler handles the enrollment wizard and completion requests.
// The wizard session is identified by the session claim of the token, so
// every step operates on the caller's own draft.
type EnrollmentHandler struct {
	BaseHandler
	drafts    DraftWizardService
	completer EnrollmentCompleter
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(drafts DraftWizardService, completer EnrollmentCompleter) *EnrollmentHandler {
	return &EnrollmentHandler{drafts: drafts, completer: completer}
}

// sessionScope extracts the tenant and wizard session from the request
func (h *EnrollmentHandler) sessionScope(c *gin.Context) (uuid.UUID, string, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return uuid.Nil, "", false
	}
	sessionID, err := getSessionID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return uuid.Nil, "", false
	}
	return tenantID, sessionID, true
}

// GetDraft handles GET /api/v1/enrollment/draft
func (h *EnrollmentHandler) GetDraft(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	draft, err := h.drafts.GetDraft(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// SelectCustomer handles PUT /api/v1/enrollment/draft/customer
func (h *EnrollmentHandler) SelectCustomer(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req appenrollment.SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	draft, err := h.drafts.SelectCustomer(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// SelectTier handles PUT /api/v1/enrollment/draft/tier
func (h *EnrollmentHandler) SelectTier(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req appenrollment.SelectTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	draft, err := h.drafts.SelectTier(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// VerifyAddress handles POST /api/v1/enrollment/draft/address/verify
func (h *EnrollmentHandler) VerifyAddress(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	draft, err := h.drafts.VerifyAddress(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// VerifyPayment handles POST /api/v1/enrollment/draft/payment/verify
func (h *EnrollmentHandler) VerifyPayment(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req appenrollment.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	draft, err := h.drafts.VerifyPayment(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// SetCommunication handles PUT /api/v1/enrollment/draft/communication
func (h *EnrollmentHandler) SetCommunication(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req appenrollment.CommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	draft, err := h.drafts.SetCommunicationPreference(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, draft)
}

// ResetDraft handles DELETE /api/v1/enrollment/draft
func (h *EnrollmentHandler) ResetDraft(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	if err := h.drafts.ResetDraft(c.Request.Context(), tenantID, sessionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Complete handles POST /api/v1/enrollment/complete
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	platform, err := getPlatform(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.completer.Complete(c.Request.Context(), tenantID, platform, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// RegisterRoutes registers all enrollment wizard routes
func (h *EnrollmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	enroll := rg.Group("/enrollment")
	{
		enroll.GET("/draft", h.GetDraft)
		enroll.DELETE("/draft", h.ResetDraft)
		enroll.PUT("/draft/customer", h.SelectCustomer)
		enroll.PUT("/draft/tier", h.SelectTier)
		enroll.POST("/draft/address/verify", h.VerifyAddress)
		enroll.POST("/draft/payment/verify", h.VerifyPayment)
		enroll.PUT("/draft/communication", h.SetCommunication)
		enroll.POST("/complete", h.Complete)
	}
}

var (
	_ DraftWizardService  = (*appenrollment.DraftService)(nil)
	_ EnrollmentCompleter = (*appenrollment.CompletionService)(nil)
)
