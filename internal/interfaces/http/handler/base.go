package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/enrollment"
	"github.com/cellarclub/backend/internal/interfaces/http/dto"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the tenant ID from the session claims
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := middleware.GetTenantID(c)
	if tenantIDStr == "" {
		return uuid.Nil, errors.New("tenant not found in session")
	}
	return uuid.Parse(tenantIDStr)
}

// getPlatform extracts the platform code from the session claims
func getPlatform(c *gin.Context) (crm.PlatformCode, error) {
	platform := middleware.GetPlatform(c)
	if platform == "" {
		return "", errors.New("platform not found in session")
	}
	return crm.ParsePlatformCode(platform)
}

// getSessionID extracts the wizard session ID from the session claims
func getSessionID(c *gin.Context) (string, error) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		return "", errors.New("session ID not found in session token")
	}
	return sessionID, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain and provider errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validationErr *club.ValidationError
	if errors.As(err, &validationErr) {
		h.ErrorWithCode(c, dto.ErrCodeValidation, validationErr.Error())
		return
	}

	var incompleteErr *club.DraftIncompleteError
	if errors.As(err, &incompleteErr) {
		h.ErrorWithCode(c, dto.ErrCodeDraftIncomplete, incompleteErr.Error())
		return
	}

	var fatalErr *club.FatalSetupError
	if errors.As(err, &fatalErr) {
		h.ErrorWithCode(c, dto.ErrCodeSetupFatal, fatalErr.Error())
		return
	}

	switch {
	case errors.Is(err, club.ErrTierRetired):
		h.ErrorWithCode(c, dto.ErrCodeTierRetired, err.Error())
	case errors.Is(err, club.ErrNotFound),
		errors.Is(err, club.ErrTierNotFound),
		errors.Is(err, club.ErrCustomerNotFound),
		errors.Is(err, club.ErrEnrollmentNotFound),
		errors.Is(err, enrollment.ErrDraftNotFound),
		errors.Is(err, crm.ErrNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, crm.ErrUnknownPlatform):
		h.ErrorWithCode(c, dto.ErrCodeUnknownPlatform, err.Error())
	case errors.Is(err, crm.ErrProviderNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeProviderNotConfigured, err.Error())
	case errors.Is(err, crm.ErrProviderUnavailable):
		h.ErrorWithCode(c, dto.ErrCodeProviderUnavailable, err.Error())
	case errors.Is(err, crm.ErrProviderAuthFailed):
		h.ErrorWithCode(c, dto.ErrCodeProviderAuth, err.Error())
	case errors.Is(err, crm.ErrProviderRequestFailed), errors.Is(err, crm.ErrInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodeProviderRequest, err.Error())
	default:
		h.InternalError(c, "an unexpected error occurred")
	}
}
