package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/application/clubsync"
	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/interfaces/http/middleware"
)

// ClubSetupService is the application surface the club handler needs
type ClubSetupService interface {
	ApplyTierSet(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, req clubsync.SetupRequest) (*clubsync.SetupResult, error)
	ListTiers(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode) ([]clubsync.TierView, error)
}

// ClubHandler handles club tier configuration requests
type ClubHandler struct {
	BaseHandler
	setup       ClubSetupService
	sideEffects club.SideEffectLogRepository
}

// NewClubHandler creates a new club handler
func NewClubHandler(setup ClubSetupService, sideEffects club.SideEffectLogRepository) *ClubHandler {
	return &ClubHandler{setup: setup, sideEffects: sideEffects}
}

// ApplyTierSet handles PUT /api/v1/club/tiers
// The submitted list is the desired state: new rows are created, known rows
// updated, and persisted tiers absent from the list retired.
func (h *ClubHandler) ApplyTierSet(c *gin.Context) {
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

	var req clubsync.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.setup.ApplyTierSet(c.Request.Context(), tenantID, platform, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTiers handles GET /api/v1/club/tiers
func (h *ClubHandler) ListTiers(c *gin.Context) {
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

	tiers, err := h.setup.ListTiers(c.Request.Context(), tenantID, platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tiers)
}

// SideEffectView is one operator-facing side-effect failure record
type SideEffectView struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	SubjectID  string    `json:"subject_id"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ListSideEffects handles GET /api/v1/club/side-effects
// It lists recent best-effort side effects that failed, newest first, so
// operators can reconcile missed bonus awards or messages.
func (h *ClubHandler) ListSideEffects(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.BadRequest(c, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	entries, err := h.sideEffects.FindForTenant(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]SideEffectView, 0, len(entries))
	for _, e := range entries {
		views = append(views, SideEffectView{
			ID:         e.ID,
			Kind:       string(e.Kind),
			SubjectID:  e.SubjectID,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt.UTC(),
		})
	}

	h.Success(c, views)
}

// RegisterRoutes registers all club routes
func (h *ClubHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clubGroup := rg.Group("/club")
	{
		clubGroup.GET("/tiers", h.ListTiers)
		clubGroup.PUT("/tiers", h.ApplyTierSet)
		clubGroup.GET("/side-effects", h.ListSideEffects)
	}
}

var _ ClubSetupService = (*clubsync.SetupService)(nil)
