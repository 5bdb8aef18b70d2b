package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cellarclub/backend/internal/application/clubsync"
	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
)

func newClubTestRouter(setup *MockSetupService, sideEffects *MockSideEffectLogRepository, tenantID uuid.UUID) *gin.Engine {
	h := NewClubHandler(setup, sideEffects)
	router := gin.New()
	router.Use(withSession(tenantID, "commerce7", "sess-1"))
	router.PUT("/club/tiers", h.ApplyTierSet)
	router.GET("/club/tiers", h.ListTiers)
	router.GET("/club/side-effects", h.ListSideEffects)
	return router
}

func TestClubHandler_ApplyTierSet(t *testing.T) {
	tenantID := uuid.New()

	t.Run("applies the submitted tier set", func(t *testing.T) {
		setup := new(MockSetupService)
		setup.On("ApplyTierSet", mock.Anything, tenantID, crm.PlatformCommerce7, mock.Anything).
			Return(&clubsync.SetupResult{
				Tiers:    []clubsync.TierView{{Name: "Gold"}},
				Warnings: []clubsync.SyncWarning{{TierName: "Gold", Message: "promotion sync failed"}},
			}, nil)

		router := newClubTestRouter(setup, new(MockSideEffectLogRepository), tenantID)

		body, _ := json.Marshal(clubsync.SetupRequest{
			Tiers: []clubsync.TierSubmission{{ID: "tmp-1", Name: "Gold", DurationMonths: 12}},
		})
		req := httptest.NewRequest(http.MethodPut, "/club/tiers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "promotion sync failed")
		setup.AssertExpectations(t)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		router := newClubTestRouter(new(MockSetupService), new(MockSideEffectLogRepository), tenantID)

		req := httptest.NewRequest(http.MethodPut, "/club/tiers", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ERR_INVALID_JSON")
	})

	t.Run("maps a fatal setup failure to 502", func(t *testing.T) {
		setup := new(MockSetupService)
		setup.On("ApplyTierSet", mock.Anything, tenantID, crm.PlatformCommerce7, mock.Anything).
			Return(nil, club.NewFatalSetupError("loyalty-rule", assert.AnError))

		router := newClubTestRouter(setup, new(MockSideEffectLogRepository), tenantID)

		body, _ := json.Marshal(clubsync.SetupRequest{})
		req := httptest.NewRequest(http.MethodPut, "/club/tiers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "ERR_SETUP_FATAL")
	})

	t.Run("rejects requests without a session", func(t *testing.T) {
		h := NewClubHandler(new(MockSetupService), new(MockSideEffectLogRepository))
		router := gin.New()
		router.PUT("/club/tiers", h.ApplyTierSet)

		req := httptest.NewRequest(http.MethodPut, "/club/tiers", bytes.NewReader([]byte("{}")))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClubHandler_ListTiers(t *testing.T) {
	tenantID := uuid.New()

	setup := new(MockSetupService)
	setup.On("ListTiers", mock.Anything, tenantID, crm.PlatformCommerce7).
		Return([]clubsync.TierView{{Name: "Gold"}, {Name: "Silver"}}, nil)

	router := newClubTestRouter(setup, new(MockSideEffectLogRepository), tenantID)

	req := httptest.NewRequest(http.MethodGet, "/club/tiers", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gold")
	assert.Contains(t, rec.Body.String(), "Silver")
}

func TestClubHandler_ListSideEffects(t *testing.T) {
	tenantID := uuid.New()

	t.Run("lists recent failures", func(t *testing.T) {
		sideEffects := new(MockSideEffectLogRepository)
		sideEffects.On("FindForTenant", mock.Anything, tenantID, 50).
			Return([]*club.SideEffectLog{
				club.NewSideEffectLog(tenantID, club.SideEffectLoyaltyBonus, "cust-1", "provider unavailable"),
			}, nil)

		router := newClubTestRouter(new(MockSetupService), sideEffects, tenantID)

		req := httptest.NewRequest(http.MethodGet, "/club/side-effects", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "loyalty-bonus")
		assert.Contains(t, rec.Body.String(), "cust-1")
	})

	t.Run("honors an explicit limit", func(t *testing.T) {
		sideEffects := new(MockSideEffectLogRepository)
		sideEffects.On("FindForTenant", mock.Anything, tenantID, 5).
			Return([]*club.SideEffectLog{}, nil)

		router := newClubTestRouter(new(MockSetupService), sideEffects, tenantID)

		req := httptest.NewRequest(http.MethodGet, "/club/side-effects?limit=5", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		sideEffects.AssertExpectations(t)
	})

	t.Run("rejects an out-of-range limit", func(t *testing.T) {
		router := newClubTestRouter(new(MockSetupService), new(MockSideEffectLogRepository), tenantID)

		req := httptest.NewRequest(http.MethodGet, "/club/side-effects?limit=0", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
