package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping() error { return p.err }

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler(&stubPinger{})
	router := gin.New()
	router.GET("/ping", h.Ping)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("reports ok when the database responds", func(t *testing.T) {
		h := NewSystemHandler(&stubPinger{})
		router := gin.New()
		router.GET("/health", h.Health)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("reports degraded when the database is unreachable", func(t *testing.T) {
		h := NewSystemHandler(&stubPinger{err: errors.New("connection refused")})
		router := gin.New()
		router.GET("/health", h.Health)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "degraded")
	})
}
