package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObservedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.Use(RequestLogging(zap.New(core)))
	return engine, logs
}

func TestRequestLoggingLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
		msg    string
	}{
		{"success", http.StatusOK, zap.InfoLevel, "request served"},
		{"client error", http.StatusNotFound, zap.WarnLevel, "request rejected"},
		{"server error", http.StatusBadGateway, zap.ErrorLevel, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, logs := newObservedEngine(t)
			engine.GET("/tiers", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tiers", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.msg, entry.Message)

			fields := entry.ContextMap()
			assert.Equal(t, "GET", fields["method"])
			assert.Equal(t, "/tiers", fields["path"])
			assert.Equal(t, int64(tt.status), fields["status"])
		})
	}
}

func TestRequestLoggingAttachesContextLogger(t *testing.T) {
	engine, logs := newObservedEngine(t)
	engine.GET("/drafts", func(c *gin.Context) {
		// Handlers log through the request context and inherit request_id
		FromContext(c.Request.Context()).Info("draft loaded")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drafts", nil))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "draft loaded", logs.All()[0].Message)
}

func TestRequestLoggingIncludesQuery(t *testing.T) {
	engine, logs := newObservedEngine(t)
	engine.GET("/promotions", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/promotions?status=active", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "status=active", logs.All()[0].ContextMap()["query"])
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	engine, logs := newObservedEngine(t)
	engine.GET("/boom", func(c *gin.Context) {
		panic("codec blew up")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var recovered *observer.LoggedEntry
	for _, entry := range logs.All() {
		if entry.Message == "panic recovered" {
			e := entry
			recovered = &e
		}
	}
	require.NotNil(t, recovered)
	assert.Equal(t, zap.ErrorLevel, recovered.Level)
	assert.Equal(t, "codec blew up", recovered.ContextMap()["panic"])
}
