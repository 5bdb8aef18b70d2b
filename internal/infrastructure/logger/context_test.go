package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextDefaultsToNop(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	// Must be safe to use without the middleware having run
	log.Info("draft step recorded")
}

func TestWithContextRoundTrip(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestWithTenantIDEnrichesLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, log := WithTenantID(context.Background(), zap.New(core), "tnt-42")

	log.Info("tier reconciled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tnt-42", fields["tenant_id"])

	assert.Equal(t, "tnt-42", TenantIDFrom(ctx))
	// The enriched logger is also reachable through the context
	FromContext(ctx).Info("second line")
	assert.Equal(t, 2, logs.Len())
}

func TestWithRequestIDAndSessionIDStack(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-7")
	ctx, log = WithSessionID(ctx, log, "sess-9")
	log.Info("enrollment completed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "sess-9", fields["session_id"])

	assert.Equal(t, "req-7", RequestIDFrom(ctx))
}

func TestIdentityAccessorsDefaultEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFrom(ctx))
	assert.Empty(t, TenantIDFrom(ctx))
}
