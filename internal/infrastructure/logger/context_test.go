package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWithContextAndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContextReturnsNopWhenAbsent(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// Must be safe to use
	logger.Info("no-op")
}

func TestWithRequestID(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	enriched.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
}

func TestWithTenantID(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx, enriched := WithTenantID(context.Background(), logger, "tenant-456")

	assert.Equal(t, "tenant-456", GetTenantID(ctx))

	enriched.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "tenant-456", logs.All()[0].ContextMap()["tenant_id"])
}

func TestWithAccountID(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx, enriched := WithAccountID(context.Background(), logger, "acct-789")

	assert.Equal(t, "acct-789", GetAccountID(ctx))

	enriched.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "acct-789", logs.All()[0].ContextMap()["account_id"])
}

func TestGettersReturnEmptyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetAccountID(ctx))
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, RequestIDKey, TenantIDKey)
	assert.NotEqual(t, TenantIDKey, AccountIDKey)
	assert.NotEqual(t, RequestIDKey, AccountIDKey)
}

func TestContextLogger(t *testing.T) {
	t.Run("injects identifiers from context", func(t *testing.T) {
		logger, logs := newObservedLogger()

		ctx := WithContext(context.Background(), logger)
		ctx, _ = WithRequestID(ctx, logger, "req-1")
		ctx, _ = WithTenantID(ctx, logger, "tenant-1")

		L(ctx).Info("checked in")

		require.GreaterOrEqual(t, logs.Len(), 1)
		entry := logs.All()[logs.Len()-1]
		assert.Equal(t, "checked in", entry.Message)
		assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
		assert.Equal(t, "tenant-1", entry.ContextMap()["tenant_id"])
	})

	t.Run("WithLogger uses the provided logger", func(t *testing.T) {
		logger, logs := newObservedLogger()

		WithLogger(context.Background(), logger).Warn("slow query")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("With adds fields", func(t *testing.T) {
		logger, logs := newObservedLogger()

		WithLogger(context.Background(), logger).
			With(zap.String("patient_id", "p-1")).
			Info("session logged")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "p-1", logs.All()[0].ContextMap()["patient_id"])
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		cl.Info("ignored")
	})

	t.Run("Zap returns an enriched logger", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, _ := WithRequestID(context.Background(), logger, "req-2")

		WithLogger(ctx, logger).Zap().Info("direct")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-2", logs.All()[0].ContextMap()["request_id"])
	})
}
