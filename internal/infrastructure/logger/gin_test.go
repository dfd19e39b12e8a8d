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

func observedRouter(level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	return router, recorded
}

func requestLogEntry(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1, "expected exactly one HTTP Request entry")
	return entries[0]
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware(t *testing.T) {
	router, recorded := observedRouter(zapcore.InfoLevel)
	router.GET("/patients", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	w := serve(router, http.MethodGet, "/patients")
	assert.Equal(t, http.StatusOK, w.Code)

	entry := requestLogEntry(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
}

func TestGinMiddleware_SkipsHealthProbes(t *testing.T) {
	router, recorded := observedRouter(zapcore.InfoLevel)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := serve(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorded.All(), "health probes should not be logged")
}

func TestGinMiddleware_WithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/patients", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/patients")

	entry := requestLogEntry(t, recorded)
	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
}

func TestGinMiddleware_LogLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"2xx logs at info", http.StatusOK, zapcore.InfoLevel},
		{"4xx logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"5xx logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, recorded := observedRouter(zapcore.DebugLevel)
			router.GET("/patients/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			serve(router, http.MethodGet, "/patients/42")

			entry := requestLogEntry(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
		})
	}
}

func TestGinMiddleware_WithQuery(t *testing.T) {
	router, recorded := observedRouter(zapcore.InfoLevel)
	router.GET("/patients", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/patients?search=silva&page=2")

	entry := requestLogEntry(t, recorded)
	fields := entry.ContextMap()
	assert.Contains(t, fields["query"], "search=silva")
}

func TestGinMiddleware_LogsCorrectFields(t *testing.T) {
	router, recorded := observedRouter(zapcore.InfoLevel)
	router.POST("/patients", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/patients", nil)
	req.Header.Set("User-Agent", "integration-suite/1.0")
	router.ServeHTTP(w, req)

	entry := requestLogEntry(t, recorded)
	fields := entry.ContextMap()
	for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "integration-suite/1.0", fields["user_agent"])
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("handler blew up")
	})

	var w *httptest.ResponseRecorder
	assert.NotPanics(t, func() {
		w = serve(router, http.MethodGet, "/boom")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns request-scoped logger", func(t *testing.T) {
		router, _ := observedRouter(zapcore.InfoLevel)

		var got *zap.Logger
		router.GET("/patients", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/patients")
		assert.NotNil(t, got)
	})

	t.Run("returns no-op logger when middleware absent", func(t *testing.T) {
		router := gin.New()

		var got *zap.Logger
		router.GET("/patients", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/patients")
		require.NotNil(t, got)
		assert.NotPanics(t, func() {
			got.Info("still usable")
		})
	})
}
