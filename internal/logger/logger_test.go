package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})
}

func TestL_LazyInit(t *testing.T) {
	restore := Replace(nil)
	defer restore()
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, log)
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestIDFrom(ctx))

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	t.Run("WithRequestID", func(t *testing.T) {
		FromCtx(WithRequestID(context.Background(), "req-abc")).Info("with id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "req-abc", logs[0].ContextMap()["request_id"])
	})

	t.Run("WithoutRequestID", func(t *testing.T) {
		FromCtx(context.Background()).Info("without id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["request_id"]
		assert.False(t, ok)
	})
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, Sync)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("Generates ID when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("Preserves existing ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "test-id-123", seen)
		assert.Equal(t, "test-id-123", w.Header().Get(RequestIDHeader))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	logs := observed.TakeAll()
	assert.Len(t, logs, 1)
	assert.Equal(t, "incoming request", logs[0].Message)
	assert.Equal(t, "/api/orders", logs[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusTeapot), logs[0].ContextMap()["status"])
}
