package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/iotest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/apperror"
	appctx "aquaplant/internal/core/context"
	"aquaplant/internal/core/idempotency"
	"aquaplant/internal/infrastructure/storage/memory"
)

func newEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.Any("/t", h)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrace_UsesTraceparent(t *testing.T) {
	var seen *appctx.TraceContext
	r := newEngine(func(c *gin.Context) {
		seen = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(HeaderRequestID, "req-1")
	w := serve(r, req)

	require.NotNil(t, seen)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", seen.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", seen.SpanID)
	assert.Equal(t, "req-1", seen.RequestID)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", w.Header().Get(HeaderTraceID))
}

func TestTrace_GeneratesIDs(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("Aqua 500ml", 8, 5))
		c.Abort()
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInsufficientStock)
}

func TestRecovery_Returns500(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "boom")
}

type countingStore struct {
	idempotency.Store
	acquired int
}

func (s *countingStore) AcquireKey(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	s.acquired++
	return s.Store.AcquireKey(ctx, key, operation, requestHash)
}

func TestIdempotency_BodyReadErrorIsRejected(t *testing.T) {
	store := &countingStore{Store: memory.NewIdempotencyStore(0)}
	handled := false
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(), Idempotency(store))
	r.POST("/t", func(c *gin.Context) {
		handled = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/t", iotest.ErrReader(errors.New("connection reset")))
	req.Header.Set(HeaderIdempotencyKey, "form-1")
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.False(t, handled)
	assert.Zero(t, store.acquired)
}
