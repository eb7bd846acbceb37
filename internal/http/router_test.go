package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/platform/metrics"
	"thesisflow/pkg/platform/audit"
	auditmem "thesisflow/pkg/platform/audit/store/memory"
)

var routerMetrics = metrics.New()

type staticChecker struct{ err error }

func (c staticChecker) Health(context.Context) error { return c.err }

func newTestHandler() *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), routerMetrics,
		audit.NewPublisher(auditmem.New()))
}

func TestHealthz(t *testing.T) {
	router := NewRouter(newTestHandler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyz(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		h := newTestHandler()
		h.RegisterChecker("postgres", staticChecker{})
		router := NewRouter(h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing dependency flips readiness", func(t *testing.T) {
		h := newTestHandler()
		h.RegisterChecker("postgres", staticChecker{})
		h.RegisterChecker("redis", staticChecker{err: errors.New("connection refused")})
		router := NewRouter(h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unavailable")
	})
}

func TestAuditTrail(t *testing.T) {
	sink := auditmem.New()
	publisher := audit.NewPublisher(sink)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), routerMetrics, publisher)
	require.NoError(t, publisher.Emit(context.Background(), audit.Event{
		Subject: "subject-1",
		Action:  audit.EventThesisCreated,
	}))
	router := NewRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/subject-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(audit.EventThesisCreated))
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(newTestHandler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
