package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thesisflow/internal/platform/metrics"
	"thesisflow/pkg/platform/audit"
	"thesisflow/pkg/requestcontext"
)

// HealthChecker reports readiness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AuditReader serves the per-subject audit trail.
type AuditReader interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// Handler serves the operational surface: liveness, readiness, and the
// Prometheus scrape endpoint. Domain operations are exposed through the
// service layer, not over HTTP.
type Handler struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditReader
	checkers map[string]HealthChecker
}

func NewHandler(logger *slog.Logger, m *metrics.Metrics, auditor AuditReader) *Handler {
	return &Handler{
		logger:   logger,
		metrics:  m,
		auditor:  auditor,
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker adds a named dependency to the readiness probe.
func (h *Handler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// NewRouter wires the operational endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.recovery)
	r.Use(h.requestID)
	r.Use(h.observe)
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)
	r.Get("/audit/{subject}", h.handleAuditTrail)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// handleAuditTrail returns the recorded decisions for one subject
// (thesis, request, offer, or application ID).
func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	events, err := h.auditor.List(r.Context(), subject)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit trail lookup failed", "subject", subject, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz probes every registered dependency. Any failure makes
// the whole endpoint report 503 so the orchestrator stops routing here.
func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.Health(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, results)
}

func (h *Handler) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic while serving request", "path", r.URL.Path, "panic", rec)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), reqID)))
	})
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.metrics.ObserveRequest(r.URL.Path, strconv.Itoa(rec.status), start)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
