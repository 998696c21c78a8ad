// Package http serves the spend aggregates as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialspend/internal/amqp"
	applog "socialspend/internal/log"
	"socialspend/internal/services"
	"socialspend/internal/theme"
)

const defaultRateLimit = 120

// DatasetProvider returns the current dataset snapshot.
type DatasetProvider interface {
	Snapshot(ctx context.Context) (services.Snapshot, error)
}

// Importer stores a dataset file synchronously.
type Importer interface {
	ImportFile(ctx context.Context, path, source string, strict bool) (services.ImportReport, error)
}

// Publisher queues an import for the worker.
type Publisher interface {
	PublishImport(ctx context.Context, req *amqp.ImportRequest) error
}

// Dependencies wires the server. Importer and Publisher are optional; when
// both are set imports are queued.
type Dependencies struct {
	Dataset   DatasetProvider
	Importer  Importer
	Publisher Publisher
	Palette   theme.Palette
	Logger    *applog.Logger
	RateLimit int // requests per client per minute
}

type Server struct {
	http.Server
	dataset     DatasetProvider
	importer    Importer
	publisher   Publisher
	palette     theme.Palette
	logger      *applog.Logger
	structured  *applog.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	limit := deps.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}

	s := &Server{
		dataset:     deps.Dataset,
		importer:    deps.Importer,
		publisher:   deps.Publisher,
		palette:     deps.Palette,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(limit),
		metrics:     &securityMetrics{},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.withRequestLogging)
	r.Use(middleware.Recoverer)
	r.Use(s.withSecurityHeaders)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/banks", s.handleBanks)
		r.Get("/years", s.handleYears)
		r.Get("/totals", s.handleTotals)
		r.Get("/yoy", s.handleYoY)
		r.Get("/wave", s.handleWave)
		r.Get("/platforms", s.handlePlatforms)
		r.Get("/platforms/trend", s.handlePlatformTrend)
		r.Get("/monthly", s.handleMonthly)
		r.Get("/rejections", s.handleRejections)
		r.Get("/theme", s.handleTheme)
		r.Get("/security", s.handleSecurityStats)
		r.Route("/insights", func(r chi.Router) {
			r.Get("/yoy", s.handleYoYInsights)
			r.Get("/timeline", s.handleTimelineInsights)
			r.Get("/platform", s.handlePlatformInsights)
			r.Get("/bank", s.handleBankInsights)
		})
		r.Post("/imports", s.handleImport)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

// withRequestLogging logs every request on completion with its status and
// duration.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.structured.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), extractClientIP(r))
	})
}

// withSecurityHeaders adds security headers and rate limiting. Suspicious
// requests are logged but still served.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := extractClientIP(r)

		if reason := suspiciousReason(r, s.metrics); reason != "" {
			applog.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				"reason", reason,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if !s.rateLimiter.allow(clientIP, s.metrics) {
			applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
				Header("Retry-After", "60").
				Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		if id := middleware.GetReqID(ctx); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the dataset can be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.dataset.Snapshot(r.Context()); err != nil {
		s.structured.LogError(r.Context(), "Readiness check failed", err, applog.OpLoad, nil)
		http.Error(w, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
