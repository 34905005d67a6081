// Package server exposes the loan calculator over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configure the HTTP handler.
type Options struct {
	Logger         *zap.Logger
	Service        *calculator.Service
	Version        string
	MaxBodyBytes   int64
	CORSOrigins    []string
	RequestTimeout time.Duration
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *RateLimiter
	// Registry receives the HTTP metrics and backs /metrics. A fresh registry
	// is used when nil.
	Registry *prometheus.Registry
	// TrustProxyHeaders lets X-Real-IP and X-Forwarded-For replace the socket
	// address. Clients can forge them, so the rate limiter only sees them
	// when a proxy in front is trusted to set them.
	TrustProxyHeaders bool
}

type handler struct {
	logger      *zap.Logger
	service     *calculator.Service
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	service := opts.Service
	if service == nil {
		service = calculator.New(calculator.Options{Logger: logger})
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	h := &handler{logger: logger, service: service, maxBodySize: maxBodySize, version: trimmedVersion}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(newHTTPMetrics(registry).middleware)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	origins := []string{"*"}
	if len(opts.CORSOrigins) > 0 {
		origins = opts.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Get("/version", h.handleVersion)

		r.Post("/calculate", h.handleCalculate)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/schedule/export", h.handleScheduleExport)
		r.Post("/schedule/import", h.handleScheduleImport)
		r.Post("/extra-payment", h.handleExtraPayment)
		r.Post("/payoff-target", h.handlePayoffTarget)

		r.Get("/scenarios", h.handleListScenarios)
		r.Post("/scenarios", h.handleSaveScenario)
		r.Delete("/scenarios", h.handleClearScenarios)
		r.Get("/scenarios/export", h.handleScenariosExport)
		r.Delete("/scenarios/{id}", h.handleDeleteScenario)
	})

	return r
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully within shutdownTimeout.
func Serve(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("op", "server.Serve"),
			zap.String("address", addr),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server", zap.String("op", "server.Serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request served",
				zap.String("op", "server.request"),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNoCalculation):
		return http.StatusConflict
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErr(w http.ResponseWriter, err error, op string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusRequestEntityTooLarge {
		msg = fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize)
	}
	h.respondErrorWithOp(w, status, msg, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Debug("request rejected", fields...)
	}

	writeError(w, status, msg)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if err := writeJSON(w, status, payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
