// Package api provides HTTP API handlers for the Nestora marketplace
// backend.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nestora/nestora/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	server   *http.Server
	logger   *slog.Logger
	metrics  observability.Metrics
	health   *observability.HealthRegistry
	billing  *BillingHandler
	listings *ListingsHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Metrics receives request counters and timings. Defaults to a no-op.
	Metrics observability.Metrics
	// Health, when set, backs the /health endpoint with component checks.
	Health *observability.HealthRegistry
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, billing *BillingHandler, listings *ListingsHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		metrics:  metrics,
		health:   cfg.Health,
		billing:  billing,
		listings: listings,
	}

	s.registerRoutes()
	s.handler = s.withRequestContext(s.mux)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Billing provider webhook
	s.mux.HandleFunc("POST /webhooks/billing", s.billing.HandleWebhook)

	// Subscription check for the front end and internal services
	s.mux.HandleFunc("GET /api/v1/subscriptions/check", s.billing.CheckSubscription)

	// Listings
	s.mux.HandleFunc("POST /api/v1/listings", s.listings.CreateListing)
	s.mux.HandleFunc("GET /api/v1/listings", s.listings.ListListings)
	s.mux.HandleFunc("GET /api/v1/listings/{listingID}", s.listings.GetListing)
	s.mux.HandleFunc("DELETE /api/v1/listings/{listingID}", s.listings.DeleteListing)
	s.mux.HandleFunc("POST /api/v1/listings/{listingID}/click", s.listings.TrackClick)

	// Seller analytics dashboard
	s.mux.HandleFunc("GET /api/v1/dashboard/seller/overview", s.listings.SellerOverview)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	overall := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if overall.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, overall)
}

// Handler returns the routing handler, for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
