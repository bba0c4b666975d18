package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/pricing"
	"github.com/openbank-labs/reloan/internal/profile"
	"github.com/openbank-labs/reloan/internal/tools"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg *domain.Config, repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *pricing.Engine, profiles *profile.Service, registry *tools.Registry, version string) *Server {
	handler := NewHandler(repo, cache, bus, engine, profiles, registry, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (no customer required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Tool invocations (customer required, rate limited)
	router.Route("/tools", func(r chi.Router) {
		r.Use(CustomerMiddleware)
		r.Use(RateLimitMiddleware(cache, cfg.RateLimit))

		r.Post("/{name}", handler.InvokeTool)
	})

	// Profile retrieval
	router.Get("/customers/{id}", handler.GetCustomer)

	// Pricing: programmatic evaluation plus snapshot retrieval
	router.Route("/pricing", func(r chi.Router) {
		r.Post("/evaluate", handler.EvaluatePricing)
		r.Get("/{id}", handler.GetPricingSnapshot)
	})

	// Campaign management
	router.Route("/campaigns", func(r chi.Router) {
		r.Get("/", handler.ListCampaigns)
		r.Post("/", handler.CreateCampaign)
		r.Delete("/{id}", handler.DeleteCampaign)
		r.Post("/reload", handler.ReloadCampaigns)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg.Server,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
