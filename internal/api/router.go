// Package api provides the HTTP API for Curbwise.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/ai/gemini"
	"github.com/curbwise/curbwise/internal/api/handler"
	"github.com/curbwise/curbwise/internal/api/middleware"
	"github.com/curbwise/curbwise/internal/auth"
	"github.com/curbwise/curbwise/internal/featureflags"
	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/provider/resilience"
	"github.com/curbwise/curbwise/internal/reminder"
	"github.com/curbwise/curbwise/internal/reports"
	"github.com/curbwise/curbwise/internal/trip"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	JWTService         *auth.JWTService
	TripService        *trip.Service
	ParkingEstimator   *parking.Estimator
	AIClient           *gemini.Client
	ReminderScheduler  *reminder.Scheduler
	ReportService      *reports.Service
	FeatureFlagService *featureflags.Service
	ProviderRegistry   *resilience.Registry
	Pool               *pgxpool.Pool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "curbwise-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry, cfg.Pool)
	tripHandler := handler.NewTripHandler(cfg.TripService, cfg.FeatureFlagService)
	parkingHandler := handler.NewParkingHandler(cfg.ParkingEstimator, cfg.AIClient, cfg.FeatureFlagService)
	reminderHandler := handler.NewReminderHandler(cfg.ReminderScheduler)
	reportHandler := handler.NewReportHandler(cfg.ReportService)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create auth middleware. Trip analysis works anonymously at the free
	// tier; writes and admin surfaces need a token.
	requireAuth := middleware.RequireAuth(cfg.JWTService)
	optionalAuth := middleware.OptionalAuth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(requireAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Trip analysis - expensive compute, strict rate limiting
		r.With(optionalAuth, expensiveRateLimit).Post("/trips:analyze", tripHandler.AnalyzeTrip)

		// Parking endpoints
		r.Route("/parking", func(r chi.Router) {
			r.Use(optionalAuth)
			r.With(standardRateLimit).Get("/spots", parkingHandler.ListSpots)
			// Sign analysis hits the vision model
			r.With(expensiveRateLimit).Post("/sign:analyze", parkingHandler.AnalyzeSign)
		})

		// Reminders (authenticated) - user-based rate limiting
		r.Route("/reminders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Post("/", reminderHandler.CreateReminder)
			r.Route("/{reminderId}", func(r chi.Router) {
				r.Get("/", reminderHandler.GetReminder)
				r.Delete("/", reminderHandler.CancelReminder)
			})
		})

		// Community reports - reads are public, writes need a token
		r.Route("/reports", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", reportHandler.ListReports)
			r.With(requireAuth).Post("/", reportHandler.CreateReport)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(standardRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
