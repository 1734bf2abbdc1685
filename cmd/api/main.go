// Package main provides the entrypoint for the Curbwise API server.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/ai/gemini"
	"github.com/curbwise/curbwise/internal/api"
	"github.com/curbwise/curbwise/internal/api/middleware"
	"github.com/curbwise/curbwise/internal/auth"
	"github.com/curbwise/curbwise/internal/database"
	"github.com/curbwise/curbwise/internal/decision"
	"github.com/curbwise/curbwise/internal/featureflags"
	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/provider/resilience"
	"github.com/curbwise/curbwise/internal/reminder"
	"github.com/curbwise/curbwise/internal/reports"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/internal/routing/googlemaps"
	"github.com/curbwise/curbwise/internal/telemetry"
	"github.com/curbwise/curbwise/internal/transit"
	"github.com/curbwise/curbwise/internal/transit/mta"
	"github.com/curbwise/curbwise/internal/trip"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "curbwise-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Curbwise API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database. The advisory path runs entirely in memory, so a
	// missing database degrades flags and reports to in-memory stores
	// instead of blocking startup.
	pool, poolErr := database.Connect(ctx, database.ConfigFromEnv())
	if poolErr != nil {
		log.Warn().Err(poolErr).Msg("database unavailable, using in-memory stores")
	} else {
		defer pool.Close()
		log.Info().Msg("database connected")
	}

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.curbwise.nyc",
		Audience:   "curbwise-api",
	})

	// Provider HTTP clients register themselves so the status endpoint can
	// report circuit breaker health.
	registry := resilience.GlobalRegistry

	mapsCfg := resilience.DefaultClientConfig(googlemaps.ProviderName)
	mapsCfg.Registry = registry
	mapsHTTP := resilience.NewClient(mapsCfg)

	mtaCfg := resilience.DefaultClientConfig(mta.SourceName)
	mtaCfg.Registry = registry
	mtaHTTP := resilience.NewClient(mtaCfg)

	geminiCfg := resilience.DefaultClientConfig(gemini.ProviderName)
	geminiCfg.Registry = registry
	geminiHTTP := resilience.NewClient(geminiCfg)

	// Initialize the routing service with the Google Maps provider
	mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),
		HTTPClient: mapsHTTP,
		Logger:     log,
	})
	if os.Getenv("GOOGLE_MAPS_API_KEY") == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - driving estimates will use the fallback estimator")
	}

	rng := func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) } //nolint:gosec // jitter, not crypto

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: mapsClient,
		Fallback: routing.NewFallbackEstimator(rng(), nil),
		Logger:   log,
	})
	log.Info().Str("provider", routingService.ProviderName()).Msg("routing service initialized")

	// Initialize the parking estimator
	parkingEstimator := parking.NewEstimator(parking.EstimatorConfig{
		RNG:    rng(),
		Logger: log,
	})

	// Initialize the transit service with the MTA alerts feed
	mtaClient := mta.NewClient(mta.ClientConfig{
		APIKey:     os.Getenv("MTA_API_KEY"),
		HTTPClient: mtaHTTP,
		Logger:     log,
	})

	transitService := transit.NewService(transit.ServiceConfig{
		Alerts: mtaClient,
		RNG:    rng(),
		Logger: log,
	})
	log.Info().Msg("transit service initialized")

	// Initialize the Gemini client for insights and sign analysis
	geminiClient := gemini.NewClient(gemini.ClientConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		HTTPClient: geminiHTTP,
		RNG:        rng(),
		Logger:     log,
	})
	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - AI features will use fallback content")
	}

	// Initialize the decision engine
	engine := decision.NewEngine(decision.EngineConfig{
		Advisor: geminiClient,
		Logger:  log,
	})

	// Initialize the trip service
	tripService := trip.NewService(trip.ServiceConfig{
		Directions:  routingService,
		Parking:     parkingEstimator,
		Transit:     transitService,
		Recommender: engine,
		Insights:    geminiClient,
		RNG:         rng(),
		Logger:      log,
	})
	log.Info().Msg("trip service initialized")

	// Initialize the reminder scheduler. Delivery is log-only here; push
	// delivery belongs to the mobile client.
	reminderScheduler := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(r reminder.Reminder) {
			log.Info().
				Str("reminder_id", r.ID).
				Str("message", r.Message).
				Msg("reminder fired")
		}),
		Logger: log,
	})
	defer reminderScheduler.Close()

	// Initialize report repository and service
	var reportRepo reports.Repository
	if pool != nil {
		reportRepo = reports.NewPostgresRepository(pool)
	} else {
		reportRepo = reports.NewInMemoryRepository()
	}
	reportService := reports.NewService(reports.ServiceConfig{
		Repository: reportRepo,
		Logger:     log,
	})
	log.Info().Msg("report service initialized")

	// Initialize feature flags repository and service
	var ffRepo featureflags.Repository
	if pool != nil {
		ffRepo = featureflags.NewPostgresRepository(pool)
	} else {
		ffRepo = featureflags.NewInMemoryRepository()
	}
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		JWTService:         jwtService,
		TripService:        tripService,
		ParkingEstimator:   parkingEstimator,
		AIClient:           geminiClient,
		ReminderScheduler:  reminderScheduler,
		ReportService:      reportService,
		FeatureFlagService: ffService,
		ProviderRegistry:   registry,
		Pool:               pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
