// Package main provides the entrypoint for the Curbwise cache warming worker.
package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/internal/routing/googlemaps"
	"github.com/curbwise/curbwise/internal/transit"
	"github.com/curbwise/curbwise/internal/transit/mta"
	"github.com/curbwise/curbwise/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "curbwise-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Curbwise worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	refreshInterval := 15 * time.Minute
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			refreshInterval = parsed
		} else {
			log.Warn().Str("value", v).Msg("invalid REFRESH_INTERVAL, using default")
		}
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng := func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) } //nolint:gosec // jitter, not crypto

	// Initialize the services whose caches get warmed
	mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		Logger: log,
	})

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: mapsClient,
		Fallback: routing.NewFallbackEstimator(rng(), nil),
		Logger:   log,
	})

	parkingEstimator := parking.NewEstimator(parking.EstimatorConfig{
		RNG:    rng(),
		Logger: log,
	})

	mtaClient := mta.NewClient(mta.ClientConfig{
		APIKey: os.Getenv("MTA_API_KEY"),
		Logger: log,
	})

	transitService := transit.NewService(transit.ServiceConfig{
		Alerts: mtaClient,
		RNG:    rng(),
		Logger: log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:           worker.DefaultRefreshConfig(),
		Logger:           log,
		RoutingService:   routingService,
		ParkingEstimator: parkingEstimator,
		TransitService:   transitService,
	})

	// Create HTTP server for health checks and metrics
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(refreshJob.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub triggered refreshes when a subscription is configured,
	// otherwise fall back to an interval timer.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().
			Dur("interval", refreshInterval).
			Msg("pubsub not configured, running on interval")

		go func() {
			ticker := time.NewTicker(refreshInterval)
			defer ticker.Stop()

			// Warm caches immediately on startup
			runRefresh(ctx, refreshJob, log)

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					runRefresh(ctx, refreshJob, log)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runRefresh(ctx context.Context, job *worker.RefreshJob, log zerolog.Logger) {
	result := job.Run(ctx)
	if err := job.RefreshTransit(ctx); err != nil {
		log.Warn().Err(err).Msg("transit refresh failed")
	}

	log.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("scheduled refresh completed")
}
