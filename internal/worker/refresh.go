package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/internal/transit"
)

// RefreshJob keeps the directions cache, parking snapshots, and transit
// alerts warm so interactive requests rarely pay the provider round trip.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	routingService   *routing.Service
	parkingEstimator *parking.Estimator
	transitService   *transit.Service

	// Metrics
	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	DirectionsRefresh int64
	ParkingRefresh    int64
	TransitRefresh    int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config           RefreshConfig
	Logger           zerolog.Logger
	RoutingService   *routing.Service
	ParkingEstimator *parking.Estimator
	TransitService   *transit.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Corridors) == 0 {
		config = DefaultRefreshConfig()
	}

	return &RefreshJob{
		config:           config,
		logger:           cfg.Logger,
		routingService:   cfg.RoutingService,
		parkingEstimator: cfg.ParkingEstimator,
		transitService:   cfg.TransitService,
		metrics:          &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalCorridors int
	Successful     int
	Failed         int
	Errors         []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Stage    string
	Corridor Corridor
	Error    string
}

// Run executes the refresh job for all configured corridors.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:      startTime,
		TotalCorridors: j.config.TotalCorridors(),
	}

	j.logger.Info().
		Int("total_corridors", result.TotalCorridors).
		Int("concurrency", j.config.Concurrency).
		Msg("starting corridor refresh job")

	// Create work channels
	corridorsChan := make(chan Corridor, len(j.config.Corridors))
	resultsChan := make(chan corridorResult, len(j.config.Corridors))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, corridorsChan, resultsChan)
		}()
	}

	// Send corridors to workers
	for _, c := range j.config.Corridors {
		corridorsChan <- c
	}
	close(corridorsChan)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	for cr := range resultsChan {
		if cr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, cr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	// Update metrics
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("corridor refresh job completed")

	return result
}

type corridorResult struct {
	corridor Corridor
	success  bool
	errors   []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, corridors <-chan Corridor, results chan<- corridorResult) {
	for corridor := range corridors {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshCorridor(ctx, corridor)
		}
	}
}

func (j *RefreshJob) refreshCorridor(ctx context.Context, corridor Corridor) corridorResult {
	result := corridorResult{
		corridor: corridor,
		success:  true,
	}

	// Create timeout context for this corridor
	corridorCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	// Warm the driving estimate
	if j.config.RefreshDirections && j.routingService != nil {
		if err := j.refreshDirections(corridorCtx, corridor); err != nil {
			result.errors = append(result.errors, RefreshError{
				Stage:    "directions",
				Corridor: corridor,
				Error:    err.Error(),
			})
			result.success = false
		} else {
			atomic.AddInt64(&j.metrics.DirectionsRefresh, 1)
		}
	}

	// Warm the destination parking snapshot
	if j.config.RefreshParking && j.parkingEstimator != nil && j.routingService != nil {
		if err := j.refreshParking(corridorCtx, corridor); err != nil {
			result.errors = append(result.errors, RefreshError{
				Stage:    "parking",
				Corridor: corridor,
				Error:    err.Error(),
			})
			// Parking warming failures are non-fatal; the estimator
			// regenerates snapshots on demand.
		} else {
			atomic.AddInt64(&j.metrics.ParkingRefresh, 1)
		}
	}

	return result
}

func (j *RefreshJob) refreshDirections(ctx context.Context, corridor Corridor) error {
	_, err := j.routingService.GetDirections(ctx, routing.DirectionsRequest{
		Origin:      corridor.Origin,
		Destination: corridor.Destination,
	})
	return err
}

func (j *RefreshJob) refreshParking(ctx context.Context, corridor Corridor) error {
	coord, err := j.routingService.Geocode(ctx, corridor.Destination)
	if err != nil {
		return err
	}
	j.parkingEstimator.Assess(corridor.Destination, coord)
	return nil
}

// RefreshTransit drops the cached transit alerts and fetches a fresh set.
// Alerts are system-wide, not corridor-based, so one route probe suffices.
func (j *RefreshJob) RefreshTransit(ctx context.Context) error {
	if !j.config.RefreshTransit || j.transitService == nil {
		return nil
	}

	j.logger.Debug().Msg("refreshing transit alerts")

	j.transitService.InvalidateAlerts()

	probe := DefaultCorridors()[0]
	if len(j.config.Corridors) > 0 {
		probe = j.config.Corridors[0]
	}
	route := j.transitService.GetRoute(ctx, probe.Origin, probe.Destination)
	if route == nil {
		return nil
	}

	atomic.AddInt64(&j.metrics.TransitRefresh, 1)
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		DirectionsRefresh:   j.metrics.DirectionsRefresh,
		ParkingRefresh:      j.metrics.ParkingRefresh,
		TransitRefresh:      j.metrics.TransitRefresh,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"directions_refreshes":  m.DirectionsRefresh,
		"parking_refreshes":     m.ParkingRefresh,
		"transit_refreshes":     m.TransitRefresh,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
