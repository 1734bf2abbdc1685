// Package routing provides driving route and travel time estimation.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/curbwise/curbwise/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the given addresses.
	ErrNoRouteFound = errors.New("no route found between the given addresses")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrEmptyAddress indicates an origin or destination address was empty.
	ErrEmptyAddress = errors.New("address must not be empty")
)

// Provider defines the interface for directions/geocoding providers.
type Provider interface {
	// GetDirections retrieves a driving estimate between two free-text addresses.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Geocode resolves a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// TrafficSeverity classifies the current traffic delay on a route.
type TrafficSeverity string

const (
	TrafficLight    TrafficSeverity = "light"
	TrafficModerate TrafficSeverity = "moderate"
	TrafficHeavy    TrafficSeverity = "heavy"
)

// ClassifyTraffic maps a traffic delay in minutes to a severity tier.
// Boundaries: delay <= 5 light, delay <= 15 moderate, else heavy.
func ClassifyTraffic(delayMinutes int) TrafficSeverity {
	switch {
	case delayMinutes <= 5:
		return TrafficLight
	case delayMinutes <= 15:
		return TrafficModerate
	default:
		return TrafficHeavy
	}
}

// DirectionsRequest is the request for a driving estimate.
type DirectionsRequest struct {
	Origin      string
	Destination string
}

// DirectionsResponse is a driving estimate between two addresses.
type DirectionsResponse struct {
	// TravelMinutes is the free-flow driving time.
	TravelMinutes int

	// TrafficAdjustedMinutes is the driving time under current traffic.
	// Always >= TravelMinutes.
	TrafficAdjustedMinutes int

	// DistanceText is a human-readable distance (e.g. "4.2 mi").
	DistanceText string

	// Severity classifies the delay (TrafficAdjustedMinutes - TravelMinutes).
	Severity TrafficSeverity

	// Provider identifies the data source.
	Provider string

	// FetchedAt is when this estimate was produced.
	FetchedAt time.Time
}

// TrafficDelayMinutes returns the delay attributable to traffic.
func (r *DirectionsResponse) TrafficDelayMinutes() int {
	return r.TrafficAdjustedMinutes - r.TravelMinutes
}

// Error provides detailed error information from the directions provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
