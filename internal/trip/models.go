// Package trip orchestrates the driving and transit estimators into a single
// mode recommendation for one journey.
package trip

import (
	"errors"

	"github.com/curbwise/curbwise/internal/decision"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/pkg/geo"
)

// Sentinel errors for trip analysis.
var (
	// ErrInvalidInput indicates a missing origin or destination address.
	ErrInvalidInput = errors.New("origin and destination addresses are required")
	// ErrAnalysisFailed indicates an estimator failed unrecoverably. The
	// whole analysis is void; callers should retry the entire request.
	ErrAnalysisFailed = errors.New("failed to analyze trip options")
)

// Location is one endpoint of a trip.
type Location struct {
	// Address is free-text, required.
	Address string `json:"address"`

	// Coordinates are optional; estimators resolve them when absent.
	Coordinates *geo.Coordinate `json:"coordinates,omitempty"`
}

// Preferences carries per-request analysis options.
type Preferences struct {
	// ArrivalTime is an optional desired arrival, "HH:MM" 24-hour.
	ArrivalTime string `json:"arrival_time,omitempty"`

	// Language is a locale tag, presentation-only.
	Language string `json:"language,omitempty"`

	// Notifications is presentation-only.
	Notifications bool `json:"notifications,omitempty"`

	// Premium enables construction/event annotations and AI parking insight.
	Premium bool `json:"premium,omitempty"`
}

// DrivingLeg is the driving-mode estimate of an analysis.
type DrivingLeg struct {
	TravelMinutes          int                     `json:"travel_minutes"`
	TrafficAdjustedMinutes int                     `json:"traffic_adjusted_minutes"`
	DistanceText           string                  `json:"distance"`
	TrafficSeverity        routing.TrafficSeverity `json:"traffic_severity"`
	ParkingScore           int                     `json:"parking_score"`
	ParkingSearchMinutes   int                     `json:"parking_search_minutes"`

	// TotalMinutes is traffic-adjusted drive time plus parking search.
	TotalMinutes int `json:"total_minutes"`

	EstimatedArrival string `json:"estimated_arrival"`
	ParkingInsight   string `json:"parking_insight"`

	// Premium-only annotations.
	ConstructionNotices []string `json:"construction_notices,omitempty"`
	EventNotices        []string `json:"event_notices,omitempty"`
}

// TransitLeg is the transit-mode estimate of an analysis.
type TransitLeg struct {
	TravelMinutes    int      `json:"travel_minutes"`
	Fare             float64  `json:"fare"`
	Lines            []string `json:"lines"`
	StatusText       string   `json:"service_status"`
	Delays           []string `json:"delays"`
	EstimatedArrival string   `json:"estimated_arrival"`
}

// AnalysisResult is the complete verdict for one trip. Constructed fresh per
// request and immutable once returned.
type AnalysisResult struct {
	Driving        DrivingLeg              `json:"driving"`
	Transit        TransitLeg              `json:"transit"`
	Recommendation decision.Recommendation `json:"recommendation"`

	// DepartureTime is "HH:MM": requested arrival minus 30 minutes, or the
	// analysis wall-clock time when no arrival was requested.
	DepartureTime string `json:"departure_time,omitempty"`

	// RequestedArrival echoes the preference, when set.
	RequestedArrival string `json:"arrival_time,omitempty"`
}
