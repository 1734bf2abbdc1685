// Package transit estimates subway trips and tracks service disruptions.
package transit

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Fare is the standard NYC subway fare in USD.
const Fare = 2.90

// Sentinel errors for transit operations.
var (
	// ErrFeedUnavailable indicates the alerts feed could not be fetched or parsed.
	ErrFeedUnavailable = errors.New("transit alerts feed unavailable")
)

// Effect classifies what a service alert does to the affected lines.
type Effect string

const (
	EffectDelay         Effect = "delay"
	EffectServiceChange Effect = "service-change"
	EffectSuspension    Effect = "suspension"
	EffectOther         Effect = "other"
)

// Alert is a system-wide service disruption notice.
type Alert struct {
	// ID uniquely identifies the alert within the feed.
	ID string

	// Routes lists the affected line identifiers (e.g. "4", "N").
	Routes []string

	// Description is the rider-facing alert text.
	Description string

	// Effect classifies the disruption.
	Effect Effect
}

// Affects reports whether the alert touches any of the given lines.
func (a Alert) Affects(lines []string) bool {
	for _, route := range a.Routes {
		for _, line := range lines {
			if route == line {
				return true
			}
		}
	}
	return false
}

// AlertSource fetches the current system-wide service alerts.
type AlertSource interface {
	// FetchAlerts returns all current alerts. Implementations should wrap
	// transport failures in ErrFeedUnavailable.
	FetchAlerts(ctx context.Context) ([]Alert, error)
	// Name returns the source identifier for logging and metrics.
	Name() string
}

// StatusTier is the overall service condition for a selected line group.
type StatusTier string

const (
	StatusNormal    StatusTier = "normal"
	StatusDelayed   StatusTier = "delayed"
	StatusChanged   StatusTier = "changed"
	StatusSuspended StatusTier = "suspended"
)

// Route is a transit trip estimate between two addresses.
type Route struct {
	// TravelMinutes is the estimated trip time, floored at 15.
	TravelMinutes int

	// Fare is the trip cost in USD.
	Fare float64

	// Lines are the suggested subway lines, never empty.
	Lines []string

	// Status is the overall condition of the selected lines.
	Status StatusTier

	// StatusText is the rider-facing status summary.
	StatusText string

	// Delays holds descriptions of alerts affecting the selected lines.
	Delays []string

	// FetchedAt is when this estimate was produced.
	FetchedAt time.Time
}

// HasDelays reports whether any relevant disruption was found.
func (r *Route) HasDelays() bool {
	return len(r.Delays) > 0
}

// Canonical line groupings by NYC geography.
var (
	manhattanLines = []string{"4", "5", "6", "N", "Q", "R", "W"}
	brooklynLines  = []string{"B", "D", "N", "Q", "R"}
	queensLines    = []string{"7", "E", "F", "M", "R"}
	bronxLines     = []string{"4", "5", "6", "A", "D"}
	defaultLines   = []string{"4", "5", "6", "N", "Q", "R"}
)

// SuggestLines maps an origin/destination pair to a canonical line grouping
// by borough keyword. Manhattan wins over the outer boroughs; with no match
// the Manhattan core grouping is returned.
func SuggestLines(origin, destination string) []string {
	o := strings.ToLower(origin)
	d := strings.ToLower(destination)

	contains := func(kw string) bool {
		return strings.Contains(o, kw) || strings.Contains(d, kw)
	}

	switch {
	case contains("manhattan") || contains("midtown"):
		return manhattanLines
	case contains("brooklyn"):
		return brooklynLines
	case contains("queens"):
		return queensLines
	case contains("bronx"):
		return bronxLines
	default:
		return defaultLines
	}
}
