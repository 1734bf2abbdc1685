// Package parking estimates curbside parking difficulty and generates
// live spot snapshots around a destination.
package parking

import "time"

// Archetype is a coarse destination-area classification that drives the
// parking-difficulty defaults.
type Archetype string

const (
	// ArchetypeDenseCore covers the busiest Manhattan districts.
	ArchetypeDenseCore Archetype = "dense-urban-core"
	// ArchetypeCommercial covers generic commercial corridors.
	ArchetypeCommercial Archetype = "generic-commercial"
	// ArchetypeOuterBorough covers the outer-borough residential zones.
	ArchetypeOuterBorough Archetype = "outer-residential-zone"
	// ArchetypeResidential is the default when no keyword matches.
	ArchetypeResidential Archetype = "residential"
)

// Assessment is a parking-difficulty estimate for a destination.
type Assessment struct {
	// Score rates availability from 1 (worst) to 10 (best).
	Score int

	// SearchMinutes is the expected time to find a spot, in [2, 25].
	SearchMinutes int

	// Narrative is a human-readable summary selected by score tier.
	Narrative string

	// Archetype is the area classification the estimate was based on.
	Archetype Archetype

	// AssessedAt is when this estimate was produced.
	AssessedAt time.Time
}

// Availability is a coarse tier for a single curbside spot.
type Availability string

const (
	AvailabilityHigh   Availability = "high"
	AvailabilityMedium Availability = "medium"
	AvailabilityLow    Availability = "low"
)

// Prediction is a premium-only next-hour availability forecast.
type Prediction struct {
	NextHour   Availability `json:"next_hour"`
	Confidence int          `json:"confidence"`
}

// Spot is a single generated curbside parking spot near the destination.
type Spot struct {
	ID              string       `json:"id"`
	Lat             float64      `json:"lat"`
	Lng             float64      `json:"lng"`
	Availability    Availability `json:"availability"`
	MaxDuration     string       `json:"max_duration"`
	Restrictions    []string     `json:"restrictions"`
	WalkingDistance string       `json:"walking_distance"`
	Score           int          `json:"score"`
	SafetyRating    int          `json:"safety_rating"`

	// Predicted is only populated for premium requests.
	Predicted *Prediction `json:"predicted_availability,omitempty"`
}
