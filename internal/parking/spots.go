package parking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/curbwise/curbwise/pkg/geo"
)

// Spot generation catalogs. Durations and restrictions mirror typical NYC
// curbside signage.
var (
	spotDurations = []string{
		"30 minutes", "1 hour", "2 hours", "3 hours", "Unlimited",
	}

	spotRestrictions = [][]string{
		{"Meter required 8AM-6PM"},
		{"1hr parking Mon-Fri 9AM-6PM"},
		{"Loading zone 7AM-7PM", "Meter required"},
		{"Residential parking only"},
		{"No parking street cleaning Tue 11AM-12:30PM"},
		{"Alternate side parking in effect"},
	}

	availabilityTiers = []Availability{
		AvailabilityHigh, AvailabilityMedium, AvailabilityLow,
	}
)

// Spots generates a snapshot of 4 to 8 curbside spots scattered around the
// given center. Premium requests additionally carry a next-hour availability
// prediction per spot.
func (e *Estimator) Spots(center geo.Coordinate, premium bool) []Spot {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 4 + e.rng.Intn(5)
	spots := make([]Spot, 0, count)

	for i := 0; i < count; i++ {
		availability := availabilityTiers[e.rng.Intn(len(availabilityTiers))]

		spot := Spot{
			ID:              uuid.NewString(),
			Lat:             center.Lat + (e.rng.Float64()-0.5)*0.006,
			Lng:             center.Lng + (e.rng.Float64()-0.5)*0.006,
			Availability:    availability,
			MaxDuration:     spotDurations[e.rng.Intn(len(spotDurations))],
			Restrictions:    spotRestrictions[e.rng.Intn(len(spotRestrictions))],
			WalkingDistance: fmt.Sprintf("%d min walk", 1+e.rng.Intn(7)),
			Score:           e.spotScore(availability),
			SafetyRating:    5 + e.rng.Intn(6),
		}

		if premium {
			spot.Predicted = &Prediction{
				NextHour:   availabilityTiers[e.rng.Intn(len(availabilityTiers))],
				Confidence: 60 + e.rng.Intn(36),
			}
		}

		spots = append(spots, spot)
	}

	return spots
}

// spotScore derives a 1-10 score consistent with the availability tier.
// Caller must hold the mutex.
func (e *Estimator) spotScore(availability Availability) int {
	switch availability {
	case AvailabilityHigh:
		return 8 + e.rng.Intn(3)
	case AvailabilityMedium:
		return 5 + e.rng.Intn(3)
	default:
		return 2 + e.rng.Intn(3)
	}
}
