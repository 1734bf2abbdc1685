// Package decision compares driving and transit legs and produces a
// recommendation with a confidence level and rider-facing justification.
package decision

import (
	"fmt"

	"github.com/curbwise/curbwise/internal/routing"
)

// Mode is the recommended travel mode.
type Mode string

const (
	ModeDriving Mode = "driving"
	ModeTransit Mode = "transit"
)

// Confidence reflects the magnitude of the time difference between the legs.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Thresholds for the branch selection. nearTie bounds the low-signal band;
// the advantage cutoffs set confidence.
const (
	nearTieMinutes        = 5
	highAdvantageMinutes  = 15
	mediumAdvantageMinute = 8
	difficultParkingScore = 4
)

// Input carries the signals the engine decides on.
type Input struct {
	// DrivingTotalMinutes is traffic-adjusted drive time plus parking search.
	DrivingTotalMinutes int

	// TransitTotalMinutes is the transit travel time.
	TransitTotalMinutes int

	// ParkingScore rates destination parking from 1 (worst) to 10 (best).
	ParkingScore int

	// ParkingSearchMinutes is the expected spot search time.
	ParkingSearchMinutes int

	// TrafficSeverity is the current driving-traffic tier.
	TrafficSeverity routing.TrafficSeverity

	// TransitHasDelays reports whether any relevant service alert is active.
	TransitHasDelays bool
}

// Recommendation is the engine's verdict.
type Recommendation struct {
	Winner     Mode       `json:"winner"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
	Summary    string     `json:"summary"`
}

// Decide is a pure function from the input signals to a recommendation.
// Near ties (within 5 minutes) are broken by secondary signals and default
// to transit; larger gaps map advantage to confidence, with one parking
// override when driving's edge is small.
func Decide(in Input) Recommendation {
	diff := in.DrivingTotalMinutes - in.TransitTotalMinutes
	if diff < 0 {
		diff = -diff
	}

	parkingDifficult := in.ParkingScore <= difficultParkingScore

	if diff <= nearTieMinutes {
		return decideNearTie(in, parkingDifficult)
	}

	if in.DrivingTotalMinutes < in.TransitTotalMinutes {
		return decideDrivingFaster(in, parkingDifficult)
	}
	return decideTransitFaster(in)
}

func decideNearTie(in Input, parkingDifficult bool) Recommendation {
	switch {
	case in.TransitHasDelays && !parkingDifficult:
		return Recommendation{
			Winner:     ModeDriving,
			Confidence: ConfidenceLow,
			Reasoning: fmt.Sprintf("It's a close call time-wise, but current transit delays tip the scales toward driving. "+
				"With a parking score of %d/10, you should be able to find a spot without too much trouble.", in.ParkingScore),
			Summary: "Drive today! Transit delays make driving the slightly better choice despite similar travel times.",
		}
	case parkingDifficult && !in.TransitHasDelays:
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceLow,
			Reasoning: fmt.Sprintf("Both options take about the same time, but parking will be challenging with a score of %d/10. "+
				"Transit is running smoothly and will save you the parking hassle.", in.ParkingScore),
			Summary: "Take transit! Similar travel times, but parking is tough and transit is running well.",
		}
	case in.TrafficSeverity == routing.TrafficHeavy:
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceLow,
			Reasoning: "Travel times are close, but heavy traffic makes driving unpredictable. " +
				"Transit provides more reliable timing even if it's not faster.",
			Summary: "Transit wins! Heavy traffic makes driving unreliable despite similar ETAs.",
		}
	default:
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceLow,
			Reasoning: "It's essentially a tie on time, but transit saves money on gas and parking fees " +
				"while being more environmentally friendly.",
			Summary: "Slight edge to transit. Times are similar, but you'll save money and avoid parking stress.",
		}
	}
}

func decideDrivingFaster(in Input, parkingDifficult bool) Recommendation {
	advantage := in.TransitTotalMinutes - in.DrivingTotalMinutes

	switch {
	case advantage >= highAdvantageMinutes:
		return Recommendation{
			Winner:     ModeDriving,
			Confidence: ConfidenceHigh,
			Reasoning: fmt.Sprintf("Driving saves you %d minutes today. Even accounting for parking (%d min estimated), "+
				"you'll arrive significantly faster.", advantage, in.ParkingSearchMinutes),
			Summary: fmt.Sprintf("Drive! You'll save %d minutes even with parking time included.", advantage),
		}
	case advantage >= mediumAdvantageMinute:
		return Recommendation{
			Winner:     ModeDriving,
			Confidence: ConfidenceMedium,
			Reasoning: fmt.Sprintf("Driving gives you a %d-minute advantage. With current traffic conditions and "+
				"parking availability, it's the faster choice today.", advantage),
			Summary: fmt.Sprintf("Drive today! %d-minute advantage makes it worth the trip.", advantage),
		}
	case parkingDifficult:
		// Parking risk negates a small time edge.
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceLow,
			Reasoning: fmt.Sprintf("While driving might be %d minutes faster, the parking difficulty (score: %d/10) "+
				"could easily eat up that advantage and add stress.", advantage, in.ParkingScore),
			Summary: "Transit recommended. Parking challenges offset driving's small time advantage.",
		}
	default:
		return Recommendation{
			Winner:     ModeDriving,
			Confidence: ConfidenceLow,
			Reasoning: fmt.Sprintf("Driving has a modest %d-minute advantage, and parking looks manageable "+
				"with a score of %d/10.", advantage, in.ParkingScore),
			Summary: "Drive! Small time advantage and decent parking make it worthwhile.",
		}
	}
}

func decideTransitFaster(in Input) Recommendation {
	advantage := in.DrivingTotalMinutes - in.TransitTotalMinutes

	switch {
	case advantage >= highAdvantageMinutes:
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceHigh,
			Reasoning: fmt.Sprintf("Transit is %d minutes faster today. Current traffic conditions and parking "+
				"challenges make the subway your clear winner.", advantage),
			Summary: fmt.Sprintf("Take the subway! %d-minute advantage plus no parking hassles.", advantage),
		}
	case advantage >= mediumAdvantageMinute:
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceMedium,
			Reasoning: fmt.Sprintf("Transit saves you %d minutes and eliminates parking stress. With current "+
				"service conditions, it's the smarter choice.", advantage),
			Summary: fmt.Sprintf("Transit wins! %d minutes faster and no parking worries.", advantage),
		}
	default:
		// Transit keeps a medium rating at small advantages; cost and stress
		// factors favor it even when the gap is narrow.
		return Recommendation{
			Winner:     ModeTransit,
			Confidence: ConfidenceMedium,
			Reasoning: fmt.Sprintf("Transit has a %d-minute edge and saves you from dealing with traffic and "+
				"parking. The subway is your reliable choice today.", advantage),
			Summary: "Transit recommended. Faster travel time plus avoiding traffic and parking stress.",
		}
	}
}
