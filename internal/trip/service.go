package trip

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/curbwise/curbwise/internal/decision"
	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/internal/transit"
	"github.com/curbwise/curbwise/pkg/geo"
)

// departureLeadMinutes is the fixed heuristic between suggested departure
// and a requested arrival.
const departureLeadMinutes = 30

// Premium annotation catalogs and their probability gates.
var (
	constructionCatalog = []string{
		"FDR Drive southbound lane closure near Brooklyn Bridge",
		"Water main work on 42nd Street causing delays",
		"Con Edison utility work on Madison Avenue",
		"DOT street resurfacing on 8th Avenue",
	}

	eventCatalog = []string{
		"Yankees game ending at 4:30 PM - expect heavy traffic near stadium",
		"Street fair on Broadway between 14th-23rd Street",
		"Film production causing street closures in SoHo",
		"Marathon route affecting East Side traffic until 2 PM",
	}
)

const (
	constructionAlertChance = 0.30
	eventAlertChance        = 0.20
)

// Directions resolves driving estimates and coordinates.
type Directions interface {
	GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error)
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
}

// ParkingEstimator assesses destination parking difficulty.
type ParkingEstimator interface {
	Assess(destination string, coord geo.Coordinate) parking.Assessment
}

// TransitEstimator estimates the transit leg.
type TransitEstimator interface {
	GetRoute(ctx context.Context, origin, destination string) *transit.Route
}

// Recommender turns the joined signals into a recommendation.
type Recommender interface {
	Recommend(ctx context.Context, in decision.Input) decision.Recommendation
}

// InsightProvider generates the premium parking insight text. Implementations
// must degrade internally; this call cannot fail.
type InsightProvider interface {
	ParkingInsight(ctx context.Context, location string, score, searchMinutes int, restrictions []string) string
}

// ServiceConfig holds configuration for the trip service.
type ServiceConfig struct {
	// Directions is the driving estimator (required).
	Directions Directions

	// Parking is the parking estimator (required).
	Parking ParkingEstimator

	// Transit is the transit estimator (required).
	Transit TransitEstimator

	// Recommender is the decision engine (required).
	Recommender Recommender

	// Insights optionally generates premium parking insight text.
	Insights InsightProvider

	// RNG drives the premium annotation gates. Seeded by the caller so
	// tests are reproducible (required).
	RNG *rand.Rand

	// Now supplies wall-clock time (optional, defaults to time.Now).
	Now func() time.Time

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service coordinates the estimators and the decision engine. The driving
// pipeline (directions, geocode, parking) and the transit pipeline run
// concurrently and join before the decision.
type Service struct {
	directions  Directions
	parking     ParkingEstimator
	transit     TransitEstimator
	recommender Recommender
	insights    InsightProvider
	now         func() time.Time
	logger      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new trip service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		directions:  cfg.Directions,
		parking:     cfg.Parking,
		transit:     cfg.Transit,
		recommender: cfg.Recommender,
		insights:    cfg.Insights,
		rng:         cfg.RNG,
		now:         now,
		logger:      cfg.Logger,
	}
}

// AnalyzeTrip runs the full driving-vs-transit analysis. A true estimator
// error voids the whole analysis; estimators degrading to fallback data do
// not count as errors.
func (s *Service) AnalyzeTrip(ctx context.Context, origin, destination Location, prefs Preferences) (*AnalysisResult, error) {
	if strings.TrimSpace(origin.Address) == "" || strings.TrimSpace(destination.Address) == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()

	var (
		drivingLeg DrivingLeg
		transitLeg TransitLeg
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		leg, err := s.analyzeDriving(gctx, origin.Address, destination.Address, prefs, now)
		if err != nil {
			return err
		}
		drivingLeg = *leg
		return nil
	})

	g.Go(func() error {
		transitLeg = s.analyzeTransit(gctx, origin.Address, destination.Address, prefs, now)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).
			Str("origin", origin.Address).
			Str("destination", destination.Address).
			Msg("trip analysis failed")
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	rec := s.recommender.Recommend(ctx, decision.Input{
		DrivingTotalMinutes:  drivingLeg.TotalMinutes,
		TransitTotalMinutes:  transitLeg.TravelMinutes,
		ParkingScore:         drivingLeg.ParkingScore,
		ParkingSearchMinutes: drivingLeg.ParkingSearchMinutes,
		TrafficSeverity:      drivingLeg.TrafficSeverity,
		TransitHasDelays:     len(transitLeg.Delays) > 0,
	})

	s.logger.Info().
		Str("origin", origin.Address).
		Str("destination", destination.Address).
		Str("winner", string(rec.Winner)).
		Str("confidence", string(rec.Confidence)).
		Int("driving_total", drivingLeg.TotalMinutes).
		Int("transit_total", transitLeg.TravelMinutes).
		Msg("trip analyzed")

	return &AnalysisResult{
		Driving:          drivingLeg,
		Transit:          transitLeg,
		Recommendation:   rec,
		DepartureTime:    s.departureTime(prefs.ArrivalTime, now),
		RequestedArrival: prefs.ArrivalTime,
	}, nil
}

// analyzeDriving runs directions, geocoding, and parking in sequence; the
// parking assessment needs resolved coordinates.
func (s *Service) analyzeDriving(ctx context.Context, origin, destination string, prefs Preferences, now time.Time) (*DrivingLeg, error) {
	dirs, err := s.directions.GetDirections(ctx, routing.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
	})
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}

	coord, err := s.directions.Geocode(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("geocoding: %w", err)
	}

	assessment := s.parking.Assess(destination, coord)

	totalMinutes := dirs.TrafficAdjustedMinutes + assessment.SearchMinutes

	leg := &DrivingLeg{
		TravelMinutes:          dirs.TravelMinutes,
		TrafficAdjustedMinutes: dirs.TrafficAdjustedMinutes,
		DistanceText:           dirs.DistanceText,
		TrafficSeverity:        dirs.Severity,
		ParkingScore:           assessment.Score,
		ParkingSearchMinutes:   assessment.SearchMinutes,
		TotalMinutes:           totalMinutes,
		EstimatedArrival:       s.arrivalTime(totalMinutes, prefs.ArrivalTime, now),
		ParkingInsight:         assessment.Narrative,
	}

	if prefs.Premium {
		leg.ConstructionNotices = s.drawAnnotation(constructionCatalog, constructionAlertChance)
		leg.EventNotices = s.drawAnnotation(eventCatalog, eventAlertChance)

		if s.insights != nil {
			leg.ParkingInsight = s.insights.ParkingInsight(ctx, destination,
				assessment.Score, assessment.SearchMinutes,
				[]string{"Meter required", "Street cleaning rules apply"})
		}
	}

	return leg, nil
}

func (s *Service) analyzeTransit(ctx context.Context, origin, destination string, prefs Preferences, now time.Time) TransitLeg {
	route := s.transit.GetRoute(ctx, origin, destination)

	return TransitLeg{
		TravelMinutes:    route.TravelMinutes,
		Fare:             route.Fare,
		Lines:            route.Lines,
		StatusText:       route.StatusText,
		Delays:           route.Delays,
		EstimatedArrival: s.arrivalTime(route.TravelMinutes, prefs.ArrivalTime, now),
	}
}

// drawAnnotation returns zero or one catalog entry behind a probability gate.
func (s *Service) drawAnnotation(catalog []string, chance float64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() >= chance {
		return nil
	}
	return []string{catalog[s.rng.Intn(len(catalog))]}
}

// departureTime derives the suggested departure: requested arrival minus the
// fixed lead, or now when no arrival was requested.
func (s *Service) departureTime(arrivalTime string, now time.Time) string {
	if arrivalTime == "" {
		return now.Format("15:04")
	}

	parsed, err := time.Parse("15:04", arrivalTime)
	if err != nil {
		return now.Format("15:04")
	}

	arrival := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	return arrival.Add(-departureLeadMinutes * time.Minute).Format("15:04")
}

// arrivalTime pins a leg's arrival to the requested time when set, otherwise
// now plus the leg's total minutes.
func (s *Service) arrivalTime(totalMinutes int, requestedArrival string, now time.Time) string {
	if requestedArrival != "" {
		return requestedArrival
	}
	return now.Add(time.Duration(totalMinutes) * time.Minute).Format("15:04")
}
