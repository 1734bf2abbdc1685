package trip_test

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbwise/curbwise/internal/decision"
	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/internal/transit"
	"github.com/curbwise/curbwise/internal/trip"
	"github.com/curbwise/curbwise/pkg/geo"
)

type mockDirections struct {
	resp       *routing.DirectionsResponse
	dirErr     error
	geoErr     error
	callCount  atomic.Int32
	geocodeHit atomic.Int32
}

func (m *mockDirections) GetDirections(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	m.callCount.Add(1)
	if m.dirErr != nil {
		return nil, m.dirErr
	}
	return m.resp, nil
}

func (m *mockDirections) Geocode(_ context.Context, _ string) (geo.Coordinate, error) {
	m.geocodeHit.Add(1)
	if m.geoErr != nil {
		return geo.Coordinate{}, m.geoErr
	}
	return geo.Coordinate{Lat: 40.75, Lng: -73.98}, nil
}

type mockParking struct {
	assessment parking.Assessment
}

func (m *mockParking) Assess(_ string, _ geo.Coordinate) parking.Assessment {
	return m.assessment
}

type mockTransit struct {
	route     *transit.Route
	callCount atomic.Int32
}

func (m *mockTransit) GetRoute(_ context.Context, _, _ string) *transit.Route {
	m.callCount.Add(1)
	return m.route
}

type mockRecommender struct{}

func (mockRecommender) Recommend(_ context.Context, in decision.Input) decision.Recommendation {
	return decision.Decide(in)
}

type mockInsights struct {
	text      string
	callCount atomic.Int32
}

func (m *mockInsights) ParkingInsight(_ context.Context, _ string, _, _ int, _ []string) string {
	m.callCount.Add(1)
	return m.text
}

var analysisTime = time.Date(2026, time.March, 3, 14, 0, 0, 0, time.UTC)

func defaultMocks() (*mockDirections, *mockParking, *mockTransit) {
	directions := &mockDirections{resp: &routing.DirectionsResponse{
		TravelMinutes:          20,
		TrafficAdjustedMinutes: 24,
		DistanceText:           "5.1 mi",
		Severity:               routing.TrafficLight,
		Provider:               "mock",
	}}
	park := &mockParking{assessment: parking.Assessment{
		Score:         6,
		SearchMinutes: 6,
		Narrative:     "Good parking situation.",
	}}
	tran := &mockTransit{route: &transit.Route{
		TravelMinutes: 35,
		Fare:          transit.Fare,
		Lines:         []string{"4", "5", "6"},
		Status:        transit.StatusNormal,
		StatusText:    "Service is running normally with good time.",
		Delays:        []string{},
	}}
	return directions, park, tran
}

func newTestService(d trip.Directions, p trip.ParkingEstimator, tr trip.TransitEstimator, opts ...func(*trip.ServiceConfig)) *trip.Service {
	cfg := trip.ServiceConfig{
		Directions:  d,
		Parking:     p,
		Transit:     tr,
		Recommender: mockRecommender{},
		RNG:         rand.New(rand.NewSource(1)),
		Now:         func() time.Time { return analysisTime },
		Logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return trip.NewService(cfg)
}

func TestService_AnalyzeTrip_Success(t *testing.T) {
	directions, park, tran := defaultMocks()
	svc := newTestService(directions, park, tran)

	result, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "Park Slope, Brooklyn"},
		trip.Location{Address: "Midtown, Manhattan"},
		trip.Preferences{})

	require.NoError(t, err)

	// Driving: 24 traffic-adjusted + 6 parking search.
	assert.Equal(t, 30, result.Driving.TotalMinutes)
	assert.GreaterOrEqual(t, result.Driving.TotalMinutes, result.Driving.TravelMinutes)
	assert.Equal(t, 6, result.Driving.ParkingScore)
	assert.Equal(t, "Good parking situation.", result.Driving.ParkingInsight)

	assert.Equal(t, 35, result.Transit.TravelMinutes)
	assert.Equal(t, transit.Fare, result.Transit.Fare)

	// 30 vs 35: near tie, no delays, decent parking, defaults to transit.
	assert.Equal(t, decision.ModeTransit, result.Recommendation.Winner)
	assert.Equal(t, decision.ConfidenceLow, result.Recommendation.Confidence)

	// No requested arrival: departure is now, leg arrivals are now + total.
	assert.Equal(t, "14:00", result.DepartureTime)
	assert.Equal(t, "14:30", result.Driving.EstimatedArrival)
	assert.Equal(t, "14:35", result.Transit.EstimatedArrival)
	assert.Empty(t, result.RequestedArrival)
}

func TestService_AnalyzeTrip_RequestedArrival(t *testing.T) {
	directions, park, tran := defaultMocks()
	svc := newTestService(directions, park, tran)

	result, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "a"}, trip.Location{Address: "b"},
		trip.Preferences{ArrivalTime: "17:15"})

	require.NoError(t, err)
	assert.Equal(t, "16:45", result.DepartureTime)
	assert.Equal(t, "17:15", result.Driving.EstimatedArrival)
	assert.Equal(t, "17:15", result.Transit.EstimatedArrival)
	assert.Equal(t, "17:15", result.RequestedArrival)
}

func TestService_AnalyzeTrip_EmptyAddressRejectedBeforeEstimators(t *testing.T) {
	directions, park, tran := defaultMocks()
	svc := newTestService(directions, park, tran)

	_, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "origin"}, trip.Location{Address: "   "},
		trip.Preferences{})

	assert.ErrorIs(t, err, trip.ErrInvalidInput)
	assert.Equal(t, int32(0), directions.callCount.Load())
	assert.Equal(t, int32(0), tran.callCount.Load())
}

func TestService_AnalyzeTrip_EstimatorErrorFailsWhole(t *testing.T) {
	directions, park, tran := defaultMocks()
	directions.dirErr = errors.New("upstream exploded")
	svc := newTestService(directions, park, tran)

	result, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "a"}, trip.Location{Address: "b"},
		trip.Preferences{})

	assert.Nil(t, result, "no partial result on aggregate failure")
	assert.ErrorIs(t, err, trip.ErrAnalysisFailed)
}

func TestService_AnalyzeTrip_GeocodeErrorFailsWhole(t *testing.T) {
	directions, park, tran := defaultMocks()
	directions.geoErr = errors.New("geocoder down")
	svc := newTestService(directions, park, tran)

	_, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "a"}, trip.Location{Address: "b"},
		trip.Preferences{})

	assert.ErrorIs(t, err, trip.ErrAnalysisFailed)
}

func TestService_AnalyzeTrip_FreeTierHasNoPremiumAnnotations(t *testing.T) {
	directions, park, tran := defaultMocks()
	insights := &mockInsights{text: "ai insight"}
	svc := newTestService(directions, park, tran, func(cfg *trip.ServiceConfig) {
		cfg.Insights = insights
	})

	result, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "a"}, trip.Location{Address: "b"},
		trip.Preferences{Premium: false})

	require.NoError(t, err)
	assert.Nil(t, result.Driving.ConstructionNotices)
	assert.Nil(t, result.Driving.EventNotices)
	assert.Equal(t, int32(0), insights.callCount.Load())
	assert.Equal(t, "Good parking situation.", result.Driving.ParkingInsight)
}

func TestService_AnalyzeTrip_PremiumInsight(t *testing.T) {
	directions, park, tran := defaultMocks()
	insights := &mockInsights{text: "Park after 6 PM when meters expire."}
	svc := newTestService(directions, park, tran, func(cfg *trip.ServiceConfig) {
		cfg.Insights = insights
	})

	result, err := svc.AnalyzeTrip(context.Background(),
		trip.Location{Address: "a"}, trip.Location{Address: "b"},
		trip.Preferences{Premium: true})

	require.NoError(t, err)
	assert.Equal(t, int32(1), insights.callCount.Load())
	assert.Equal(t, "Park after 6 PM when meters expire.", result.Driving.ParkingInsight)
}

func TestService_AnalyzeTrip_PremiumAnnotationRates(t *testing.T) {
	// Across many analyses the probability gates should produce roughly 30%
	// construction and 20% event annotations, each with at most one entry.
	directions, park, tran := defaultMocks()
	svc := newTestService(directions, park, tran)

	const runs = 400
	construction, events := 0, 0

	for i := 0; i < runs; i++ {
		result, err := svc.AnalyzeTrip(context.Background(),
			trip.Location{Address: "a"}, trip.Location{Address: "b"},
			trip.Preferences{Premium: true})
		require.NoError(t, err)

		assert.LessOrEqual(t, len(result.Driving.ConstructionNotices), 1)
		assert.LessOrEqual(t, len(result.Driving.EventNotices), 1)

		construction += len(result.Driving.ConstructionNotices)
		events += len(result.Driving.EventNotices)
	}

	assert.InDelta(t, 0.30, float64(construction)/runs, 0.08)
	assert.InDelta(t, 0.20, float64(events)/runs, 0.08)
}

func TestService_AnalyzeTrip_InputsNotMutated(t *testing.T) {
	directions, park, tran := defaultMocks()
	svc := newTestService(directions, park, tran)

	origin := trip.Location{Address: "Park Slope, Brooklyn", Coordinates: &geo.Coordinate{Lat: 40.67, Lng: -73.98}}
	destination := trip.Location{Address: "Midtown, Manhattan"}
	prefs := trip.Preferences{ArrivalTime: "17:15", Premium: true}

	originCopy, destCopy, prefsCopy := origin, destination, prefs
	coordCopy := *origin.Coordinates

	_, err := svc.AnalyzeTrip(context.Background(), origin, destination, prefs)
	require.NoError(t, err)

	assert.Equal(t, originCopy.Address, origin.Address)
	assert.Equal(t, coordCopy, *origin.Coordinates)
	assert.Equal(t, destCopy, destination)
	assert.Equal(t, prefsCopy, prefs)
}
