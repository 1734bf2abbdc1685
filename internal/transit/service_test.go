package transit_test

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbwise/curbwise/internal/transit"
)

// mockAlertSource is a configurable alert source for tests.
type mockAlertSource struct {
	alerts     []transit.Alert
	err        error
	fetchCount atomic.Int32
}

func (m *mockAlertSource) FetchAlerts(_ context.Context) ([]transit.Alert, error) {
	m.fetchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *mockAlertSource) Name() string { return "mock" }

func newTestService(source transit.AlertSource, seed int64, now time.Time) *transit.Service {
	return transit.NewService(transit.ServiceConfig{
		Alerts: source,
		RNG:    rand.New(rand.NewSource(seed)),
		Now:    func() time.Time { return now },
		Logger: zerolog.Nop(),
	})
}

// offPeak is a weekday evening outside rush hour.
var offPeak = time.Date(2026, time.March, 3, 21, 0, 0, 0, time.UTC)

func TestSuggestLines(t *testing.T) {
	tests := []struct {
		origin, destination string
		want                []string
	}{
		{"Midtown Manhattan", "Chelsea", []string{"4", "5", "6", "N", "Q", "R", "W"}},
		{"Park Slope, Brooklyn", "somewhere", []string{"B", "D", "N", "Q", "R"}},
		{"home", "Astoria, Queens", []string{"7", "E", "F", "M", "R"}},
		{"Yankee Stadium, Bronx", "downtown", []string{"4", "5", "6", "A", "D"}},
		{"here", "there", []string{"4", "5", "6", "N", "Q", "R"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, transit.SuggestLines(tt.origin, tt.destination), "%s -> %s", tt.origin, tt.destination)
	}
}

func TestService_GetRoute_Normal(t *testing.T) {
	source := &mockAlertSource{}
	svc := newTestService(source, 1, offPeak)

	route := svc.GetRoute(context.Background(), "Park Slope, Brooklyn", "Midtown Manhattan")

	assert.GreaterOrEqual(t, route.TravelMinutes, 15)
	assert.LessOrEqual(t, route.TravelMinutes, 44)
	assert.Equal(t, transit.Fare, route.Fare)
	assert.NotEmpty(t, route.Lines)
	assert.Equal(t, transit.StatusNormal, route.Status)
	assert.Empty(t, route.Delays)
	assert.False(t, route.HasDelays())
}

func TestService_GetRoute_DelayAlert(t *testing.T) {
	source := &mockAlertSource{alerts: []transit.Alert{
		{ID: "1", Routes: []string{"4", "5", "6"}, Description: "Signal problems causing minor delays", Effect: transit.EffectDelay},
	}}

	base := newTestService(&mockAlertSource{}, 9, offPeak).
		GetRoute(context.Background(), "x", "y")
	delayed := newTestService(source, 9, offPeak).
		GetRoute(context.Background(), "x", "y")

	assert.Equal(t, transit.StatusDelayed, delayed.Status)
	assert.Equal(t, base.TravelMinutes+8, delayed.TravelMinutes)
	assert.Equal(t, []string{"Signal problems causing minor delays"}, delayed.Delays)
}

func TestService_GetRoute_SuspensionBeatsDelay(t *testing.T) {
	source := &mockAlertSource{alerts: []transit.Alert{
		{ID: "1", Routes: []string{"N"}, Description: "minor delays", Effect: transit.EffectDelay},
		{ID: "2", Routes: []string{"Q"}, Description: "service suspended", Effect: transit.EffectSuspension},
	}}

	base := newTestService(&mockAlertSource{}, 9, offPeak).
		GetRoute(context.Background(), "x", "y")
	suspended := newTestService(source, 9, offPeak).
		GetRoute(context.Background(), "x", "y")

	assert.Equal(t, transit.StatusSuspended, suspended.Status)
	assert.Equal(t, base.TravelMinutes+15, suspended.TravelMinutes)
	assert.Len(t, suspended.Delays, 2)
}

func TestService_GetRoute_IrrelevantAlertsFiltered(t *testing.T) {
	// The L does not appear in any default grouping.
	source := &mockAlertSource{alerts: []transit.Alert{
		{ID: "1", Routes: []string{"L"}, Description: "crowding at stations", Effect: transit.EffectDelay},
	}}
	svc := newTestService(source, 2, offPeak)

	route := svc.GetRoute(context.Background(), "x", "y")

	assert.Equal(t, transit.StatusNormal, route.Status)
	assert.Empty(t, route.Delays)
}

func TestService_GetRoute_RushHourSurcharge(t *testing.T) {
	rush := time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)

	base := newTestService(&mockAlertSource{}, 5, offPeak).
		GetRoute(context.Background(), "x", "y")
	peak := newTestService(&mockAlertSource{}, 5, rush).
		GetRoute(context.Background(), "x", "y")

	assert.Equal(t, base.TravelMinutes+5, peak.TravelMinutes)
}

func TestService_GetRoute_FeedFailureDegrades(t *testing.T) {
	source := &mockAlertSource{err: transit.ErrFeedUnavailable}
	svc := newTestService(source, 3, offPeak)

	route := svc.GetRoute(context.Background(), "x", "y")

	assert.GreaterOrEqual(t, route.TravelMinutes, 15)
	assert.Equal(t, transit.StatusNormal, route.Status)
	assert.Contains(t, route.StatusText, "temporarily unavailable")
	assert.Empty(t, route.Delays)
}

func TestService_AlertCache(t *testing.T) {
	// A quiet feed: the source returns a nil alert slice, which must still
	// prime the cache.
	source := &mockAlertSource{}
	svc := newTestService(source, 4, offPeak)

	svc.GetRoute(context.Background(), "x", "y")
	svc.GetRoute(context.Background(), "x", "y")

	assert.Equal(t, int32(1), source.fetchCount.Load(), "second request should use cached alerts")

	svc.InvalidateAlerts()
	svc.GetRoute(context.Background(), "x", "y")

	assert.Equal(t, int32(2), source.fetchCount.Load())
}

func TestService_GetRoute_FloorAt15(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		svc := newTestService(&mockAlertSource{}, seed, offPeak)
		route := svc.GetRoute(context.Background(), "x", "y")
		require.GreaterOrEqual(t, route.TravelMinutes, 15)
	}
}

func TestAlert_Affects(t *testing.T) {
	alert := transit.Alert{Routes: []string{"N", "Q"}}

	assert.True(t, alert.Affects([]string{"4", "5", "6", "N"}))
	assert.False(t, alert.Affects([]string{"7", "E", "F"}))
	assert.False(t, transit.Alert{}.Affects([]string{"N"}))
}
