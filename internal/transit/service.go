package transit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status summary texts by tier.
const (
	statusTextNormal    = "Service is running normally with good time."
	statusTextDelayed   = "Minor delays reported on some lines. Allow extra travel time."
	statusTextChanged   = "Service changes in effect. Some trains may be rerouted or running on modified schedules."
	statusTextSuspended = "Service suspensions affecting some lines. Expect significant delays and consider alternative routes."
	statusTextFallback  = "Service information temporarily unavailable. Using estimated travel times."
)

// ServiceConfig holds configuration for the transit service.
type ServiceConfig struct {
	// Alerts is the service-alert source (required).
	Alerts AlertSource

	// RNG is the travel-time jitter source. Seeded by the caller so tests
	// are reproducible (required).
	RNG *rand.Rand

	// Now supplies wall-clock time (optional, defaults to time.Now).
	Now func() time.Time

	// Logger for service operations.
	Logger zerolog.Logger

	// AlertCacheTTL is how long fetched alerts stay fresh (default: 5 minutes).
	AlertCacheTTL time.Duration
}

// Service estimates subway trips. Alerts are cached briefly and used in an
// advisory capacity only; an unreachable feed degrades to an estimate with
// an explanatory status, never an error.
type Service struct {
	alerts        AlertSource
	now           func() time.Time
	logger        zerolog.Logger
	alertCacheTTL time.Duration

	mu           sync.Mutex
	rng          *rand.Rand
	cachedAlerts []Alert
	lastFetch    time.Time
}

// NewService creates a new transit service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ttl := cfg.AlertCacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		alerts:        cfg.Alerts,
		rng:           cfg.RNG,
		now:           now,
		logger:        cfg.Logger,
		alertCacheTTL: ttl,
	}
}

// GetRoute estimates a subway trip between two addresses. Never returns an
// error: alert feed failures degrade to an estimate with an explanatory
// status text.
func (s *Service) GetRoute(ctx context.Context, origin, destination string) *Route {
	lines := SuggestLines(origin, destination)

	alerts, feedOK := s.currentAlerts(ctx)

	relevant := make([]Alert, 0)
	for _, alert := range alerts {
		if alert.Affects(lines) {
			relevant = append(relevant, alert)
		}
	}

	tier := classifyTier(relevant)

	s.mu.Lock()
	minutes := 25 + s.rng.Intn(20)
	s.mu.Unlock()

	switch tier {
	case StatusSuspended:
		minutes += 15
	case StatusDelayed:
		minutes += 8
	}

	now := s.now()
	hour := now.Hour()
	if (hour >= 7 && hour <= 10) || (hour >= 17 && hour <= 19) {
		minutes += 5
	}

	if minutes < 15 {
		minutes = 15
	}

	statusText := statusTextForTier(tier)
	if !feedOK {
		statusText = statusTextFallback
	}

	delays := make([]string, 0, len(relevant))
	for _, alert := range relevant {
		delays = append(delays, alert.Description)
	}

	s.logger.Debug().
		Str("origin", origin).
		Str("destination", destination).
		Strs("lines", lines).
		Str("status", string(tier)).
		Int("travel_minutes", minutes).
		Msg("estimated transit route")

	return &Route{
		TravelMinutes: minutes,
		Fare:          Fare,
		Lines:         lines,
		Status:        tier,
		StatusText:    statusText,
		Delays:        delays,
		FetchedAt:     now,
	}
}

// currentAlerts returns the cached alerts, refreshing from the source when
// the cache is stale. The second return reports whether live data (cached or
// fresh) is available. Refresh races are tolerated; alert data is advisory.
// Freshness is tracked by lastFetch, not the slice itself: a quiet feed
// legitimately yields zero alerts and still primes the cache.
func (s *Service) currentAlerts(ctx context.Context) ([]Alert, bool) {
	s.mu.Lock()
	if !s.lastFetch.IsZero() && s.now().Sub(s.lastFetch) < s.alertCacheTTL {
		alerts := s.cachedAlerts
		s.mu.Unlock()
		return alerts, true
	}
	s.mu.Unlock()

	alerts, err := s.alerts.FetchAlerts(ctx)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("source", s.alerts.Name()).
			Msg("failed to fetch transit alerts, degrading to estimate")
		return nil, false
	}

	s.mu.Lock()
	s.cachedAlerts = alerts
	s.lastFetch = s.now()
	s.mu.Unlock()

	return alerts, true
}

// InvalidateAlerts clears the alert cache so the next request refetches.
func (s *Service) InvalidateAlerts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedAlerts = nil
	s.lastFetch = time.Time{}
}

// classifyTier picks the worst condition among the relevant alerts.
// Suspension beats service change beats delay.
func classifyTier(alerts []Alert) StatusTier {
	tier := StatusNormal
	for _, alert := range alerts {
		switch alert.Effect {
		case EffectSuspension:
			return StatusSuspended
		case EffectServiceChange:
			tier = StatusChanged
		case EffectDelay:
			if tier == StatusNormal {
				tier = StatusDelayed
			}
		}
	}
	return tier
}

func statusTextForTier(tier StatusTier) string {
	switch tier {
	case StatusSuspended:
		return statusTextSuspended
	case StatusChanged:
		return statusTextChanged
	case StatusDelayed:
		return statusTextDelayed
	default:
		return statusTextNormal
	}
}
