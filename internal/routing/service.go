package routing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/pkg/geo"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the directions data provider.
	Provider Provider

	// Fallback produces local estimates when the provider fails (required).
	Fallback *FallbackEstimator

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache directions (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors before
	// resorting to the fallback estimator (default: 15 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration
}

// Service provides driving estimates with caching and guaranteed fallback.
// It never returns an error for a well-formed request: when the provider is
// unreachable and no stale data exists, a locally generated estimate is
// returned instead.
type Service struct {
	provider        Provider
	fallback        *FallbackEstimator
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedDirections
	lastCleanup time.Time
}

type cachedDirections struct {
	response  *DirectionsResponse
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 15 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		fallback:        cfg.Fallback,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedDirections),
	}
}

// GetDirections returns a driving estimate between two addresses.
// Uses cached data if available and not expired.
func (s *Service) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "EMPTY_ADDRESS",
			Message:  "origin and destination are required",
			Err:      ErrEmptyAddress,
		}
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for directions")
		return cached.response, nil
	}
	s.mu.RUnlock()

	return s.fetchDirections(ctx, req, cacheKey)
}

// Geocode resolves the destination address, degrading to a borough-centroid
// guess when the provider is unreachable.
func (s *Service) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return geo.Coordinate{}, ErrEmptyAddress
	}

	coord, err := s.provider.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("address", address).
			Msg("geocoding failed, using borough centroid fallback")
		return s.fallback.Geocode(address), nil
	}
	return coord, nil
}

// fetchDirections fetches from provider and updates cache. On provider error
// it serves stale data if fresh enough, otherwise the fallback estimate.
func (s *Service) fetchDirections(ctx context.Context, req DirectionsRequest, cacheKey string) (*DirectionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.response, nil
	}

	s.logger.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Str("provider", s.provider.Name()).
		Msg("fetching directions from provider")

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Msg("failed to fetch directions")

		// Stale-if-error: prefer real (if old) data over a synthetic estimate.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale directions due to provider error")
				return cached.response, nil
			}
		}

		fb := s.fallback.Estimate(req.Origin, req.Destination)
		s.logger.Warn().
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Msg("serving fallback driving estimate")
		return fb, nil
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedDirections{
		response:  resp,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded()

	return resp, nil
}

// cacheKey normalizes the origin/destination pair into a cache key.
func (s *Service) cacheKey(req DirectionsRequest) string {
	return strings.ToLower(strings.TrimSpace(req.Origin)) + "|" + strings.ToLower(strings.TrimSpace(req.Destination))
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
// Caller must hold the write lock.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired directions cache entries")
	}
}

// InvalidateCache clears all cached directions.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedDirections)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
