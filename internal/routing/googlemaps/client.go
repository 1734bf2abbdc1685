// Package googlemaps provides a client for the Google Directions and
// Geocoding APIs.
package googlemaps

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/provider/resilience"
	"github.com/curbwise/curbwise/internal/routing"
	"github.com/curbwise/curbwise/pkg/geo"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "googlemaps"

	// DefaultBaseURL is the Google Maps web services base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Maps client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the Google endpoint).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Maps web services client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Google Maps client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections retrieves a driving estimate between two addresses using the
// Directions API with the best-guess traffic model.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	q := url.Values{}
	q.Set("origin", req.Origin)
	q.Set("destination", req.Destination)
	q.Set("departure_time", "now")
	q.Set("traffic_model", "best_guess")
	q.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/directions/json?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Msg("requesting directions from Google Maps")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleHTTPError(resp.StatusCode)
	}

	var dirResp directionsResponse
	if err := json.Unmarshal(respBody, &dirResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if dirResp.Status != "OK" || len(dirResp.Routes) == 0 || len(dirResp.Routes[0].Legs) == 0 {
		return nil, c.handleStatusError(dirResp.Status, dirResp.ErrorMessage)
	}

	result := c.toDirectionsResponse(&dirResp.Routes[0].Legs[0])

	c.logger.Debug().
		Int("travel_minutes", result.TravelMinutes).
		Int("traffic_adjusted_minutes", result.TrafficAdjustedMinutes).
		Str("severity", string(result.Severity)).
		Msg("received directions from Google Maps")

	return result, nil
}

// Geocode resolves an address to coordinates using the Geocoding API.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/geocode/json?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return geo.Coordinate{}, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, c.handleHTTPError(resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.Unmarshal(respBody, &geoResp); err != nil {
		return geo.Coordinate{}, fmt.Errorf("decoding response: %w", err)
	}

	if geoResp.Status != "OK" || len(geoResp.Results) == 0 {
		return geo.Coordinate{}, &routing.Error{
			Provider: ProviderName,
			Code:     geoResp.Status,
			Message:  "geocoding returned no results",
			Err:      routing.ErrNoRouteFound,
		}
	}

	loc := geoResp.Results[0].Geometry.Location
	return geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// toDirectionsResponse converts a Directions API leg to the domain model.
func (c *Client) toDirectionsResponse(l *leg) *routing.DirectionsResponse {
	travelMinutes := roundMinutes(l.Duration.Value)

	adjusted := travelMinutes
	if l.DurationInTraffic != nil {
		adjusted = roundMinutes(l.DurationInTraffic.Value)
	}
	if adjusted < travelMinutes {
		adjusted = travelMinutes
	}

	return &routing.DirectionsResponse{
		TravelMinutes:          travelMinutes,
		TrafficAdjustedMinutes: adjusted,
		DistanceText:           l.Distance.Text,
		Severity:               routing.ClassifyTraffic(adjusted - travelMinutes),
		Provider:               ProviderName,
		FetchedAt:              time.Now(),
	}
}

// handleHTTPError maps transport-level failures to domain errors.
func (c *Client) handleHTTPError(statusCode int) error {
	code := fmt.Sprintf("HTTP_%d", statusCode)
	if statusCode == http.StatusTooManyRequests {
		return &routing.Error{
			Provider: ProviderName,
			Code:     code,
			Message:  "directions provider rate limit exceeded",
			Err:      routing.ErrRateLimitExceeded,
		}
	}
	return &routing.Error{
		Provider: ProviderName,
		Code:     code,
		Message:  "directions provider returned an error",
		Err:      routing.ErrProviderUnavailable,
	}
}

// handleStatusError maps Directions API status strings to domain errors.
func (c *Client) handleStatusError(status, message string) error {
	switch status {
	case "ZERO_RESULTS", "NOT_FOUND":
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "no routes found",
			Err:      routing.ErrNoRouteFound,
		}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "directions provider quota exceeded",
			Err:      routing.ErrRateLimitExceeded,
		}
	default:
		msg := "directions provider returned status " + status
		if message != "" {
			msg += ": " + message
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  msg,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// roundMinutes converts seconds to whole minutes, rounding to nearest.
func roundMinutes(seconds int) int {
	return (seconds + 30) / 60
}
