// Package mta provides a GTFS-Realtime client for the MTA service-alert feed.
package mta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/provider/resilience"
	"github.com/curbwise/curbwise/internal/transit"
)

const (
	// SourceName identifies this alert source.
	SourceName = "mta"

	// DefaultAlertsURL is the MTA subway alerts GTFS-RT feed.
	DefaultAlertsURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/camsys%2Fsubway-alerts"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the MTA client.
type ClientConfig struct {
	// APIKey is sent as the x-api-key header when set.
	APIKey string

	// AlertsURL overrides the feed URL (optional).
	AlertsURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches and decodes the MTA GTFS-RT alerts feed.
type Client struct {
	apiKey     string
	alertsURL  string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new MTA alerts client.
func NewClient(cfg ClientConfig) *Client {
	alertsURL := cfg.AlertsURL
	if alertsURL == "" {
		alertsURL = DefaultAlertsURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(SourceName)
		clientCfg.Timeout = timeout
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		alertsURL:  alertsURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the source identifier.
func (c *Client) Name() string {
	return SourceName
}

// FetchAlerts downloads and decodes the current service alerts.
func (c *Client) FetchAlerts(ctx context.Context) ([]transit.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.alertsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transit.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned status %d", transit.ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading feed body: %v", transit.ErrFeedUnavailable, err)
	}

	feed, err := gtfs.ParseRealtime(body, &gtfs.ParseRealtimeOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", transit.ErrFeedUnavailable, err)
	}

	alerts := make([]transit.Alert, 0, len(feed.Alerts))
	for i := range feed.Alerts {
		alerts = append(alerts, convertAlert(&feed.Alerts[i]))
	}

	c.logger.Debug().
		Int("alert_count", len(alerts)).
		Msg("fetched MTA service alerts")

	return alerts, nil
}

// convertAlert maps a GTFS-RT alert to the domain model.
func convertAlert(a *gtfs.Alert) transit.Alert {
	routes := make([]string, 0, len(a.InformedEntities))
	for _, entity := range a.InformedEntities {
		if entity.RouteID != nil && *entity.RouteID != "" {
			routes = append(routes, normalizeRouteID(*entity.RouteID))
		}
	}

	return transit.Alert{
		ID:          a.ID,
		Routes:      routes,
		Description: alertText(a),
		Effect:      classifyEffect(a.Effect),
	}
}

// alertText prefers the header, falling back to the description.
func alertText(a *gtfs.Alert) string {
	for _, h := range a.Header {
		if h.Text != "" {
			return h.Text
		}
	}
	for _, d := range a.Description {
		if d.Text != "" {
			return d.Text
		}
	}
	return "Service disruption reported"
}

// classifyEffect maps GTFS-RT effects onto the three tiers the estimator
// distinguishes.
func classifyEffect(effect gtfs.AlertEffect) transit.Effect {
	switch effect {
	case gtfs.NoService:
		return transit.EffectSuspension
	case gtfs.ModifiedService, gtfs.Detour, gtfs.ReducedService:
		return transit.EffectServiceChange
	case gtfs.SignificantDelays:
		return transit.EffectDelay
	default:
		return transit.EffectOther
	}
}

// normalizeRouteID strips MTA feed prefixes (e.g. "MTASBWY:N") down to the
// bare line identifier.
func normalizeRouteID(routeID string) string {
	if i := strings.LastIndex(routeID, ":"); i >= 0 {
		return routeID[i+1:]
	}
	return routeID
}
