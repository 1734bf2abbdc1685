package googlemaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/internal/routing"
)

func TestClient_GetDirections_Success(t *testing.T) {
	// Load test fixture
	respBody, err := os.ReadFile("testdata/directions_response.json")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/maps/api/directions/json" {
			t.Errorf("expected directions path, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "mock123" {
			t.Errorf("expected key 'mock123', got '%s'", q.Get("key"))
		}
		if q.Get("departure_time") != "now" {
			t.Errorf("expected departure_time 'now', got '%s'", q.Get("departure_time"))
		}
		if q.Get("origin") != "123 Main St, Brooklyn" {
			t.Errorf("unexpected origin: %s", q.Get("origin"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respBody)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	resp, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      "123 Main St, Brooklyn",
		Destination: "Times Square, Manhattan",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Provider != ProviderName {
		t.Errorf("expected provider %s, got %s", ProviderName, resp.Provider)
	}
	if resp.TravelMinutes != 18 {
		t.Errorf("expected travel minutes 18, got %d", resp.TravelMinutes)
	}
	if resp.TrafficAdjustedMinutes != 26 {
		t.Errorf("expected traffic-adjusted minutes 26, got %d", resp.TrafficAdjustedMinutes)
	}
	if resp.DistanceText != "4.2 mi" {
		t.Errorf("expected distance text '4.2 mi', got '%s'", resp.DistanceText)
	}
	// 8 minutes of delay falls in the moderate tier
	if resp.Severity != routing.TrafficModerate {
		t.Errorf("expected moderate severity, got %s", resp.Severity)
	}
}

func TestClient_GetDirections_NoTrafficData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{"legs": [{
				"distance": {"text": "2.0 mi", "value": 3218},
				"duration": {"text": "12 mins", "value": 720}
			}]}]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	resp, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      "A",
		Destination: "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.TrafficAdjustedMinutes != resp.TravelMinutes {
		t.Errorf("expected adjusted to equal base when traffic data missing, got %d vs %d",
			resp.TrafficAdjustedMinutes, resp.TravelMinutes)
	}
	if resp.Severity != routing.TrafficLight {
		t.Errorf("expected light severity, got %s", resp.Severity)
	}
}

func TestClient_GetDirections_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      "nowhere",
		Destination: "anywhere",
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", routingErr.Err)
	}
}

func TestClient_GetDirections_OverQueryLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "You have exceeded your daily request quota", "routes": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      "A",
		Destination: "B",
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrRateLimitExceeded) {
		t.Errorf("expected ErrRateLimitExceeded, got %v", routingErr.Err)
	}
	if !routingErr.IsRetryable() {
		t.Error("expected quota error to be retryable")
	}
}

func TestClient_GetDirections_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      "A",
		Destination: "B",
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", routingErr.Err)
	}
}

func TestClient_Geocode_Success(t *testing.T) {
	respBody, err := os.ReadFile("testdata/geocode_response.json")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("expected geocode path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("address") != "Times Square, Manhattan" {
			t.Errorf("unexpected address: %s", r.URL.Query().Get("address"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respBody)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	coord, err := client.Geocode(context.Background(), "Times Square, Manhattan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if coord.Lat != 40.758 {
		t.Errorf("expected lat 40.758, got %f", coord.Lat)
	}
	if coord.Lng != -73.9855 {
		t.Errorf("expected lng -73.9855, got %f", coord.Lng)
	}
}

func TestClient_Geocode_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: &mockHTTPClient{client: server.Client()},
		Logger:     zerolog.Nop(),
	})

	_, err := client.Geocode(context.Background(), "zzzzzz")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", routingErr.Err)
	}
}

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		seconds int
		want    int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{60, 1},
		{1080, 18},
		{1110, 19},
	}

	for _, tt := range tests {
		if got := roundMinutes(tt.seconds); got != tt.want {
			t.Errorf("roundMinutes(%d) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

// mockHTTPClient wraps http.Client to implement HTTPDoer interface.
type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}
