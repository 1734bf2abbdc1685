package gemini

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbwise/curbwise/internal/decision"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		RNG:        rand.New(rand.NewSource(1)),
		Logger:     zerolog.Nop(),
	})
	return client
}

func modelReply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	resp := generateResponse{
		Candidates: []candidate{{Content: content{Parts: []part{{Text: text}}}}},
	}
	enc, _ := json.Marshal(resp)
	w.Write(enc)
}

func TestClient_Advise_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "mock123", r.URL.Query().Get("key"))
		modelReply(w, "Here you go:\n{\"winner\": \"transit\", \"confidence\": \"high\", \"reasoning\": \"richer reasoning\", \"summary\": \"richer summary\"}")
	})

	ruled := decision.Recommendation{
		Winner:     decision.ModeTransit,
		Confidence: decision.ConfidenceHigh,
		Reasoning:  "rule reasoning",
		Summary:    "rule summary",
	}

	got, err := client.Advise(context.Background(), decision.Input{
		DrivingTotalMinutes: 40,
		TransitTotalMinutes: 20,
		ParkingScore:        5,
	}, ruled)

	require.NoError(t, err)
	assert.Equal(t, decision.ModeTransit, got.Winner)
	assert.Equal(t, decision.ConfidenceHigh, got.Confidence)
	assert.Equal(t, "richer reasoning", got.Reasoning)
	assert.Equal(t, "richer summary", got.Summary)
}

func TestClient_Advise_NoJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(w, "I cannot help with that.")
	})

	_, err := client.Advise(context.Background(), decision.Input{}, decision.Recommendation{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_Advise_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Advise(context.Background(), decision.Input{}, decision.Recommendation{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ParkingInsight_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(w, "  Park after 6 PM when meters expire.  ")
	})

	insight := client.ParkingInsight(context.Background(), "SoHo", 3, 18, []string{"Meter required"})
	assert.Equal(t, "Park after 6 PM when meters expire.", insight)
}

func TestClient_ParkingInsight_FallbackTiers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	high := client.ParkingInsight(context.Background(), "Bay Ridge", 8, 4, nil)
	assert.Contains(t, high, "Great parking area")

	medium := client.ParkingInsight(context.Background(), "Broadway", 5, 10, nil)
	assert.Contains(t, medium, "Moderate parking challenge")

	low := client.ParkingInsight(context.Background(), "Midtown", 2, 18, nil)
	assert.Contains(t, low, "Tough parking zone")
}

func TestClient_AnalyzeParkingSign_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(w, `{"canPark": true, "maxDuration": "2 hours", "restrictions": ["Meter required"], "removalTime": "4:30 PM", "confidence": 88, "warnings": [], "signLanguage": "English"}`)
	})

	analysis := client.AnalyzeParkingSign(context.Background(), "aGVsbG8=", "image/jpeg")

	require.NotNil(t, analysis)
	assert.True(t, analysis.CanPark)
	assert.Equal(t, "2 hours", analysis.MaxDuration)
	assert.Equal(t, "4:30 PM", analysis.RemovalTime)
	assert.Equal(t, 88, analysis.Confidence)
}

func TestClient_AnalyzeParkingSign_DefaultsApplied(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(w, `{"canPark": false}`)
	})

	analysis := client.AnalyzeParkingSign(context.Background(), "aGVsbG8=", "image/jpeg")

	assert.Equal(t, "Unknown", analysis.MaxDuration)
	assert.Equal(t, 75, analysis.Confidence)
	assert.Equal(t, "English", analysis.SignLanguage)
}

func TestClient_AnalyzeParkingSign_FallbackScenario(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	analysis := client.AnalyzeParkingSign(context.Background(), "aGVsbG8=", "image/jpeg")

	require.NotNil(t, analysis)
	// Fallback scenarios always allow parking and carry a removal time so
	// the reminder flow stays reachable.
	assert.True(t, analysis.CanPark)
	assert.NotEmpty(t, analysis.RemovalTime)
	assert.NotEmpty(t, analysis.Restrictions)
}

func TestExtractJSON(t *testing.T) {
	raw, err := extractJSON("prefix {\"a\": {\"b\": 1}} suffix")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 1}}`, string(raw))

	_, err = extractJSON("no braces here")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFallbackParkingInsight(t *testing.T) {
	assert.Contains(t, FallbackParkingInsight(7, 5), "7/10")
	assert.Contains(t, FallbackParkingInsight(4, 10), "10 minutes")
	assert.Contains(t, FallbackParkingInsight(1, 20), "20+")
}
