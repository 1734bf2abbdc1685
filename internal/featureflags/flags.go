// Package featureflags gates the premium feature panels at runtime.
package featureflags

import "time"

// Well-known feature flag keys.
const (
	// FlagTicketProtection enables the parking ticket protection panel.
	FlagTicketProtection = "enable_ticket_protection"

	// FlagSpotSharing enables community spot sharing.
	FlagSpotSharing = "enable_spot_sharing"

	// FlagAIInsights enables AI-generated parking insights and
	// recommendation text.
	FlagAIInsights = "enable_ai_insights"

	// FlagSignScanner enables the parking sign scanner endpoint.
	FlagSignScanner = "enable_sign_scanner"

	// FlagPremiumAlerts enables construction/event annotations on the
	// driving leg.
	FlagPremiumAlerts = "enable_premium_alerts"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// StringValue returns the flag value as a string.
// Returns the default value if the flag is nil or not a string.
func (f *Flag) StringValue(defaultValue string) string {
	if f == nil {
		return defaultValue
	}
	if v, ok := f.Value.(string); ok {
		return v
	}
	return defaultValue
}

// DefaultFlags returns the hardcoded defaults: every premium panel on.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	defaults := map[string]*Flag{}
	for _, key := range []string{
		FlagTicketProtection,
		FlagSpotSharing,
		FlagAIInsights,
		FlagSignScanner,
		FlagPremiumAlerts,
	} {
		defaults[key] = &Flag{Key: key, Value: true, UpdatedAt: now}
	}
	return defaults
}
