package models

// TripLocation is one endpoint of a trip analysis request.
type TripLocation struct {
	Address string   `json:"address" validate:"required"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// TripAnalyzeRequest is the body of POST /v1/trips:analyze.
type TripAnalyzeRequest struct {
	Origin      TripLocation `json:"origin" validate:"required"`
	Destination TripLocation `json:"destination" validate:"required"`

	// ArrivalTime is an optional desired arrival, "HH:MM" 24-hour local.
	ArrivalTime string `json:"arrivalTime,omitempty"`

	// Language is a locale tag, presentation-only.
	Language string `json:"language,omitempty"`

	// Notifications opts into departure reminders.
	Notifications bool `json:"notifications,omitempty"`
}
