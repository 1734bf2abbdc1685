package googlemaps

// directionsResponse mirrors the Google Directions API response, trimmed to
// the fields the estimator consumes.
type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Routes       []route `json:"routes"`
}

type route struct {
	Legs []leg `json:"legs"`
}

type leg struct {
	Distance          textValue  `json:"distance"`
	Duration          textValue  `json:"duration"`
	DurationInTraffic *textValue `json:"duration_in_traffic,omitempty"`
}

type textValue struct {
	Text string `json:"text"`
	// Value is seconds for durations, meters for distances.
	Value int `json:"value"`
}

// geocodeResponse mirrors the Google Geocoding API response.
type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
