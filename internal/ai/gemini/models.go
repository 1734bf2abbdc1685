package gemini

// Request/response wire types for the generateContent REST API, trimmed to
// the fields this client uses.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// SignAnalysis is the structured interpretation of a parking sign photo.
type SignAnalysis struct {
	CanPark            bool     `json:"canPark"`
	MaxDuration        string   `json:"maxDuration"`
	Restrictions       []string `json:"restrictions"`
	RemovalTime        string   `json:"removalTime,omitempty"`
	Confidence         int      `json:"confidence"`
	Warnings           []string `json:"warnings"`
	WeatherAdjustments []string `json:"weatherAdjustments,omitempty"`
	SignLanguage       string   `json:"signLanguage"`
}

// advisorResponse is the JSON shape the recommendation prompt asks for.
type advisorResponse struct {
	Winner     string `json:"winner"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
	Summary    string `json:"summary"`
}
