package models

// ReportCreateRequest is the body of POST /v1/reports.
type ReportCreateRequest struct {
	Type        string `json:"type" validate:"required,oneof=safety availability enforcement accessibility"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Severity    string `json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
}
