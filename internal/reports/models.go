// Package reports stores community curb condition reports.
package reports

import (
	"errors"
	"time"
)

// Sentinel errors for report operations.
var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidReport  = errors.New("invalid report")
)

// Type categorizes what a report is about.
type Type string

// Report types.
const (
	TypeSafety        Type = "safety"
	TypeAvailability  Type = "availability"
	TypeEnforcement   Type = "enforcement"
	TypeAccessibility Type = "accessibility"
)

// Severity indicates how urgent a report is.
type Severity string

// Report severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Report is a user-submitted observation about a curbside location.
type Report struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidType reports whether t is a known report type.
func ValidType(t Type) bool {
	switch t {
	case TypeSafety, TypeAvailability, TypeEnforcement, TypeAccessibility:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
