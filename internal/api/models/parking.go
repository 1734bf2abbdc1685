package models

// SignAnalyzeRequest is the body of POST /v1/parking/sign:analyze.
type SignAnalyzeRequest struct {
	// Image is the base64-encoded sign photo.
	Image string `json:"image" validate:"required"`

	// MimeType is the image content type, e.g. "image/jpeg".
	MimeType string `json:"mimeType,omitempty"`
}
