package reports

import "context"

// ListOptions filters report listings.
type ListOptions struct {
	// Location filters to reports whose normalized location matches.
	// Empty means all locations.
	Location string

	// Limit caps the number of reports returned. Zero means the
	// repository default.
	Limit int
}

// Repository defines the interface for report storage.
type Repository interface {
	// Get retrieves a single report by ID.
	Get(ctx context.Context, id string) (*Report, error)

	// List retrieves reports, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Report, error)

	// Create stores a new report.
	Create(ctx context.Context, report *Report) error

	// SetVerified marks a report as verified or unverified.
	SetVerified(ctx context.Context, id string, verified bool) error

	// Delete removes a report by ID.
	Delete(ctx context.Context, id string) error
}
