package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxDescriptionLength = 500

// SubmitInput carries the fields of a new report.
type SubmitInput struct {
	Type        Type
	Location    string
	Description string
	Severity    Severity
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Service validates and stores community reports.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
	}
}

// Submit validates and stores a new report. New reports start unverified.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Report, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	report := &Report{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Location:    input.Location,
		Description: input.Description,
		Severity:    input.Severity,
		Verified:    false,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("type", string(report.Type)).
		Str("severity", string(report.Severity)).
		Str("location", report.Location).
		Msg("report submitted")

	return report, nil
}

// List returns reports, newest first, optionally filtered by location.
func (s *Service) List(ctx context.Context, location string, limit int) ([]*Report, error) {
	return s.repo.List(ctx, ListOptions{
		Location: strings.TrimSpace(location),
		Limit:    limit,
	})
}

// Get retrieves a report by ID.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// Verify marks a report as verified.
func (s *Service) Verify(ctx context.Context, id string) error {
	if err := s.repo.SetVerified(ctx, id, true); err != nil {
		return err
	}

	s.logger.Info().Str("report_id", id).Msg("report verified")
	return nil
}

// Delete removes a report.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateInput(input *SubmitInput) error {
	input.Location = strings.TrimSpace(input.Location)
	input.Description = strings.TrimSpace(input.Description)

	if input.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidReport)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidReport)
	}
	if len(input.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidReport, maxDescriptionLength)
	}
	if !ValidType(input.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidReport, input.Type)
	}
	if input.Severity == "" {
		input.Severity = SeverityLow
	}
	if !ValidSeverity(input.Severity) {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidReport, input.Severity)
	}
	return nil
}
