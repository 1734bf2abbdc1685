package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a single report by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Report, error) {
	query := `
		SELECT id, type, location, description, severity, verified, created_at
		FROM reports
		WHERE id = $1
	`

	var report Report
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.Type,
		&report.Location,
		&report.Description,
		&report.Severity,
		&report.Verified,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	return &report, nil
}

// List retrieves reports, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Report, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, type, location, description, severity, verified, created_at
		FROM reports
		WHERE ($1 = '' OR lower(location) = lower($1))
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.Location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*Report, 0)
	for rows.Next() {
		var report Report
		if err := rows.Scan(
			&report.ID,
			&report.Type,
			&report.Location,
			&report.Description,
			&report.Severity,
			&report.Verified,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// Create stores a new report.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (id, type, location, description, severity, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Type,
		report.Location,
		report.Description,
		report.Severity,
		report.Verified,
		report.CreatedAt,
	)
	return err
}

// SetVerified marks a report as verified or unverified.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE reports SET verified = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Delete removes a report by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reports WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
