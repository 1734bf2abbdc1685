package reports

import (
	"context"
	"sort"
	"strings"
	"sync"
)

const defaultListLimit = 50

// InMemoryRepository is an in-memory implementation of Repository, used in
// tests and when no database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewInMemoryRepository creates a new in-memory report repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports: make(map[string]*Report),
	}
}

// Get retrieves a single report by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// List retrieves reports, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Report, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	result := make([]*Report, 0, len(r.reports))
	for _, report := range r.reports {
		if opts.Location != "" && !strings.EqualFold(report.Location, opts.Location) {
			continue
		}
		result = append(result, report)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Create stores a new report.
func (r *InMemoryRepository) Create(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[report.ID] = report
	return nil
}

// SetVerified marks a report as verified or unverified.
func (r *InMemoryRepository) SetVerified(_ context.Context, id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.Verified = verified
	return nil
}

// Delete removes a report by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return ErrReportNotFound
	}
	delete(r.reports, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
