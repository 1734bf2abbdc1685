package parking

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/curbwise/curbwise/pkg/geo"
)

// Archetype base values.
var archetypeBases = map[Archetype]struct {
	score         int
	searchMinutes int
}{
	ArchetypeDenseCore:    {score: 2, searchMinutes: 15},
	ArchetypeCommercial:   {score: 4, searchMinutes: 10},
	ArchetypeOuterBorough: {score: 7, searchMinutes: 5},
	ArchetypeResidential:  {score: 6, searchMinutes: 6},
}

var denseCoreKeywords = []string{
	"manhattan", "midtown", "downtown", "times square", "wall street", "soho",
}

var outerBoroughKeywords = []string{
	"brooklyn", "queens", "bronx", "staten island",
}

var commercialKeywords = []string{
	"avenue", "broadway", "street",
}

// EstimatorConfig holds configuration for the parking estimator.
type EstimatorConfig struct {
	// RNG is the jitter source. Seeded by the caller so tests are
	// reproducible (required).
	RNG *rand.Rand

	// Now supplies wall-clock time (optional, defaults to time.Now).
	Now func() time.Time

	// Logger for estimator operations.
	Logger zerolog.Logger
}

// Estimator produces parking-difficulty assessments and spot snapshots.
// Safe for concurrent use.
type Estimator struct {
	now    func() time.Time
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEstimator creates a new parking estimator.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Estimator{
		rng:    cfg.RNG,
		now:    now,
		logger: cfg.Logger,
	}
}

// Assess estimates parking difficulty at the destination. The coordinates are
// accepted for parity with provider-backed estimators; the assessment itself
// is driven by the address text and time of day.
func (e *Estimator) Assess(destination string, _ geo.Coordinate) Assessment {
	archetype := ClassifyArchetype(destination)
	base := archetypeBases[archetype]

	score := base.score
	searchMinutes := base.searchMinutes

	now := e.now()
	weekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday
	hour := now.Hour()
	rush := (hour >= 7 && hour <= 10) || (hour >= 17 && hour <= 19)
	business := hour >= 9 && hour <= 17

	switch {
	case weekend:
		score += 2
		searchMinutes -= 3
	case rush:
		score -= 2
		searchMinutes += 5
	case business:
		score -= 1
		searchMinutes += 2
	}

	e.mu.Lock()
	score += e.rng.Intn(3) - 1
	searchMinutes += e.rng.Intn(5) - 2
	e.mu.Unlock()

	score = clamp(score, 1, 10)
	searchMinutes = clamp(searchMinutes, 2, 25)

	e.logger.Debug().
		Str("destination", destination).
		Str("archetype", string(archetype)).
		Int("score", score).
		Int("search_minutes", searchMinutes).
		Msg("assessed parking difficulty")

	return Assessment{
		Score:         score,
		SearchMinutes: searchMinutes,
		Narrative:     narrativeForScore(score),
		Archetype:     archetype,
		AssessedAt:    now,
	}
}

// ClassifyArchetype maps a free-text destination to an area archetype via
// keyword matching. Dense-core keywords win over outer-borough keywords,
// which win over generic commercial ones.
func ClassifyArchetype(destination string) Archetype {
	dest := strings.ToLower(destination)

	for _, kw := range denseCoreKeywords {
		if strings.Contains(dest, kw) {
			return ArchetypeDenseCore
		}
	}
	for _, kw := range outerBoroughKeywords {
		if strings.Contains(dest, kw) {
			return ArchetypeOuterBorough
		}
	}
	for _, kw := range commercialKeywords {
		if strings.Contains(dest, kw) {
			return ArchetypeCommercial
		}
	}
	return ArchetypeResidential
}

// narrativeForScore picks the summary text by score tier.
func narrativeForScore(score int) string {
	switch {
	case score >= 8:
		return "Excellent parking availability! Street parking should be easy to find with minimal circling required."
	case score >= 6:
		return "Good parking situation. You should find a spot within a reasonable time, though you may need to walk a block or two."
	case score >= 4:
		return "Moderate parking difficulty. Allow extra time and consider paid parking options as backup."
	default:
		return "Challenging parking area. High demand with limited street parking. Paid garages strongly recommended."
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
