package decision

import (
	"context"

	"github.com/rs/zerolog"
)

// Advisor generates richer natural-language reasoning and summary text for a
// recommendation. Implementations are typically AI-backed.
type Advisor interface {
	// Advise rewrites the reasoning and summary for the rule engine's
	// verdict. Winner and confidence must not be changed.
	Advise(ctx context.Context, in Input, ruled Recommendation) (*Recommendation, error)
}

// EngineConfig holds configuration for the decision engine.
type EngineConfig struct {
	// Advisor optionally enriches the recommendation text.
	Advisor Advisor

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine wraps the rule-based decision with an optional advisor. The winner
// and confidence always come from the rules; the advisor only ever replaces
// the texts, and any advisor failure falls back to the rule texts.
type Engine struct {
	advisor Advisor
	logger  zerolog.Logger
}

// NewEngine creates a new decision engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		advisor: cfg.Advisor,
		logger:  cfg.Logger,
	}
}

// Recommend produces the final recommendation for the given signals.
func (e *Engine) Recommend(ctx context.Context, in Input) Recommendation {
	ruled := Decide(in)

	if e.advisor == nil {
		return ruled
	}

	advised, err := e.advisor.Advise(ctx, in, ruled)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("winner", string(ruled.Winner)).
			Msg("advisor failed, using rule-based texts")
		return ruled
	}

	// The verdict stays deterministic regardless of what the advisor says.
	advised.Winner = ruled.Winner
	advised.Confidence = ruled.Confidence
	return *advised
}
