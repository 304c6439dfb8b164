package usecase

import (
	"context"
	"log/slog"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

// precisionRiskThreshold is the fixed guard cutoff: rewrites riskier than
// this retrieve with the original query instead.
const precisionRiskThreshold = 0.65

const (
	rewriteReasonFallback = "Fallback to original query"
	rewriteReasonAccepted = "Rewrite accepted within precision risk threshold"
)

// RewriteStage asks the model for intent-specific rewrite candidates and
// gates them on precision risk. Generation failure is a safe fallback, not
// an error surfaced to the caller.
type RewriteStage struct {
	generator ports.RewriteGenerator
	logger    *slog.Logger
}

func NewRewriteStage(generator ports.RewriteGenerator, logger *slog.Logger) *RewriteStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewriteStage{generator: generator, logger: logger}
}

func (s *RewriteStage) Rewrite(ctx context.Context, query string, intent domain.Intent) domain.RewriteDecision {
	var (
		candidates []string
		risk       *domain.RewriteRisk
	)

	switch intent {
	case domain.IntentFactual, domain.IntentAnalytical, domain.IntentMultiHop:
		generated, generatedRisk, err := s.generator.GenerateRewrite(ctx, query, intent)
		if err != nil {
			s.logger.Warn("rewrite_generation_fallback", "intent", intent, "error", err)
			candidates, risk = nil, nil
		} else {
			candidates, risk = generated, generatedRisk
		}
	default:
		// unknown and unanswerable queries retrieve as asked.
	}

	return s.guard(query, candidates, risk)
}

// guard is the single deterministic gate: candidates[0] becomes the final
// query iff candidates exist and precision risk clears the threshold. A
// missing risk reads as maximum risk.
func (s *RewriteStage) guard(original string, candidates []string, risk *domain.RewriteRisk) domain.RewriteDecision {
	precisionRisk := 1.0
	if risk != nil {
		precisionRisk = risk.PrecisionRisk
	}

	decision := domain.RewriteDecision{
		OriginalQuery: original,
		FinalQuery:    original,
		Candidates:    candidates,
		Risk:          risk,
		Allowed:       false,
		Reason:        rewriteReasonFallback,
	}
	if len(candidates) > 0 && precisionRisk <= precisionRiskThreshold {
		decision.FinalQuery = candidates[0]
		decision.Allowed = true
		decision.Reason = rewriteReasonAccepted
	}

	s.logger.Info("rewrite_guard_decision",
		"allowed", decision.Allowed,
		"candidates", len(candidates),
		"precision_risk", precisionRisk,
	)
	return decision
}
