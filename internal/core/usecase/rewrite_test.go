package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

func TestRewriteAcceptedUnderThreshold(t *testing.T) {
	rewriter := &fakeRewriter{
		candidates: []string{"rewritten query", "second candidate"},
		risk:       &domain.RewriteRisk{PrecisionRisk: 0.60, RecallBoost: 0.7},
	}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "original query", domain.IntentAnalytical)
	if !decision.Allowed {
		t.Fatalf("expected rewrite accepted at risk 0.60")
	}
	if decision.FinalQuery != "rewritten query" {
		t.Fatalf("first candidate must become the final query, got %q", decision.FinalQuery)
	}
	if decision.OriginalQuery != "original query" {
		t.Fatalf("original query must be preserved")
	}
}

func TestRewriteRejectedOverThreshold(t *testing.T) {
	rewriter := &fakeRewriter{
		candidates: []string{"too loose"},
		risk:       &domain.RewriteRisk{PrecisionRisk: 0.70, RecallBoost: 0.9},
	}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "original query", domain.IntentMultiHop)
	if decision.Allowed {
		t.Fatalf("risk 0.70 must be rejected")
	}
	if decision.FinalQuery != "original query" {
		t.Fatalf("rejected rewrite must fall back to original, got %q", decision.FinalQuery)
	}
	if decision.Reason != rewriteReasonFallback {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
}

func TestRewriteMissingRiskReadsAsMaximum(t *testing.T) {
	rewriter := &fakeRewriter{candidates: []string{"candidate"}, risk: nil}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "q", domain.IntentFactual)
	if decision.Allowed {
		t.Fatalf("missing risk must reject the rewrite")
	}
	if decision.FinalQuery != "q" {
		t.Fatalf("expected original query, got %q", decision.FinalQuery)
	}
}

func TestRewriteGenerationFailureFallsBack(t *testing.T) {
	rewriter := &fakeRewriter{err: errors.New("model gibberish")}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "q", domain.IntentFactual)
	if decision.Allowed || decision.FinalQuery != "q" {
		t.Fatalf("generation failure must fall back to original: %+v", decision)
	}
}

func TestRewriteSkippedForUnknownIntent(t *testing.T) {
	rewriter := &fakeRewriter{candidates: []string{"never used"}, risk: &domain.RewriteRisk{PrecisionRisk: 0.1}}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "q", domain.IntentUnknown)
	if rewriter.calls != 0 {
		t.Fatalf("unknown intent must not call the generator")
	}
	if decision.Allowed || decision.FinalQuery != "q" {
		t.Fatalf("unknown intent must retrieve as asked: %+v", decision)
	}
}

func TestRewriteSkippedForUnanswerableIntent(t *testing.T) {
	rewriter := &fakeRewriter{candidates: []string{"never used"}, risk: &domain.RewriteRisk{PrecisionRisk: 0.1}}
	stage := NewRewriteStage(rewriter, nil)

	decision := stage.Rewrite(context.Background(), "q", domain.IntentUnanswerable)
	if rewriter.calls != 0 {
		t.Fatalf("unanswerable intent must not call the generator")
	}
	if decision.Allowed {
		t.Fatalf("unanswerable intent must not rewrite")
	}
}
