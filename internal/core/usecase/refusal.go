package usecase

import (
	"strings"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

// RefusalMessage is the fixed user-facing text for every gated refusal.
const RefusalMessage = "The provided evidence does not contain this information."

// Refusal gate reason codes.
const (
	ReasonEmptyAnswer = "EMPTY_ANSWER"
	ReasonNoRetrieval = "NO_RETRIEVAL"
	ReasonNoEvidence  = "NO_EVIDENCE"
	ReasonOverclaim   = "OVERCLAIM"
)

// Over-claim heuristic bounds: a long answer resting on a single citation
// is treated as unsupported.
const (
	overclaimWordLimit   = 100
	overclaimMinCitation = 2
)

// applyRefusalGate is the final deterministic safety check. No model calls,
// first matching rule wins, and the function is idempotent: running it
// twice on the same state yields the same decision.
func applyRefusalGate(state *domain.PipelineState) {
	// An earlier refusal disposition is final; the gate never resurrects
	// an answer.
	if state.Refused {
		state.FinalResponse = RefusalMessage
		return
	}

	answer := strings.TrimSpace(state.Answer.Text)
	citations := state.Answer.Citations

	switch {
	case answer == "":
		gateRefuse(state, ReasonEmptyAnswer)
	case len(state.Retrieved) == 0:
		gateRefuse(state, ReasonNoRetrieval)
	case len(citations) == 0:
		gateRefuse(state, ReasonNoEvidence)
	case len(strings.Fields(answer)) > overclaimWordLimit && len(citations) < overclaimMinCitation:
		gateRefuse(state, ReasonOverclaim)
	default:
		state.FinalResponse = answer
		state.Refused = false
		state.RefusalReason = ""
	}
}

func gateRefuse(state *domain.PipelineState, reason string) {
	state.FinalResponse = RefusalMessage
	state.Refused = true
	state.RefusalReason = reason
}
