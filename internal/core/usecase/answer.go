package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

// refusalSignals are substrings that mark a model answer as an implicit
// refusal. A match discards the generated text and citations entirely.
var refusalSignals = []string{
	"insufficient",
	"does not answer",
	"not provided",
	"cannot be determined",
	"not mentioned",
}

// AnswerStage generates the evidence-bound answer and post-processes it for
// refusal signals. The orchestrator only enters this stage after a passing
// validation; the checks here are defense in depth.
type AnswerStage struct {
	model  ports.AnswerModel
	logger *slog.Logger
}

func NewAnswerStage(model ports.AnswerModel, logger *slog.Logger) *AnswerStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerStage{model: model, logger: logger}
}

// Generate mutates state with either an accepted answer or a refusal
// disposition. A model transport failure is returned as an error so the
// orchestrator can map it to its unavailability reason.
func (s *AnswerStage) Generate(ctx context.Context, state *domain.PipelineState) error {
	if state.ValidationStatus != domain.ValidationPass {
		reason := state.ValidationReason
		if reason == "" {
			reason = "Validation failed"
		}
		state.Answer = domain.Answer{Supported: false}
		state.Refuse(reason)
		return nil
	}
	if len(state.Evidence) == 0 {
		state.Answer = domain.Answer{Supported: false}
		state.Refuse("No validated evidence")
		return nil
	}

	text, err := s.model.GenerateAnswer(ctx, state.Rewrite.FinalQuery, state.Evidence)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)

	if signal := matchRefusalSignal(text); signal != "" {
		s.logger.Info("answer_refusal_signal", "signal", signal)
		state.Answer = domain.Answer{Supported: false}
		state.Refuse(domain.ReasonEvidenceInsufficient)
		return nil
	}

	// Conservative citation policy: every evidence chunk that shaped the
	// prompt is cited, not only those textually quoted.
	citations := make([]string, 0, len(state.Evidence))
	for _, chunk := range state.Evidence {
		citations = append(citations, chunk.ChunkID)
	}

	state.Answer = domain.Answer{
		Text:      text,
		Citations: citations,
		Supported: true,
	}
	return nil
}

func matchRefusalSignal(answer string) string {
	lowered := strings.ToLower(answer)
	for _, signal := range refusalSignals {
		if strings.Contains(lowered, signal) {
			return signal
		}
	}
	return ""
}
