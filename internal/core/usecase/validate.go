package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

// Validator constraints. minTextLength is a structural heuristic against
// headers and empty sections, not a semantic judgment.
const (
	minFinalScore   = 0.45
	maxContextChars = 6000
	maxChunksPerDoc = 5
	minTextLength   = 20
)

// EvidenceValidator turns fused candidates into the only evidence set the
// answer generator may use. Its refusals are authoritative: the orchestrator
// propagates them unchanged and no later stage may override them.
type EvidenceValidator struct {
	chunks ports.ChunkStore
	logger *slog.Logger
}

func NewEvidenceValidator(chunks ports.ChunkStore, logger *slog.Logger) *EvidenceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvidenceValidator{chunks: chunks, logger: logger}
}

// ValidationResult is the validator verdict: on pass, Evidence is ordered
// and non-empty; on refuse, Evidence is empty and Reason is stable.
type ValidationResult struct {
	Status   domain.ValidationStatus
	Reason   string
	Evidence []domain.EvidenceChunk
}

func refuseValidation(reason string) ValidationResult {
	return ValidationResult{Status: domain.ValidationRefuse, Reason: reason, Evidence: nil}
}

// Validate enforces relevance, answerability, per-document diversity and
// the context budget, in that order. A chunk-store transport failure is the
// only error path; an unknown chunk id is a skip.
func (v *EvidenceValidator) Validate(ctx context.Context, fused []domain.FusedCandidate) (ValidationResult, error) {
	if len(fused) == 0 {
		return refuseValidation(domain.ReasonNoRetrievalCandidates), nil
	}

	strong := make([]domain.FusedCandidate, 0, len(fused))
	for _, c := range fused {
		if c.FinalScore >= minFinalScore {
			strong = append(strong, c)
		}
	}
	if len(strong) == 0 {
		return refuseValidation(domain.ReasonNoChunksAboveThreshold), nil
	}

	validated := make([]domain.EvidenceChunk, 0, len(strong))
	perDoc := make(map[string]int)
	totalChars := 0

	for _, c := range strong {
		stored, err := v.chunks.GetChunk(ctx, c.ChunkID)
		if err != nil {
			if domain.IsKind(err, domain.ErrChunkNotFound) {
				v.logger.Warn("evidence_chunk_missing", "chunk_id", c.ChunkID)
				continue
			}
			return ValidationResult{}, err
		}

		text := stored.Text
		if len(strings.TrimSpace(text)) < minTextLength {
			continue
		}
		if perDoc[stored.DocumentID] >= maxChunksPerDoc {
			continue
		}
		// Budget exhaustion truncates the remaining ranked list; no
		// skipping ahead to smaller chunks.
		if totalChars+len(text) > maxContextChars {
			break
		}

		validated = append(validated, domain.EvidenceChunk{
			ChunkID:    c.ChunkID,
			DocumentID: stored.DocumentID,
			Text:       text,
			FinalScore: c.FinalScore,
		})
		perDoc[stored.DocumentID]++
		totalChars += len(text)
	}

	if len(validated) == 0 {
		return refuseValidation(domain.ReasonNoAnswerableEvidence), nil
	}

	v.logger.Info("evidence_validated",
		"accepted", len(validated),
		"context_chars", totalChars,
		"documents", len(perDoc),
	)
	return ValidationResult{Status: domain.ValidationPass, Evidence: validated}, nil
}
