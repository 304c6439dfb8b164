package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

var errEmptyQuery = errors.New("query must not be empty")

// pipelineStage is the closed set of orchestrator states. No state is ever
// revisited; REFUSED and DONE are terminal.
type pipelineStage string

const (
	stageIntent   pipelineStage = "INTENT"
	stageRewrite  pipelineStage = "REWRITE"
	stageEmbed    pipelineStage = "EMBED"
	stageRetrieve pipelineStage = "RETRIEVE"
	stageValidate pipelineStage = "VALIDATE"
	stageAnswer   pipelineStage = "ANSWER"
	stageRefused  pipelineStage = "REFUSED"
	stageDone     pipelineStage = "DONE"
)

// StageTimeouts bounds every blocking capability call. A timeout is that
// stage's failure path, not a pipeline crash.
type StageTimeouts struct {
	Classify time.Duration
	Rewrite  time.Duration
	Embed    time.Duration
	Retrieve time.Duration
	Evidence time.Duration
	Generate time.Duration
}

func (t StageTimeouts) normalize() StageTimeouts {
	out := t
	if out.Classify <= 0 {
		out.Classify = 10 * time.Second
	}
	if out.Rewrite <= 0 {
		out.Rewrite = 15 * time.Second
	}
	if out.Embed <= 0 {
		out.Embed = 10 * time.Second
	}
	if out.Retrieve <= 0 {
		out.Retrieve = 10 * time.Second
	}
	if out.Evidence <= 0 {
		out.Evidence = 10 * time.Second
	}
	if out.Generate <= 0 {
		out.Generate = 60 * time.Second
	}
	return out
}

// Pipeline sequences the query stages and implements fail-closed
// short-circuiting: any stage may terminate directly at REFUSED, and the
// earliest refusal reason always reaches the caller unchanged.
type Pipeline struct {
	intent    *IntentStage
	rewrite   *RewriteStage
	embedder  ports.Embedder
	retriever *RetrievalCoordinator
	validator *EvidenceValidator
	answer    *AnswerStage
	audit     ports.AuditPublisher
	timeouts  StageTimeouts
	logger    *slog.Logger
}

func NewPipeline(
	intent *IntentStage,
	rewrite *RewriteStage,
	embedder ports.Embedder,
	retriever *RetrievalCoordinator,
	validator *EvidenceValidator,
	answer *AnswerStage,
	audit ports.AuditPublisher,
	timeouts StageTimeouts,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		intent:    intent,
		rewrite:   rewrite,
		embedder:  embedder,
		retriever: retriever,
		validator: validator,
		answer:    answer,
		audit:     audit,
		timeouts:  timeouts.normalize(),
		logger:    logger,
	}
}

// Answer runs one stateless pipeline execution for the query. The only
// error return is caller cancellation or invalid input; every upstream
// failure resolves to a refusal response instead.
func (p *Pipeline) Answer(ctx context.Context, query string) (domain.QueryResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.QueryResponse{}, domain.WrapError(domain.ErrInvalidInput, "pipeline", errEmptyQuery)
	}

	start := time.Now()
	state := &domain.PipelineState{OriginalQuery: query}

	for stage := stageIntent; stage != stageDone; {
		if err := ctx.Err(); err != nil {
			return domain.QueryResponse{}, err
		}
		stage = p.step(ctx, stage, state)
	}

	response := buildResponse(state)
	p.publishAudit(domain.RequestIDFromContext(ctx), state, time.Since(start))

	p.logger.Info("pipeline_completed",
		"intent", state.Intent.Intent,
		"refused", state.Refused,
		"reason", state.RefusalReason,
		"citations", len(state.Answer.Citations),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return response, nil
}

func (p *Pipeline) step(ctx context.Context, stage pipelineStage, state *domain.PipelineState) pipelineStage {
	switch stage {
	case stageIntent:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Classify)
		defer cancel()
		state.Intent = p.intent.Classify(cctx, state.OriginalQuery)
		return stageRewrite

	case stageRewrite:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Rewrite)
		defer cancel()
		state.Rewrite = p.rewrite.Rewrite(cctx, state.OriginalQuery, state.Intent.Intent)
		return stageEmbed

	case stageEmbed:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Embed)
		defer cancel()
		vector, err := p.embedder.EmbedQuery(cctx, state.Rewrite.FinalQuery)
		if err != nil {
			p.logger.Error("query_embedding_failed", "error", err)
			state.Refuse(domain.ReasonEmbeddingUnavailable)
			return stageRefused
		}
		state.QueryVector = vector
		return stageRetrieve

	case stageRetrieve:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Retrieve)
		defer cancel()
		fused, debug, err := p.retriever.Retrieve(cctx, state.Rewrite.FinalQuery, state.QueryVector, state.Intent.Intent)
		if err != nil {
			p.logger.Error("retrieval_failed", "error", err)
			state.Refuse(domain.ReasonRetrievalUnavailable)
			return stageRefused
		}
		state.Retrieved = fused
		state.RetrievalDebug = debug
		p.logger.Info("retrieval_completed",
			"dense_count", debug.DenseCount,
			"lexical_count", debug.LexicalCount,
			"fused_count", len(fused),
		)
		return stageValidate

	case stageValidate:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Evidence)
		defer cancel()
		result, err := p.validator.Validate(cctx, state.Retrieved)
		if err != nil {
			p.logger.Error("evidence_fetch_failed", "error", err)
			state.Refuse(domain.ReasonEvidenceStoreUnavailable)
			return stageRefused
		}
		state.ValidationStatus = result.Status
		state.ValidationReason = result.Reason
		state.Evidence = result.Evidence
		if result.Status != domain.ValidationPass {
			// Never spend a model call on evidence already known to be
			// insufficient.
			p.logger.Info("validation_refused", "reason", result.Reason)
			state.Refuse(result.Reason)
			return stageRefused
		}
		return stageAnswer

	case stageAnswer:
		cctx, cancel := context.WithTimeout(ctx, p.timeouts.Generate)
		defer cancel()
		if err := p.answer.Generate(cctx, state); err != nil {
			p.logger.Error("answer_generation_failed", "error", err)
			state.Refuse(domain.ReasonGenerationUnavailable)
			return stageRefused
		}
		applyRefusalGate(state)
		return stageDone

	case stageRefused:
		state.FinalResponse = RefusalMessage
		return stageDone
	}
	return stageDone
}

func buildResponse(state *domain.PipelineState) domain.QueryResponse {
	debug := state.RetrievalDebug
	if state.Refused {
		reason := state.RefusalReason
		return domain.QueryResponse{
			Answer:    nil,
			Citations: []string{},
			Refused:   true,
			Reason:    &reason,
			Debug:     &debug,
		}
	}

	answer := state.FinalResponse
	return domain.QueryResponse{
		Answer:    &answer,
		Citations: state.Answer.Citations,
		Refused:   false,
		Reason:    nil,
		Debug:     &debug,
	}
}

func (p *Pipeline) publishAudit(requestID string, state *domain.PipelineState, duration time.Duration) {
	if p.audit == nil {
		return
	}

	event := domain.AuditEvent{
		EventID:       uuid.NewString(),
		RequestID:     requestID,
		Intent:        state.Intent.Intent,
		RewriteUsed:   state.Rewrite.Allowed,
		Refused:       state.Refused,
		Reason:        state.RefusalReason,
		CitationCount: len(state.Answer.Citations),
		DurationMS:    duration.Milliseconds(),
		OccurredAt:    time.Now().UTC(),
	}

	// Detached context: the audit event outlives caller cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.audit.PublishQueryAudit(ctx, event); err != nil {
		p.logger.Warn("audit_publish_failed", "error", err)
	}
}
