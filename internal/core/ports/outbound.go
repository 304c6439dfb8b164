package ports

import (
	"context"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

// IntentClassifier labels the query's answer shape. Malformed model output
// must map to IntentUnknown with zero confidence, never an error.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, query string) (domain.IntentLabel, error)
}

// RewriteGenerator proposes intent-specific query rewrites. Implementations
// return (nil, nil, nil) when the intent warrants no rewrite; parse failures
// surface as errors so the caller can take the safe-fallback path.
type RewriteGenerator interface {
	GenerateRewrite(ctx context.Context, query string, intent domain.Intent) ([]string, *domain.RewriteRisk, error)
}

// Embedder builds a fixed-dimension vector for the final query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs dense similarity search. Empty results are valid.
type VectorIndex interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievalCandidate, error)
}

// LexicalIndex performs term-overlap search. Empty results are valid.
type LexicalIndex interface {
	SearchLexical(ctx context.Context, queryText string, limit int) ([]domain.RetrievalCandidate, error)
}

// ChunkStore is read-only access to ground-truth chunk text. Unknown ids
// return domain.ErrChunkNotFound.
type ChunkStore interface {
	GetChunk(ctx context.Context, chunkID string) (domain.StoredChunk, error)
}

// AnswerModel generates the evidence-bound answer text.
type AnswerModel interface {
	GenerateAnswer(ctx context.Context, question string, evidence []domain.EvidenceChunk) (string, error)
}

// AuditPublisher emits per-query disposition events. Best effort: publish
// failures are logged by callers, never surfaced to the pipeline.
type AuditPublisher interface {
	PublishQueryAudit(ctx context.Context, event domain.AuditEvent) error
}
