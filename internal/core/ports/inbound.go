package ports

import (
	"context"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

// QueryAnswerer is the inbound contract for the evidence-bound QA pipeline.
// Every invocation is a single stateless query.
type QueryAnswerer interface {
	Answer(ctx context.Context, query string) (domain.QueryResponse, error)
}
