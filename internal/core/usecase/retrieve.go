package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

// RetrievalCoordinator issues the dense and lexical candidate searches and
// fuses their output. The two searches have no data dependency on each
// other and run concurrently.
type RetrievalCoordinator struct {
	vectorIndex  ports.VectorIndex
	lexicalIndex ports.LexicalIndex

	denseTopK   int
	lexicalTopK int
	fusedTopK   int
}

func NewRetrievalCoordinator(
	vectorIndex ports.VectorIndex,
	lexicalIndex ports.LexicalIndex,
	denseTopK, lexicalTopK, fusedTopK int,
) *RetrievalCoordinator {
	if denseTopK <= 0 {
		denseTopK = 15
	}
	if lexicalTopK <= 0 {
		lexicalTopK = 10
	}
	if fusedTopK <= 0 {
		fusedTopK = 8
	}
	return &RetrievalCoordinator{
		vectorIndex:  vectorIndex,
		lexicalIndex: lexicalIndex,
		denseTopK:    denseTopK,
		lexicalTopK:  lexicalTopK,
		fusedTopK:    fusedTopK,
	}
}

// Retrieve runs both searches against the final query and returns the fused
// top-k plus a debug summary. Empty result lists are valid, not errors; a
// transport failure on either index fails the whole stage.
func (c *RetrievalCoordinator) Retrieve(
	ctx context.Context,
	queryText string,
	queryVector []float32,
	intent domain.Intent,
) ([]domain.FusedCandidate, domain.RetrievalDebug, error) {
	var dense, lexical []domain.RetrievalCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := c.vectorIndex.Search(gctx, queryVector, c.denseTopK)
		if err != nil {
			return fmt.Errorf("dense search: %w", err)
		}
		dense = results
		return nil
	})
	g.Go(func() error {
		results, err := c.lexicalIndex.SearchLexical(gctx, queryText, c.lexicalTopK)
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		lexical = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.RetrievalDebug{}, err
	}

	fused := fuseHybrid(dense, lexical, intent, c.fusedTopK)
	debug := domain.RetrievalDebug{
		DenseCount:   len(dense),
		LexicalCount: len(lexical),
		FusedCount:   len(fused),
		Fusion:       fusionStrategy,
	}
	return fused, debug, nil
}
