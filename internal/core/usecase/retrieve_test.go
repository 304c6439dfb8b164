package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

func TestRetrieveFusesBothSources(t *testing.T) {
	dense := &fakeVectorIndex{results: []domain.RetrievalCandidate{
		denseCandidate("c-1", 0.9),
		denseCandidate("c-2", 0.4),
	}}
	lexical := &fakeLexicalIndex{results: []domain.RetrievalCandidate{
		lexicalCandidate("c-2", 7.0),
	}}
	coordinator := NewRetrievalCoordinator(dense, lexical, 15, 10, 8)

	fused, debug, err := coordinator.Retrieve(context.Background(), "q", []float32{0.1}, domain.IntentAnalytical)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(fused) != 2 {
		t.Fatalf("expected 2 fused candidates, got %d", len(fused))
	}
	if debug.DenseCount != 2 || debug.LexicalCount != 1 || debug.FusedCount != 2 {
		t.Fatalf("unexpected debug counts: %+v", debug)
	}
	if debug.Fusion != fusionStrategy {
		t.Fatalf("unexpected fusion strategy: %q", debug.Fusion)
	}
}

func TestRetrieveEmptyResultsAreValid(t *testing.T) {
	coordinator := NewRetrievalCoordinator(&fakeVectorIndex{}, &fakeLexicalIndex{}, 15, 10, 8)

	fused, debug, err := coordinator.Retrieve(context.Background(), "q", []float32{0.1}, domain.IntentFactual)
	if err != nil {
		t.Fatalf("empty retrieval must not error, got %v", err)
	}
	if len(fused) != 0 {
		t.Fatalf("expected no fused candidates, got %d", len(fused))
	}
	if debug.DenseCount != 0 || debug.LexicalCount != 0 {
		t.Fatalf("unexpected debug counts: %+v", debug)
	}
}

func TestRetrieveDenseFailureFailsStage(t *testing.T) {
	dense := &fakeVectorIndex{err: errors.New("qdrant down")}
	coordinator := NewRetrievalCoordinator(dense, &fakeLexicalIndex{}, 15, 10, 8)

	if _, _, err := coordinator.Retrieve(context.Background(), "q", []float32{0.1}, domain.IntentFactual); err == nil {
		t.Fatalf("dense transport failure must fail the stage")
	}
}

func TestRetrieveLexicalFailureFailsStage(t *testing.T) {
	lexical := &fakeLexicalIndex{err: errors.New("qdrant down")}
	coordinator := NewRetrievalCoordinator(&fakeVectorIndex{}, lexical, 15, 10, 8)

	if _, _, err := coordinator.Retrieve(context.Background(), "q", []float32{0.1}, domain.IntentFactual); err == nil {
		t.Fatalf("lexical transport failure must fail the stage")
	}
}
