package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

var errNotFoundForTest = errors.New("no such chunk")

type fakeClassifier struct {
	label domain.IntentLabel
	err   error
}

func (f *fakeClassifier) ClassifyIntent(context.Context, string) (domain.IntentLabel, error) {
	return f.label, f.err
}

type fakeRewriter struct {
	candidates []string
	risk       *domain.RewriteRisk
	err        error
	calls      int
}

func (f *fakeRewriter) GenerateRewrite(context.Context, string, domain.Intent) ([]string, *domain.RewriteRisk, error) {
	f.calls++
	return f.candidates, f.risk, f.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

type fakeVectorIndex struct {
	results []domain.RetrievalCandidate
	err     error
}

func (f *fakeVectorIndex) Search(context.Context, []float32, int) ([]domain.RetrievalCandidate, error) {
	return f.results, f.err
}

type fakeLexicalIndex struct {
	results []domain.RetrievalCandidate
	err     error
}

func (f *fakeLexicalIndex) SearchLexical(context.Context, string, int) ([]domain.RetrievalCandidate, error) {
	return f.results, f.err
}

type fakeChunkStore struct {
	chunks map[string]domain.StoredChunk
	err    error
}

func (f *fakeChunkStore) GetChunk(_ context.Context, chunkID string) (domain.StoredChunk, error) {
	if f.err != nil {
		return domain.StoredChunk{}, f.err
	}
	chunk, ok := f.chunks[chunkID]
	if !ok {
		return domain.StoredChunk{}, domain.WrapError(domain.ErrChunkNotFound, "chunk lookup", errNotFoundForTest)
	}
	return chunk, nil
}

type fakeAnswerModel struct {
	text        string
	err         error
	gotQuestion string
	gotEvidence []domain.EvidenceChunk
}

func (f *fakeAnswerModel) GenerateAnswer(_ context.Context, question string, evidence []domain.EvidenceChunk) (string, error) {
	f.gotQuestion = question
	f.gotEvidence = evidence
	return f.text, f.err
}

type fakeAuditPublisher struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (f *fakeAuditPublisher) PublishQueryAudit(_ context.Context, event domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeAuditPublisher) published() []domain.AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AuditEvent, len(f.events))
	copy(out, f.events)
	return out
}
