package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

type fakeAnswerer struct {
	response domain.QueryResponse
	err      error
	gotQuery string
}

func (f *fakeAnswerer) Answer(_ context.Context, query string) (domain.QueryResponse, error) {
	f.gotQuery = query
	return f.response, f.err
}

func newTestRouter(answerer *fakeAnswerer) http.Handler {
	return NewRouter(answerer, RouterOptions{Service: "api"}).Handler()
}

func TestQueryReturnsAnswerPayload(t *testing.T) {
	answer := "Attention weighs token pairs by similarity."
	fake := &fakeAnswerer{response: domain.QueryResponse{
		Answer:    &answer,
		Citations: []string{"c-1", "c-2"},
		Refused:   false,
		Debug:     &domain.RetrievalDebug{DenseCount: 5, LexicalCount: 3, FusedCount: 4, Fusion: "intent_weighted_minmax"},
	}}
	handler := newTestRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"What is attention?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if fake.gotQuery != "What is attention?" {
		t.Fatalf("unexpected query passed through: %q", fake.gotQuery)
	}

	var payload map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["answer"] != answer {
		t.Fatalf("unexpected answer: %v", payload["answer"])
	}
	if payload["refused"] != false {
		t.Fatalf("expected refused=false")
	}
	if _, hasDebug := payload["debug"]; hasDebug {
		t.Fatalf("debug should be omitted unless requested")
	}
}

func TestQueryIncludesDebugWhenRequested(t *testing.T) {
	answer := "ok"
	fake := &fakeAnswerer{response: domain.QueryResponse{
		Answer:    &answer,
		Citations: []string{"c-1"},
		Debug:     &domain.RetrievalDebug{DenseCount: 2, LexicalCount: 1, FusedCount: 2, Fusion: "intent_weighted_minmax"},
	}}
	handler := newTestRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q","debug":true}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var payload map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	debug, ok := payload["debug"].(map[string]any)
	if !ok {
		t.Fatalf("expected debug block, got %v", payload["debug"])
	}
	if debug["fusion"] != "intent_weighted_minmax" {
		t.Fatalf("unexpected fusion strategy: %v", debug["fusion"])
	}
}

func TestQueryRefusalKeepsReasonVerbatim(t *testing.T) {
	reason := domain.ReasonNoChunksAboveThreshold
	fake := &fakeAnswerer{response: domain.QueryResponse{
		Citations: []string{},
		Refused:   true,
		Reason:    &reason,
	}}
	handler := newTestRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("refusal is a business outcome, expected 200, got %d", res.Code)
	}
	var payload struct {
		Answer  *string `json:"answer"`
		Refused bool    `json:"refused"`
		Reason  *string `json:"reason"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Answer != nil {
		t.Fatalf("refused response must carry nil answer")
	}
	if payload.Reason == nil || *payload.Reason != domain.ReasonNoChunksAboveThreshold {
		t.Fatalf("unexpected reason: %v", payload.Reason)
	}
}

func TestQueryRejectsMissingQuestion(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"  "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryMapsTemporaryErrorTo503(t *testing.T) {
	fake := &fakeAnswerer{err: domain.WrapError(domain.ErrTemporary, "pipeline", context.DeadlineExceeded)}
	handler := newTestRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header on every response")
	}
}
