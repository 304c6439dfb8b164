package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

// Named vectors inside the chunk collection. The corpus builder owns the
// collection schema; this client is a read-only searcher.
const (
	denseVectorName   = "dense"
	lexicalVectorName = "lexical"
)

// Client searches the pre-built chunk collection. It implements both the
// dense VectorIndex and the lexical LexicalIndex ports against the same
// collection's named vectors.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Search runs dense similarity search for the query vector.
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievalCandidate, error) {
	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   denseVectorName,
			"vector": queryVector,
		},
		"limit":        limit,
		"with_payload": true,
	}
	return c.search(ctx, reqBody, domain.SourceDense)
}

// SearchLexical encodes the query into a BM25-style sparse vector and runs
// term-overlap search. An empty encoded query yields empty results rather
// than a malformed request.
func (c *Client) SearchLexical(ctx context.Context, queryText string, limit int) ([]domain.RetrievalCandidate, error) {
	sparse := encodeSparseQuery(queryText)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   lexicalVectorName,
			"vector": sparse,
		},
		"limit":        limit,
		"with_payload": true,
	}
	return c.search(ctx, reqBody, domain.SourceLexical)
}

func (c *Client) search(ctx context.Context, reqBody map[string]any, source domain.RetrievalSource) ([]domain.RetrievalCandidate, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal %s search body: %w", source, err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s search request: %w", source, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant %s search request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(respBody)); msg != "" {
			return nil, fmt.Errorf("qdrant %s search status: %s: %s", source, resp.Status, msg)
		}
		return nil, fmt.Errorf("qdrant %s search status: %s", source, resp.Status)
	}

	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode %s search response: %w", source, err)
	}

	out := make([]domain.RetrievalCandidate, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		chunkID := getStringPayload(r.Payload, "chunk_id")
		if chunkID == "" {
			chunkID = fmt.Sprintf("%v", r.ID)
		}
		out = append(out, domain.RetrievalCandidate{
			ChunkID:  chunkID,
			RawScore: r.Score,
			Source:   source,
		})
	}
	return out, nil
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
