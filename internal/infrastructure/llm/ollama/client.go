package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/infrastructure/resilience"
)

// Client talks to a single Ollama endpoint and backs all three model
// capabilities plus the embedding capability. The model is treated as an
// unreliable text producer: every JSON response is parsed defensively.
type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string) *Client {
	return NewWithOptions(baseURL, genModel, embedModel, Options{})
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func NewWithOptions(baseURL, genModel, embedModel string, options Options) *Client {
	httpTimeout := options.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: httpTimeout},
		executor:   options.ResilienceExecutor,
	}
}

// Classifier implements ports.IntentClassifier.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) ClassifyIntent(ctx context.Context, query string) (domain.IntentLabel, error) {
	respText, err := c.client.generateJSON(ctx, "classify_intent", buildIntentPrompt(query))
	if err != nil {
		return domain.IntentLabel{}, err
	}

	var parsed struct {
		Intent     string          `json:"intent"`
		Confidence json.RawMessage `json:"confidence"`
		Reason     string          `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		return domain.IntentLabel{}, fmt.Errorf("parse intent json: %w", err)
	}

	// Confidence arrives as arbitrary JSON; anything non-numeric reads
	// as zero rather than failing the stage.
	var confidence float64
	if len(parsed.Confidence) > 0 {
		if err := json.Unmarshal(parsed.Confidence, &confidence); err != nil {
			confidence = 0
		}
	}

	return domain.IntentLabel{
		Intent:     domain.ParseIntent(parsed.Intent),
		Confidence: domain.ClampConfidence(confidence),
		Reason:     parsed.Reason,
	}, nil
}

// Rewriter implements ports.RewriteGenerator. Risk estimates are fixed per
// intent shape; only the candidate text comes from the model.
type Rewriter struct {
	client *Client
}

func NewRewriter(client *Client) *Rewriter {
	return &Rewriter{client: client}
}

func (r *Rewriter) GenerateRewrite(ctx context.Context, query string, intent domain.Intent) ([]string, *domain.RewriteRisk, error) {
	prompt := buildRewritePrompt(query, intent)
	if prompt == "" {
		return nil, nil, nil
	}

	respText, err := r.client.generateJSON(ctx, "generate_rewrite", prompt)
	if err != nil {
		return nil, nil, err
	}

	var parsed struct {
		ExpandedQuery string   `json:"expanded_query"`
		Hyde          string   `json:"hyde"`
		SubQuestions  []string `json:"sub_questions"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		return nil, nil, fmt.Errorf("parse rewrite json: %w", err)
	}

	switch intent {
	case domain.IntentFactual:
		if strings.TrimSpace(parsed.ExpandedQuery) == "" {
			return nil, nil, fmt.Errorf("rewrite response missing expanded_query")
		}
		return []string{parsed.ExpandedQuery}, &domain.RewriteRisk{PrecisionRisk: 0.0, RecallBoost: 0.4}, nil

	case domain.IntentAnalytical:
		if strings.TrimSpace(parsed.ExpandedQuery) == "" || strings.TrimSpace(parsed.Hyde) == "" {
			return nil, nil, fmt.Errorf("rewrite response missing expanded_query or hyde")
		}
		return []string{parsed.ExpandedQuery, parsed.Hyde}, &domain.RewriteRisk{PrecisionRisk: 0.6, RecallBoost: 0.7}, nil

	case domain.IntentMultiHop:
		questions := make([]string, 0, len(parsed.SubQuestions))
		for _, q := range parsed.SubQuestions {
			if strings.TrimSpace(q) != "" {
				questions = append(questions, q)
			}
		}
		if len(questions) == 0 {
			return nil, nil, fmt.Errorf("rewrite response missing sub_questions")
		}
		return questions, &domain.RewriteRisk{PrecisionRisk: 0.7, RecallBoost: 0.8}, nil
	}
	return nil, nil, nil
}

// Embedder implements ports.Embedder.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": []string{text},
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.post(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Embeddings[0], nil
}

// Generator implements ports.AnswerModel under the evidence-bound
// instruction set.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, evidence []domain.EvidenceChunk) (string, error) {
	return g.client.generateText(ctx, "generate_answer", buildAnswerPrompt(question, evidence))
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	})
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/api/generate", reqBody, &response, operation); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

// extractJSONObject trims any prose the model wraps around its JSON body.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
