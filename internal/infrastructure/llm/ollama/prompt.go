package ollama

import (
	"fmt"
	"strings"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

func buildIntentPrompt(query string) string {
	return fmt.Sprintf(`You are an intent classifier for a retrieval system.

Allowed labels:
- factual
- analytical
- multi_hop
- unanswerable

Return ONLY valid JSON. No markdown. No extra text.

Schema:
{
  "intent": string,
  "confidence": number,
  "reason": string
}

Query: %q`, query)
}

// buildRewritePrompt returns the intent-shaped rewrite instruction, or ""
// when the intent warrants no rewrite.
func buildRewritePrompt(query string, intent domain.Intent) string {
	switch intent {
	case domain.IntentFactual:
		return fmt.Sprintf(`Expand the query with essential keywords only.
Do NOT broaden scope.
Do NOT introduce new entities.

Query: %q

Return JSON:
{ "expanded_query": "..." }`, query)

	case domain.IntentAnalytical:
		return fmt.Sprintf(`Generate:
1. A keyword-expanded query
2. A hypothetical answer (HyDE)

Rules:
- HyDE must only rephrase concepts implied by the query
- No new entities
- No assumptions

Query: %q

Return JSON:
{
  "expanded_query": "...",
  "hyde": "..."
}`, query)

	case domain.IntentMultiHop:
		return fmt.Sprintf(`Decompose into minimal sub-questions.
Each sub-question must be answerable independently.

Query: %q

Return JSON:
{ "sub_questions": ["...", "..."] }`, query)
	}
	return ""
}

func buildAnswerPrompt(question string, evidence []domain.EvidenceChunk) string {
	var contextBuilder strings.Builder
	for _, chunk := range evidence {
		contextBuilder.WriteString(fmt.Sprintf("[%s] %s\n\n", chunk.ChunkID, chunk.Text))
	}

	return fmt.Sprintf(`You are an evidence-bound assistant.

Rules:
- Answer ONLY using the provided evidence.
- Do NOT add external knowledge.
- If the evidence does not fully answer the question, say so explicitly.
- Do NOT speculate or infer beyond the text.

Question:
%s

Evidence:
%s
Answer:`, question, contextBuilder.String())
}
