package domain

import "time"

// AuditEvent records one pipeline run for downstream analysis. Published
// after the terminal state is reached; carries no evidence text.
type AuditEvent struct {
	EventID       string    `json:"event_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Intent        Intent    `json:"intent"`
	RewriteUsed   bool      `json:"rewrite_used"`
	Refused       bool      `json:"refused"`
	Reason        string    `json:"reason,omitempty"`
	CitationCount int       `json:"citation_count"`
	DurationMS    int64     `json:"duration_ms"`
	OccurredAt    time.Time `json:"occurred_at"`
}
