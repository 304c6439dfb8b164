package domain

import "strings"

// Intent is the closed set of answer-shape labels the classifier may emit.
type Intent string

const (
	IntentFactual      Intent = "factual"
	IntentAnalytical   Intent = "analytical"
	IntentMultiHop     Intent = "multi_hop"
	IntentUnanswerable Intent = "unanswerable"
	IntentUnknown      Intent = "unknown"
)

// ParseIntent maps free-form model output onto the closed enumeration.
// Anything outside the set collapses to IntentUnknown.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentFactual:
		return IntentFactual
	case IntentAnalytical:
		return IntentAnalytical
	case IntentMultiHop:
		return IntentMultiHop
	case IntentUnanswerable:
		return IntentUnanswerable
	default:
		return IntentUnknown
	}
}

// IntentLabel is advisory only: downstream stages read it as an
// optimization signal and never hard-block on the label alone.
type IntentLabel struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ClampConfidence forces confidence into [0,1]; out-of-range values
// reject to 0.0 rather than saturating, matching the fail-closed bias.
func ClampConfidence(v float64) float64 {
	if v < 0 || v > 1 || v != v {
		return 0
	}
	return v
}
