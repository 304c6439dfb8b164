package domain

// RewriteRisk scores a proposed rewrite set. PrecisionRisk estimates how
// likely the rewrite drifts off the original question; RecallBoost
// estimates how much retrieval surface it adds. Both live in [0,1].
type RewriteRisk struct {
	PrecisionRisk float64 `json:"precision_risk"`
	RecallBoost   float64 `json:"recall_boost"`
}

// RewriteDecision records the guard outcome. FinalQuery is what retrieval
// uses; OriginalQuery is always retained unmodified.
type RewriteDecision struct {
	OriginalQuery string       `json:"original_query"`
	FinalQuery    string       `json:"final_query"`
	Candidates    []string     `json:"candidates,omitempty"`
	Risk          *RewriteRisk `json:"risk,omitempty"`
	Allowed       bool         `json:"allowed"`
	Reason        string       `json:"reason"`
}
