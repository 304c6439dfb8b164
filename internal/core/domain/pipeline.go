package domain

// ValidationStatus is the validator's verdict over fused candidates.
type ValidationStatus string

const (
	ValidationPass   ValidationStatus = "pass"
	ValidationRefuse ValidationStatus = "refuse"
)

// Validator refusal reasons. These are business outcomes, not errors, and
// must reach the caller verbatim.
const (
	ReasonNoRetrievalCandidates  = "No retrieval candidates"
	ReasonNoChunksAboveThreshold = "No chunks above relevance threshold"
	ReasonNoAnswerableEvidence   = "No answerable evidence found"
	ReasonEvidenceInsufficient   = "Evidence insufficient to answer question"
)

// Stable reasons for upstream dependency failures (transport errors and
// timeouts). The pipeline resolves these to a refusal, never a half-built
// answer.
const (
	ReasonEmbeddingUnavailable     = "EMBEDDING_UNAVAILABLE"
	ReasonRetrievalUnavailable     = "RETRIEVAL_UNAVAILABLE"
	ReasonEvidenceStoreUnavailable = "EVIDENCE_STORE_UNAVAILABLE"
	ReasonGenerationUnavailable    = "GENERATION_UNAVAILABLE"
)

// Answer is the generator output after refusal-signal post-processing.
// Citations must be a subset of the evidence chunk ids used to build the
// prompt; an empty citation set forces Supported=false.
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
	Supported bool     `json:"supported"`
}

// PipelineState is the single record threaded through all stages. Each
// stage returns an updated copy; once Refused is set no later stage may
// overwrite it with an answer, and the earliest reason wins.
type PipelineState struct {
	OriginalQuery string

	Intent IntentLabel

	Rewrite RewriteDecision

	QueryVector []float32

	Retrieved      []FusedCandidate
	RetrievalDebug RetrievalDebug

	Evidence         []EvidenceChunk
	ValidationStatus ValidationStatus
	ValidationReason string

	Answer Answer

	Refused       bool
	RefusalReason string
	FinalResponse string
}

// Refuse marks the state refused, keeping the earliest reason.
func (s *PipelineState) Refuse(reason string) {
	if s.Refused {
		return
	}
	s.Refused = true
	s.RefusalReason = reason
}

// QueryResponse is the caller-facing contract. Answer is non-nil iff
// Refused is false.
type QueryResponse struct {
	Answer    *string         `json:"answer"`
	Citations []string        `json:"citations"`
	Refused   bool            `json:"refused"`
	Reason    *string         `json:"reason"`
	Debug     *RetrievalDebug `json:"debug,omitempty"`
}
