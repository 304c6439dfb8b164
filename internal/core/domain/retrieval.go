package domain

// RetrievalSource tags which index produced a candidate.
type RetrievalSource string

const (
	SourceDense   RetrievalSource = "dense"
	SourceLexical RetrievalSource = "lexical"
)

// RetrievalCandidate is a raw (chunk_id, score) pair from one index.
// Ephemeral: it exists only between search and fusion.
type RetrievalCandidate struct {
	ChunkID  string          `json:"chunk_id"`
	RawScore float64         `json:"raw_score"`
	Source   RetrievalSource `json:"source"`
}

// FusedCandidate carries the intent-weighted combined score in [0,1].
// Descending FinalScore order is the ranking contract.
type FusedCandidate struct {
	ChunkID    string  `json:"chunk_id"`
	FinalScore float64 `json:"final_score"`
}

// EvidenceChunk is validated ground-truth text fetched from the chunk
// store. It is the only structure the answer generator may read text from.
type EvidenceChunk struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	FinalScore float64 `json:"final_score"`
}

// StoredChunk is what the external chunk store returns for a chunk id.
type StoredChunk struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

// RetrievalDebug summarizes what the coordinator saw before fusion.
type RetrievalDebug struct {
	DenseCount   int    `json:"dense_count"`
	LexicalCount int    `json:"lexical_count"`
	FusedCount   int    `json:"fused_count"`
	Fusion       string `json:"fusion"`
}
