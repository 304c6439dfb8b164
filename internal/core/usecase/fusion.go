package usecase

import (
	"sort"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

const fusionStrategy = "intent_weighted_minmax"

// Intent-conditioned fusion weights. Factual lookups bias hard toward the
// dense signal and additionally gate out chunks with weak semantic
// similarity; every other intent keeps lexical recall in play.
const (
	factualDenseWeight   = 0.8
	factualLexicalWeight = 0.2
	factualDenseGate     = 0.35

	defaultDenseWeight   = 0.6
	defaultLexicalWeight = 0.4
)

// minMaxNormalize rescales a score set into [0,1] using its own min/max.
// A degenerate set (zero or one candidate, or all scores equal) maps every
// score to 1.0 so the result stays defined.
func minMaxNormalize(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	var minScore, maxScore float64
	first := true
	for _, v := range scores {
		if first {
			minScore, maxScore = v, v
			first = false
			continue
		}
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	if minScore == maxScore {
		for k := range scores {
			out[k] = 1.0
		}
		return out
	}

	span := maxScore - minScore
	for k, v := range scores {
		out[k] = (v - minScore) / span
	}
	return out
}

// fuseHybrid combines dense and lexical candidate lists into one ranked,
// intent-weighted list. Pure function: the candidate set is driven by the
// dense-normalized keys, so lexical-only hits contribute score but never
// introduce candidates on their own.
//
// Tie-break: stable sort by final score descending, then chunk id
// ascending, so equal-score orderings are deterministic.
func fuseHybrid(dense, lexical []domain.RetrievalCandidate, intent domain.Intent, topK int) []domain.FusedCandidate {
	denseScores := make(map[string]float64, len(dense))
	for _, c := range dense {
		denseScores[c.ChunkID] = c.RawScore
	}
	lexicalScores := make(map[string]float64, len(lexical))
	for _, c := range lexical {
		lexicalScores[c.ChunkID] = c.RawScore
	}

	denseNorm := minMaxNormalize(denseScores)
	lexicalNorm := minMaxNormalize(lexicalScores)

	wDense, wLexical, gate := defaultDenseWeight, defaultLexicalWeight, 0.0
	if intent == domain.IntentFactual {
		wDense, wLexical, gate = factualDenseWeight, factualLexicalWeight, factualDenseGate
	}

	fused := make([]domain.FusedCandidate, 0, len(denseNorm))
	for chunkID, dn := range denseNorm {
		if dn < gate {
			continue
		}
		fused = append(fused, domain.FusedCandidate{
			ChunkID:    chunkID,
			FinalScore: wDense*dn + wLexical*lexicalNorm[chunkID],
		})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].FinalScore != fused[j].FinalScore {
			return fused[i].FinalScore > fused[j].FinalScore
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})

	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}
