package qdrant

import "testing"

func TestEncodeSparseQueryDeterministic(t *testing.T) {
	v1 := encodeSparseQuery("transformer attention mechanism")
	v2 := encodeSparseQuery("transformer attention mechanism")
	if len(v1.Indices) != len(v2.Indices) || len(v1.Values) != len(v2.Values) {
		t.Fatalf("vector sizes mismatch: v1=%d/%d v2=%d/%d", len(v1.Indices), len(v1.Values), len(v2.Indices), len(v2.Values))
	}
	for i := range v1.Indices {
		if v1.Indices[i] != v2.Indices[i] {
			t.Fatalf("indices mismatch at %d: %d vs %d", i, v1.Indices[i], v2.Indices[i])
		}
		if v1.Values[i] != v2.Values[i] {
			t.Fatalf("values mismatch at %d: %f vs %f", i, v1.Values[i], v2.Values[i])
		}
	}
}

func TestEncodeSparseQuerySortsIndices(t *testing.T) {
	v := encodeSparseQuery("zulu alpha beta gamma")
	if len(v.Indices) == 0 {
		t.Fatalf("expected non-empty sparse vector")
	}
	for i := 1; i < len(v.Indices); i++ {
		if v.Indices[i-1] > v.Indices[i] {
			t.Fatalf("indices not sorted at %d: %d > %d", i, v.Indices[i-1], v.Indices[i])
		}
	}
}

func TestEncodeSparseQueryRepeatedTermSaturates(t *testing.T) {
	once := encodeSparseQuery("attention")
	thrice := encodeSparseQuery("attention attention attention")
	if len(once.Values) != 1 || len(thrice.Values) != 1 {
		t.Fatalf("expected single-term vectors, got %d and %d", len(once.Values), len(thrice.Values))
	}
	if thrice.Values[0] <= once.Values[0] {
		t.Fatalf("expected higher weight for repeated term: %f vs %f", thrice.Values[0], once.Values[0])
	}
	if thrice.Values[0] >= float32(queryBM25K+1.0) {
		t.Fatalf("expected BM25 saturation below k+1, got %f", thrice.Values[0])
	}
}

func TestEncodeSparseQueryEmptyNoiseInput(t *testing.T) {
	v := encodeSparseQuery("___---!!!")
	if len(v.Indices) != 0 || len(v.Values) != 0 {
		t.Fatalf("expected empty sparse vector, got %+v", v)
	}
}
