package retriever

import (
	"testing"

	"corpus/internal/domain"
)

func ranked(ids ...int) []domain.ScoredDocument {
	out := make([]domain.ScoredDocument, len(ids))
	for i, id := range ids {
		out[i] = domain.ScoredDocument{DocID: id, Score: 1 / float64(i+1)}
	}
	return out
}

func judged(grades map[int]int) Judgment {
	return Judgment{Query: "q", Relevant: grades}
}

func TestPrecisionAtK(t *testing.T) {
	rel := judged(map[int]int{1: 1, 2: 1, 3: 1})
	cases := []struct {
		name      string
		retrieved []domain.ScoredDocument
		wantP     float64
	}{
		{"perfect", ranked(1, 2, 3), 1.0},
		{"partial", ranked(1, 2, 9), 0.666},
		{"none", ranked(7, 8, 9), 0.0},
		{"empty_retrieved", ranked(), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := PrecisionAtK(tc.retrieved, rel)
			if diff := p - tc.wantP; diff > 0.01 || diff < -0.01 {
				t.Errorf("precision = %.3f, want %.3f", p, tc.wantP)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []domain.ScoredDocument
		relevant  Judgment
		wantR     float64
	}{
		{"perfect", ranked(1, 2, 3), judged(map[int]int{1: 1, 2: 1, 3: 1}), 1.0},
		{"partial", ranked(1, 2, 9), judged(map[int]int{1: 1, 2: 1, 3: 1}), 0.666},
		{"none", ranked(7, 8, 9), judged(map[int]int{1: 1, 2: 1, 3: 1}), 0.0},
		{"empty_relevant", ranked(1, 2), judged(map[int]int{}), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := RecallAtK(tc.retrieved, tc.relevant)
			if diff := r - tc.wantR; diff > 0.01 || diff < -0.01 {
				t.Errorf("recall = %.3f, want %.3f", r, tc.wantR)
			}
		})
	}
}

func TestReciprocalRank(t *testing.T) {
	rel := judged(map[int]int{1: 1})
	cases := []struct {
		name      string
		retrieved []domain.ScoredDocument
		wantMRR   float64
	}{
		{"first", ranked(1, 2, 3), 1.0},
		{"second", ranked(9, 1, 3), 0.5},
		{"third", ranked(9, 8, 1), 0.333},
		{"missing", ranked(9, 8, 7), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mrr := ReciprocalRank(tc.retrieved, rel)
			if diff := mrr - tc.wantMRR; diff > 0.01 || diff < -0.01 {
				t.Errorf("MRR = %.3f, want %.3f", mrr, tc.wantMRR)
			}
		})
	}
}

func TestNDCG(t *testing.T) {
	rel := judged(map[int]int{1: 3, 2: 2, 3: 1})
	cases := []struct {
		name      string
		retrieved []domain.ScoredDocument
		wantNDCG  float64
	}{
		{"perfect", ranked(1, 2, 3), 1.0},
		{"reversed", ranked(3, 2, 1), 0.790},
		{"irrelevant", ranked(7, 8, 9), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ndcg := NDCG(tc.retrieved, rel)
			if diff := ndcg - tc.wantNDCG; diff > 0.01 || diff < -0.01 {
				t.Errorf("NDCG = %.3f, want %.3f", ndcg, tc.wantNDCG)
			}
		})
	}
}
