package retriever

import (
	"math"
	"sort"

	"corpus/internal/domain"
)

// Judgment lists the documents considered relevant for one benchmark query,
// with an optional graded relevance used by NDCG.
type Judgment struct {
	Query    string      `yaml:"query" json:"query"`
	Relevant map[int]int `yaml:"relevant" json:"relevant"`
}

// PrecisionAtK is the share of retrieved documents that are relevant.
func PrecisionAtK(retrieved []domain.ScoredDocument, j Judgment) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(hits(retrieved, j)) / float64(len(retrieved))
}

// RecallAtK is the share of relevant documents that were retrieved.
func RecallAtK(retrieved []domain.ScoredDocument, j Judgment) float64 {
	if len(j.Relevant) == 0 {
		return 0
	}
	return float64(hits(retrieved, j)) / float64(len(j.Relevant))
}

// ReciprocalRank is 1/rank of the first relevant document, or 0.
func ReciprocalRank(retrieved []domain.ScoredDocument, j Judgment) float64 {
	for i, r := range retrieved {
		if _, ok := j.Relevant[r.DocID]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// NDCG compares the graded gain of retrieved against the ideal ordering of
// the judged documents, truncated to the same length.
func NDCG(retrieved []domain.ScoredDocument, j Judgment) float64 {
	gains := make([]float64, len(retrieved))
	for i, r := range retrieved {
		gains[i] = float64(j.Relevant[r.DocID])
	}

	ideal := make([]float64, 0, len(j.Relevant))
	for _, g := range j.Relevant {
		ideal = append(ideal, float64(g))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	if len(ideal) > len(gains) {
		ideal = ideal[:len(gains)]
	}

	idcg := dcg(ideal)
	if idcg == 0 {
		return 0
	}
	return dcg(gains) / idcg
}

func hits(retrieved []domain.ScoredDocument, j Judgment) int {
	n := 0
	for _, r := range retrieved {
		if _, ok := j.Relevant[r.DocID]; ok {
			n++
		}
	}
	return n
}

func dcg(gains []float64) float64 {
	total := 0.0
	for i, g := range gains {
		total += g / math.Log2(float64(i+2))
	}
	return total
}
