package retriever

import (
	"math"
	"sort"

	"corpus/internal/domain"
)

// QueryVector projects query onto the index vocabulary and returns it
// L2-normalized. Out-of-vocabulary tokens are ignored. The second result is
// false when no query token is known to the index.
func (ix *Index) QueryVector(query string, useWeighting bool) ([]float64, bool) {
	vec := make([]float64, ix.vocab.Len())
	matched := false
	for _, token := range ix.tokenizer.Tokenize(query) {
		entry, ok := ix.vocab.Lookup(token)
		if !ok {
			continue
		}
		vec[entry.Column]++
		matched = true
	}
	if !matched {
		return vec, false
	}

	if useWeighting {
		for col := range vec {
			vec[col] *= ix.idf[col]
		}
	}

	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	for col := range vec {
		vec[col] /= norm
	}
	return vec, true
}

// Rank scores every indexed document against query by cosine similarity and
// returns the best topN, score descending then identifier ascending. Raw TF
// vectors are compared when useWeighting is false.
func (ix *Index) Rank(query string, topN int, useWeighting bool) []domain.ScoredDocument {
	if topN <= 0 || len(ix.docIDs) == 0 {
		return []domain.ScoredDocument{}
	}
	q, ok := ix.QueryVector(query, useWeighting)
	if !ok {
		return []domain.ScoredDocument{}
	}

	matrix, norms := ix.tf, ix.tfNorms
	if useWeighting {
		matrix, norms = ix.tfidf, ix.tfidfNorms
	}

	results := make([]domain.ScoredDocument, len(ix.docIDs))
	for i, id := range ix.docIDs {
		cols, vals := matrix.Row(i)
		dot := 0.0
		for k, col := range cols {
			dot += vals[k] * q[col]
		}
		results[i] = domain.ScoredDocument{DocID: id, Score: dot / norms[i]}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if topN < len(results) {
		results = results[:topN]
	}
	return results
}
