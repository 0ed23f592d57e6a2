package port

import "corpus/internal/domain"

// Ranker ranks documents of a built index against a free-text query.
type Ranker interface {
	// Rank returns at most topN documents, best first.
	Rank(query string, topN int, useWeighting bool) []domain.ScoredDocument
}
