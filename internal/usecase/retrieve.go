package usecase

import (
	"fmt"
	"time"
	"unicode/utf8"

	"corpus/internal/adapter/memstore"
	"corpus/internal/domain"
	"corpus/internal/port"
)

const previewRunes = 160

// RetrieveUseCase turns ranked identifiers into displayable results.
type RetrieveUseCase struct {
	ranker port.Ranker
	docs   *memstore.DocumentStore
}

func NewRetrieveUseCase(ranker port.Ranker, docs *memstore.DocumentStore) *RetrieveUseCase {
	return &RetrieveUseCase{
		ranker: ranker,
		docs:   docs,
	}
}

// SearchResult is a ranked document with the metadata shown to users.
type SearchResult struct {
	Rank    int         `json:"rank"`
	ID      int         `json:"id"`
	Score   float64     `json:"score"`
	Kind    domain.Kind `json:"type"`
	Title   string      `json:"title"`
	Author  string      `json:"author"`
	Date    time.Time   `json:"date"`
	URL     string      `json:"url"`
	Preview string      `json:"preview"`
}

// Retrieve ranks the corpus against query and attaches document metadata.
func (u *RetrieveUseCase) Retrieve(query string, topN int, useWeighting bool) ([]SearchResult, error) {
	ranked := u.ranker.Rank(query, topN, useWeighting)

	results := make([]SearchResult, 0, len(ranked))
	for i, r := range ranked {
		doc, err := u.docs.Get(r.DocID)
		if err != nil {
			return nil, fmt.Errorf("resolving result %d: %w", r.DocID, err)
		}
		results = append(results, SearchResult{
			Rank:    i + 1,
			ID:      doc.ID,
			Score:   r.Score,
			Kind:    doc.Kind(),
			Title:   doc.Title,
			Author:  doc.Author,
			Date:    doc.Date,
			URL:     doc.URL,
			Preview: preview(doc.Text),
		})
	}
	return results, nil
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}
