package port

import "corpus/internal/domain"

// CorpusStore persists the documents of a corpus.
type CorpusStore interface {
	// Save replaces the stored corpus with docs.
	Save(docs []domain.Document) error

	// Load returns the stored documents in ascending identifier order.
	Load() ([]domain.Document, error)

	Close() error
}
