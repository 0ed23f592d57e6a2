package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sirupsen/logrus"

	"corpus/internal/adapter/memstore"
	"corpus/internal/domain"
	"corpus/internal/port"
)

// DocumentLoader produces documents from an external location.
type DocumentLoader interface {
	Load(ctx context.Context, root string) ([]domain.Document, error)
}

// IngestResult summarizes an ingestion.
type IngestResult struct {
	Added    int
	FirstID  int
	LastID   int
	Total    int
	Warnings []string
}

// IngestUseCase adds loaded documents to a store and persists the result.
type IngestUseCase struct {
	docs  *memstore.DocumentStore
	store port.CorpusStore
	log   *logrus.Entry
}

func NewIngestUseCase(docs *memstore.DocumentStore, store port.CorpusStore, log *logrus.Entry) *IngestUseCase {
	return &IngestUseCase{docs: docs, store: store, log: log}
}

// Ingest loads documents from root and adds them in loader order. The store
// is saved only when at least one document was added.
func (u *IngestUseCase) Ingest(ctx context.Context, loader DocumentLoader, root string) (*IngestResult, error) {
	loaded, err := loader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return u.AddAll(loaded)
}

// AddAll adds docs in order and saves the corpus.
func (u *IngestUseCase) AddAll(docs []domain.Document) (*IngestResult, error) {
	result := &IngestResult{FirstID: -1, LastID: -1}
	for _, doc := range docs {
		if doc.Text == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("document %q has no text", doc.Title))
		}
		id := u.docs.Add(doc)
		if result.FirstID < 0 {
			result.FirstID = id
		}
		result.LastID = id
		result.Added++
	}
	result.Total = u.docs.Len()

	if result.Added > 0 {
		if err := u.store.Save(u.docs.Documents()); err != nil {
			return nil, fmt.Errorf("failed to save corpus: %w", err)
		}
	}
	u.log.WithFields(logrus.Fields{
		"added": result.Added,
		"total": result.Total,
	}).Info("documents ingested")
	return result, nil
}

// LoadInto re-adds every persisted document to docs in identifier order, so
// identifiers are reproduced when the persisted ids are contiguous from 0.
// A corpus file that does not exist yet loads as empty.
func LoadInto(store port.CorpusStore, docs *memstore.DocumentStore) (int, error) {
	loaded, err := store.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load corpus: %w", err)
	}
	for i, doc := range loaded {
		if id := docs.Add(doc); id != doc.ID {
			return i, fmt.Errorf("document %d was reloaded as %d: persisted identifiers are not contiguous", doc.ID, id)
		}
	}
	return len(loaded), nil
}
