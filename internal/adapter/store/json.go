package store

import (
	"encoding/json"
	"fmt"
	"os"

	"corpus/internal/domain"
)

type jsonCorpus struct {
	Documents []record `json:"documents"`
}

// JSONStore keeps a corpus in one indented JSON file.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Save(docs []domain.Document) error {
	data, err := json.MarshalIndent(jsonCorpus{Documents: toRecords(docs)}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONStore) Load() ([]domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var corpus jsonCorpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return fromRecords(corpus.Documents)
}

func (s *JSONStore) Close() error { return nil }
