package memstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"corpus/internal/domain"
)

// DocumentStore owns the documents of one corpus. Identifiers are assigned
// sequentially from 0 under the write lock and are never reused.
type DocumentStore struct {
	mu         sync.RWMutex
	name       string
	docs       []domain.Document
	authors    map[string][]int
	generation uint64
	allText    *string
}

func NewDocumentStore(name string) *DocumentStore {
	return &DocumentStore{
		name:    name,
		authors: make(map[string][]int),
	}
}

func (s *DocumentStore) Name() string {
	return s.name
}

// Add stores doc and returns its assigned identifier. Any ID already set on
// doc is ignored.
func (s *DocumentStore) Add(doc domain.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc = doc.Clone()
	doc.ID = len(s.docs)
	if doc.Variant == nil {
		doc.Variant = domain.Generic{}
	}
	s.docs = append(s.docs, doc)
	s.authors[doc.Author] = append(s.authors[doc.Author], doc.ID)
	s.generation++
	s.allText = nil
	return doc.ID
}

func (s *DocumentStore) Get(id int) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= len(s.docs) {
		return domain.Document{}, fmt.Errorf("%w: %d", domain.ErrDocumentNotFound, id)
	}
	return s.docs[id].Clone(), nil
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Generation increases on every Add. Indexes built from an older generation
// are stale.
func (s *DocumentStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Documents returns every document in ascending identifier order.
func (s *DocumentStore) Documents() []domain.Document {
	docs, _ := s.Snapshot()
	return docs
}

// Snapshot returns the documents in identifier order together with the
// generation they belong to.
func (s *DocumentStore) Snapshot() ([]domain.Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, len(s.docs))
	for i, doc := range s.docs {
		docs[i] = doc.Clone()
	}
	return docs, s.generation
}

// ByDate orders documents by timestamp, oldest first.
func (s *DocumentStore) ByDate() []domain.Document {
	docs := s.Documents()
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.Before(docs[j].Date)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// ByTitle orders documents by case-insensitive title.
func (s *DocumentStore) ByTitle() []domain.Document {
	docs := s.Documents()
	sort.Slice(docs, func(i, j int) bool {
		ti, tj := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if ti != tj {
			return ti < tj
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

func (s *DocumentStore) NumAuthors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.authors)
}

func (s *DocumentStore) Author(name string) (domain.Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.authors[name]
	if !ok {
		return domain.Author{}, false
	}
	return s.author(name, ids), true
}

// Authors returns every author aggregate sorted by name.
func (s *DocumentStore) Authors() []domain.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := make([]domain.Author, 0, len(s.authors))
	for name, ids := range s.authors {
		authors = append(authors, s.author(name, ids))
	}
	sort.Slice(authors, func(i, j int) bool {
		return authors[i].Name < authors[j].Name
	})
	return authors
}

func (s *DocumentStore) author(name string, ids []int) domain.Author {
	production := make(map[int]domain.Document, len(ids))
	for _, id := range ids {
		production[id] = s.docs[id].Clone()
	}
	return domain.Author{Name: name, Production: production}
}

func (s *DocumentStore) SetCommentCount(id int, n int) error {
	return s.update(id, func(doc *domain.Document) error {
		return doc.SetCommentCount(n)
	})
}

func (s *DocumentStore) SetCoAuthors(id int, names []string) error {
	return s.update(id, func(doc *domain.Document) error {
		return doc.SetCoAuthors(names)
	})
}

// update applies fn to the stored document. Only variant payloads change
// this way, so the text index is not invalidated.
func (s *DocumentStore) update(id int, fn func(*domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.docs) {
		return fmt.Errorf("%w: %d", domain.ErrDocumentNotFound, id)
	}
	return fn(&s.docs[id])
}

// AllText returns the texts of every document joined by newlines. The value
// is cached until the next Add.
func (s *DocumentStore) AllText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allText == nil {
		texts := make([]string, len(s.docs))
		for i, doc := range s.docs {
			texts[i] = doc.Text
		}
		joined := strings.Join(texts, "\n")
		s.allText = &joined
	}
	return *s.allText
}
