package store

import (
	"fmt"
	"time"

	"corpus/internal/domain"
)

// record is the flat serialized form of a document shared by every format.
type record struct {
	ID        int         `json:"id"`
	Kind      domain.Kind `json:"type"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Date      time.Time   `json:"date"`
	URL       string      `json:"url"`
	Text      string      `json:"text"`
	Comments  int         `json:"comments,omitempty"`
	CoAuthors []string    `json:"coauthors,omitempty"`
}

func toRecord(doc domain.Document) record {
	r := record{
		ID:     doc.ID,
		Kind:   doc.Kind(),
		Title:  doc.Title,
		Author: doc.Author,
		Date:   doc.Date,
		URL:    doc.URL,
		Text:   doc.Text,
	}
	if n, ok := doc.CommentCount(); ok {
		r.Comments = n
	}
	if names, ok := doc.CoAuthors(); ok {
		r.CoAuthors = names
	}
	return r
}

func (r record) document() (domain.Document, error) {
	kind, err := domain.ParseKind(string(r.Kind))
	if err != nil {
		return domain.Document{}, fmt.Errorf("document %d: %w", r.ID, err)
	}

	var doc domain.Document
	switch kind {
	case domain.KindForumPost:
		if r.Comments < 0 {
			return domain.Document{}, fmt.Errorf("document %d: %w", r.ID, domain.ErrInvalidCommentCount)
		}
		doc = domain.NewForumPost(r.Title, r.Author, r.Date, r.URL, r.Text, r.Comments)
	case domain.KindPreprint:
		doc = domain.NewPreprint(r.Title, r.Author, r.Date, r.URL, r.Text, r.CoAuthors)
	default:
		doc = domain.NewDocument(r.Title, r.Author, r.Date, r.URL, r.Text)
	}
	doc.ID = r.ID
	return doc, nil
}

func toRecords(docs []domain.Document) []record {
	records := make([]record, len(docs))
	for i, doc := range docs {
		records[i] = toRecord(doc)
	}
	return records
}

func fromRecords(records []record) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(records))
	for _, r := range records {
		doc, err := r.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sortByID(docs)
	return docs, nil
}
