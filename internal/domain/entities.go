package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind names the closed set of document variants.
type Kind string

const (
	KindGeneric   Kind = "generic"
	KindForumPost Kind = "forum-post"
	KindPreprint  Kind = "preprint"
)

// ParseKind maps a stored or user supplied tag to a Kind. Source names used by
// the loaders ("reddit", "arxiv", "document") are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic", "document":
		return KindGeneric, nil
	case "forum-post", "forum", "reddit":
		return KindForumPost, nil
	case "preprint", "arxiv":
		return KindPreprint, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Variant is the kind-specific payload of a Document. The set of
// implementations is closed: Generic, ForumPost and Preprint.
type Variant interface {
	variant()
}

type Generic struct{}

type ForumPost struct {
	Comments int
}

type Preprint struct {
	CoAuthors []string
}

func (Generic) variant()   {}
func (ForumPost) variant() {}
func (Preprint) variant()  {}

// Document is one entry of the corpus. ID is assigned by the document store.
type Document struct {
	ID      int
	Title   string
	Author  string
	Date    time.Time
	URL     string
	Text    string
	Variant Variant
}

func NewDocument(title, author string, date time.Time, url, text string) Document {
	return Document{
		Title:   title,
		Author:  author,
		Date:    date,
		URL:     url,
		Text:    text,
		Variant: Generic{},
	}
}

func NewForumPost(title, author string, date time.Time, url, text string, comments int) Document {
	doc := NewDocument(title, author, date, url, text)
	doc.Variant = ForumPost{Comments: comments}
	return doc
}

func NewPreprint(title, author string, date time.Time, url, text string, coAuthors []string) Document {
	doc := NewDocument(title, author, date, url, text)
	doc.Variant = Preprint{CoAuthors: copyNames(coAuthors)}
	return doc
}

// Kind reports the variant of the document. A nil variant is generic.
func (d Document) Kind() Kind {
	switch d.Variant.(type) {
	case ForumPost:
		return KindForumPost
	case Preprint:
		return KindPreprint
	default:
		return KindGeneric
	}
}

// CommentCount returns the comment count of a forum post.
func (d Document) CommentCount() (int, bool) {
	if fp, ok := d.Variant.(ForumPost); ok {
		return fp.Comments, true
	}
	return 0, false
}

// CoAuthors returns a copy of the co-author list of a preprint.
func (d Document) CoAuthors() ([]string, bool) {
	if pp, ok := d.Variant.(Preprint); ok {
		return copyNames(pp.CoAuthors), true
	}
	return nil, false
}

// SetCommentCount updates the comment count of a forum post.
func (d *Document) SetCommentCount(n int) error {
	if _, ok := d.Variant.(ForumPost); !ok {
		return fmt.Errorf("set comment count on %s document %d: %w", d.Kind(), d.ID, ErrVariantMismatch)
	}
	if n < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCommentCount, n)
	}
	d.Variant = ForumPost{Comments: n}
	return nil
}

// SetCoAuthors replaces the co-author list of a preprint. Blank names are
// rejected.
func (d *Document) SetCoAuthors(names []string) error {
	if _, ok := d.Variant.(Preprint); !ok {
		return fmt.Errorf("set co-authors on %s document %d: %w", d.Kind(), d.ID, ErrVariantMismatch)
	}
	if names == nil {
		return fmt.Errorf("%w: nil list", ErrInvalidCoAuthors)
	}
	cleaned := make([]string, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return fmt.Errorf("%w: blank name at position %d", ErrInvalidCoAuthors, i)
		}
		cleaned[i] = n
	}
	d.Variant = Preprint{CoAuthors: cleaned}
	return nil
}

// Clone returns a deep copy that shares no mutable state with d.
func (d Document) Clone() Document {
	if pp, ok := d.Variant.(Preprint); ok {
		d.Variant = Preprint{CoAuthors: copyNames(pp.CoAuthors)}
	}
	return d
}

func (d Document) String() string {
	switch v := d.Variant.(type) {
	case ForumPost:
		return fmt.Sprintf("[%s] %s (comments: %d)", KindForumPost, d.Title, v.Comments)
	case Preprint:
		co := "none"
		if len(v.CoAuthors) > 0 {
			co = strings.Join(v.CoAuthors, ", ")
		}
		return fmt.Sprintf("[%s] %s (co-authors: %s)", KindPreprint, d.Title, co)
	default:
		return fmt.Sprintf("[%s] %s", KindGeneric, d.Title)
	}
}

func copyNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Author aggregates the documents written by one author.
type Author struct {
	Name       string
	Production map[int]Document
}

func (a Author) DocCount() int {
	return len(a.Production)
}

// AverageLength is the mean text length, in characters, of the author's documents.
func (a Author) AverageLength() float64 {
	if len(a.Production) == 0 {
		return 0
	}
	total := 0
	for _, doc := range a.Production {
		total += utf8.RuneCountInString(doc.Text)
	}
	return float64(total) / float64(len(a.Production))
}

type ScoredDocument struct {
	DocID int
	Score float64
}

// VocabEntry describes one term of a built index.
type VocabEntry struct {
	Column int     `json:"column"`
	TF     int     `json:"tf"`
	DF     int     `json:"df"`
	IDF    float64 `json:"idf"`
}

type TermStat struct {
	Word string `json:"word"`
	TF   int    `json:"tf"`
	DF   int    `json:"df"`
}

type CorpusStats struct {
	Documents      int        `json:"documents"`
	VocabularySize int        `json:"vocabulary_size"`
	Terms          []TermStat `json:"terms"`
}

type ConcordanceLine struct {
	Left  string `json:"left"`
	Match string `json:"match"`
	Right string `json:"right"`
}

type KindComparison struct {
	Word string  `json:"word"`
	TFA  int     `json:"tf_a"`
	TFB  int     `json:"tf_b"`
	RelA float64 `json:"rel_a"`
	RelB float64 `json:"rel_b"`
	Diff float64 `json:"diff"`
}

type TrendPoint struct {
	Period  time.Time `json:"period"`
	Hits    int       `json:"hits"`
	Total   int       `json:"total"`
	RelFreq float64   `json:"rel_freq"`
}
