package source

import (
	"strings"
	"time"

	"corpus/internal/domain"
)

// Spec carries the raw fields of a document as found in a dataset row.
// Comments and CoAuthors are only read for the matching source kind.
type Spec struct {
	Source    string
	Title     string
	Author    string
	Date      time.Time
	URL       string
	Text      string
	Comments  int
	CoAuthors []string
}

// KindOf maps a dataset source tag to a document kind. Unknown tags yield a
// generic document.
func KindOf(tag string) domain.Kind {
	kind, err := domain.ParseKind(tag)
	if err != nil {
		return domain.KindGeneric
	}
	return kind
}

// New builds the document variant selected by spec.Source.
func New(spec Spec) domain.Document {
	switch KindOf(spec.Source) {
	case domain.KindForumPost:
		comments := spec.Comments
		if comments < 0 {
			comments = 0
		}
		return domain.NewForumPost(spec.Title, spec.Author, spec.Date, spec.URL, spec.Text, comments)
	case domain.KindPreprint:
		names := make([]string, 0, len(spec.CoAuthors))
		for _, name := range spec.CoAuthors {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return domain.NewPreprint(spec.Title, spec.Author, spec.Date, spec.URL, spec.Text, names)
	default:
		return domain.NewDocument(spec.Title, spec.Author, spec.Date, spec.URL, spec.Text)
	}
}
