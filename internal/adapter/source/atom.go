package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"corpus/internal/domain"
)

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Updated   string       `xml:"updated"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// LoadAtom reads an arXiv API response (an Atom feed) and returns one
// preprint per entry with a non-empty summary. The first author is the
// document author and the others are co-authors.
func LoadAtom(r io.Reader, now time.Time) ([]domain.Document, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var feed atomFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding atom feed: %w", err)
	}

	var docs []domain.Document
	for _, entry := range feed.Entries {
		summary := collapseSpace(entry.Summary)
		if summary == "" {
			continue
		}

		title := collapseSpace(entry.Title)
		if title == "" {
			title = fmt.Sprintf("arxiv-%d", len(docs)+1)
		}

		author := "unknown"
		var coAuthors []string
		for i, a := range entry.Authors {
			name := strings.TrimSpace(a.Name)
			switch {
			case name == "":
			case i == 0:
				author = name
			default:
				coAuthors = append(coAuthors, name)
			}
		}

		published := entry.Published
		if strings.TrimSpace(published) == "" {
			published = entry.Updated
		}

		docs = append(docs, New(Spec{
			Source:    "arxiv",
			Title:     title,
			Author:    author,
			Date:      ParseTimestamp(published, now),
			URL:       strings.TrimSpace(entry.ID),
			Text:      summary,
			CoAuthors: coAuthors,
		}))
	}
	return docs, nil
}

func LoadAtomFile(path string, now time.Time) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadAtom(f, now)
}
