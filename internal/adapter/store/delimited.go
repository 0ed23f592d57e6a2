package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"corpus/internal/adapter/source"
	"corpus/internal/domain"
)

var ErrMalformedFile = errors.New("malformed corpus file")

var delimitedHeader = []string{"id", "type", "title", "author", "date", "url", "text", "comments", "coauthors", "text_escaped"}

// columnAliases maps accepted header spellings to canonical column names.
var columnAliases = map[string]string{
	"titre":           "title",
	"auteur":          "author",
	"texte":           "text",
	"origine":         "source",
	"nb_commentaires": "comments",
	"co_auteurs":      "coauthors",
}

// DelimitedStore keeps a corpus in a single delimiter-separated file.
type DelimitedStore struct {
	path  string
	comma rune
	now   func() time.Time
}

func NewTSVStore(path string) *DelimitedStore {
	return &DelimitedStore{path: path, comma: '\t', now: time.Now}
}

func NewCSVStore(path string) *DelimitedStore {
	return &DelimitedStore{path: path, comma: ',', now: time.Now}
}

func (s *DelimitedStore) Save(docs []domain.Document) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.path, err)
	}
	defer f.Close()

	if err := s.write(f, docs); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return f.Close()
}

func (s *DelimitedStore) write(w io.Writer, docs []domain.Document) error {
	cw := csv.NewWriter(w)
	cw.Comma = s.comma
	if err := cw.Write(delimitedHeader); err != nil {
		return err
	}
	for _, r := range toRecords(docs) {
		row := []string{
			strconv.Itoa(r.ID),
			string(r.Kind),
			r.Title,
			r.Author,
			r.Date.Format(time.RFC3339Nano),
			r.URL,
			r.Text,
			"",
			"",
			"",
		}
		// encoding/csv folds \r\n inside quoted fields, so such texts are escaped.
		if strings.ContainsRune(r.Text, '\r') {
			row[6] = escapeText(r.Text)
			row[9] = "true"
		}
		switch r.Kind {
		case domain.KindForumPost:
			row[7] = strconv.Itoa(r.Comments)
		case domain.KindPreprint:
			names := r.CoAuthors
			if names == nil {
				names = []string{}
			}
			data, err := json.Marshal(names)
			if err != nil {
				return err
			}
			row[8] = string(data)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *DelimitedStore) Load() ([]domain.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()
	return s.read(f)
}

func (s *DelimitedStore) read(r io.Reader) ([]domain.Document, error) {
	cr := csv.NewReader(r)
	cr.Comma = s.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		columns[name] = i
	}
	if _, ok := columns["text"]; !ok {
		return nil, fmt.Errorf("%w: no text column", ErrMalformedFile)
	}

	_, hasTitle := columns["title"]
	_, hasType := columns["type"]
	_, hasSource := columns["source"]
	reduced := !hasTitle && !hasType && hasSource

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	now := s.now().UTC()
	var records []record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		n := len(records)

		if reduced {
			tag := strings.ToLower(strings.TrimSpace(field(row, "source")))
			doc := source.New(source.Spec{
				Source: tag,
				Title:  fmt.Sprintf("%s doc %d", strings.ToUpper(tag), n+1),
				Author: "unknown",
				Date:   now,
				Text:   field(row, "text"),
			})
			doc.ID = n
			records = append(records, toRecord(doc))
			continue
		}

		rec := record{
			ID:     n,
			Kind:   domain.Kind(field(row, "type")),
			Title:  field(row, "title"),
			Author: field(row, "author"),
			Date:   source.ParseTimestamp(field(row, "date"), now),
			URL:    field(row, "url"),
			Text:   field(row, "text"),
		}
		if raw := strings.TrimSpace(field(row, "id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad id %q", ErrMalformedFile, line, raw)
			}
			rec.ID = id
		}
		if flag := strings.TrimSpace(field(row, "text_escaped")); flag == "true" {
			rec.Text = unescapeText(rec.Text)
		}
		if raw := strings.TrimSpace(field(row, "comments")); raw != "" {
			comments, err := parseCount(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad comment count %q", ErrMalformedFile, line, raw)
			}
			rec.Comments = comments
		}
		if raw := strings.TrimSpace(field(row, "coauthors")); raw != "" {
			names, err := parseNames(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad co-author list %q", ErrMalformedFile, line, raw)
			}
			rec.CoAuthors = names
		}
		records = append(records, rec)
	}

	return fromRecords(records)
}

func (s *DelimitedStore) Close() error { return nil }

// parseCount accepts integers and integral floats such as "3.0", which
// spreadsheet exports produce for count columns.
func parseCount(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not a whole count", raw)
	}
	return int(f), nil
}

// parseNames reads a JSON array of names, falling back to the older
// semicolon separated form.
func parseNames(raw string) ([]string, error) {
	if strings.HasPrefix(raw, "[") {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, err
		}
		return names, nil
	}
	var names []string
	for _, name := range strings.Split(raw, ";") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func escapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

func unescapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			switch text[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			}
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
