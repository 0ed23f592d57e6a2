package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/domain"
)

// SpeechOptions controls LoadSpeeches.
type SpeechOptions struct {
	// Limit caps the number of speeches read; 0 reads all of them.
	Limit int
	// Now is used for speeches without a parseable date.
	Now time.Time
}

// LoadSpeeches reads a tab-separated speech dataset with the columns
// speaker, text, descr, link and date. Every sentence of every speech
// becomes one generic document authored by the speaker.
func LoadSpeeches(r io.Reader, opts SpeechOptions) ([]domain.Document, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading speech header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["text"]; !ok {
		return nil, fmt.Errorf("speech dataset has no text column")
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var docs []domain.Document
	for speeches := 0; opts.Limit <= 0 || speeches < opts.Limit; speeches++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading speech %d: %w", speeches+1, err)
		}

		speaker := field(row, "speaker")
		if speaker == "" {
			speaker = "unknown"
		}
		descr := field(row, "descr")
		link := field(row, "link")
		date := parseSpeechDate(field(row, "date"), opts.Now)

		for i, sentence := range analyzer.SplitSentences(field(row, "text")) {
			title := descr
			if title == "" {
				title = fmt.Sprintf("Speech sentence #%d", i+1)
			}
			docs = append(docs, domain.NewDocument(title, speaker, date, link, sentence))
		}
	}
	return docs, nil
}

func LoadSpeechesFile(path string, opts SpeechOptions) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSpeeches(f, opts)
}

func parseSpeechDate(raw string, fallback time.Time) time.Time {
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}
