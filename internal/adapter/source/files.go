package source

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/domain"
	"corpus/internal/port"
)

const maxTitleRunes = 80

// FileLoader turns the files selected by a walker into documents.
type FileLoader struct {
	walker         port.FileWalker
	reader         port.FileReader
	workers        int
	defaultAuthor  string
	splitSentences bool
	onFile         func(port.FileInfo)
	log            *logrus.Entry
}

type LoaderOption func(*FileLoader)

func WithWorkers(n int) LoaderOption {
	return func(l *FileLoader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithDefaultAuthor(name string) LoaderOption {
	return func(l *FileLoader) {
		if name != "" {
			l.defaultAuthor = name
		}
	}
}

// WithSentenceSplitting makes every sentence of a file its own document.
func WithSentenceSplitting(enabled bool) LoaderOption {
	return func(l *FileLoader) { l.splitSentences = enabled }
}

// WithProgress registers a callback invoked once per file read.
func WithProgress(fn func(port.FileInfo)) LoaderOption {
	return func(l *FileLoader) { l.onFile = fn }
}

func WithLogger(log *logrus.Entry) LoaderOption {
	return func(l *FileLoader) { l.log = log }
}

func NewFileLoader(walker port.FileWalker, reader port.FileReader, opts ...LoaderOption) *FileLoader {
	l := &FileLoader{
		walker:        walker,
		reader:        reader,
		workers:       4,
		defaultAuthor: "unknown",
		log:           logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every file below root concurrently and returns the resulting
// documents in walk order.
func (l *FileLoader) Load(ctx context.Context, root string) ([]domain.Document, error) {
	files, err := l.walker.Walk(root)
	if err != nil {
		return nil, err
	}
	l.log.WithField("files", len(files)).Debug("files selected for ingestion")

	perFile := make([][]domain.Document, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := l.loadFile(file)
			if err != nil {
				return fmt.Errorf("loading %s: %w", file.RelPath, err)
			}
			perFile[i] = docs
			if l.onFile != nil {
				l.onFile(file)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, batch := range perFile {
		docs = append(docs, batch...)
	}
	return docs, nil
}

func (l *FileLoader) loadFile(file port.FileInfo) ([]domain.Document, error) {
	content, err := l.reader.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}

	title, author, text := "", l.defaultAuthor, content
	switch strings.ToLower(path.Ext(file.RelPath)) {
	case ".html", ".htm":
		page, err := parseHTML(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		title, text = page.Title, page.Text
		if page.Author != "" {
			author = page.Author
		}
	}
	if title == "" {
		title = firstLine(text)
	}
	if title == "" {
		title = file.RelPath
	}

	url := "file://" + file.Path
	if !l.splitSentences {
		return []domain.Document{domain.NewDocument(title, author, file.ModTime.UTC(), url, text)}, nil
	}

	sentences := analyzer.SplitSentences(text)
	docs := make([]domain.Document, 0, len(sentences))
	for _, sentence := range sentences {
		docs = append(docs, domain.NewDocument(title, author, file.ModTime.UTC(), url, sentence))
	}
	return docs, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxTitleRunes {
			line = string([]rune(line)[:maxTitleRunes])
		}
		return line
	}
	return ""
}
