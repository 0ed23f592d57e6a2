package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"corpus/internal/domain"
	"corpus/internal/port"
)

var ErrUnsupportedFormat = errors.New("unsupported storage format")

const (
	FormatTSV      = "tsv"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatBolt     = "bolt"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// Formats lists every format accepted by Open.
func Formats() []string {
	return []string{FormatTSV, FormatCSV, FormatJSON, FormatBolt, FormatSQLite, FormatPostgres}
}

// Open returns the store for format at location. Location is a file path for
// every format except postgres, where it is a connection string.
func Open(format, location string) (port.CorpusStore, error) {
	switch strings.ToLower(format) {
	case FormatTSV:
		return NewTSVStore(location), nil
	case FormatCSV:
		return NewCSVStore(location), nil
	case FormatJSON:
		return NewJSONStore(location), nil
	case FormatBolt:
		return NewBoltStore(location)
	case FormatSQLite:
		return NewSQLiteStore(location)
	case FormatPostgres:
		return NewPostgresStore(location)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FormatFromPath guesses the format of a file from its extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".db", ".bolt":
		return FormatBolt, nil
	case ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %s", ErrUnsupportedFormat, path)
	}
}

func sortByID(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
