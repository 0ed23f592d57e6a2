package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"corpus/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY,
	kind         TEXT NOT NULL,
	title        TEXT NOT NULL,
	author       TEXT NOT NULL,
	published_at TEXT NOT NULL,
	url          TEXT NOT NULL,
	body         TEXT NOT NULL,
	comments     INTEGER NOT NULL DEFAULT 0,
	coauthors    TEXT NOT NULL DEFAULT '[]'
)`

// SQLStore keeps a corpus in a documents table of a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func NewSQLiteStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newSQLStore(db, FormatSQLite)
}

func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return newSQLStore(db, FormatPostgres)
}

func newSQLStore(db *sql.DB, dialect string) (*SQLStore, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != FormatPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Save replaces the table content with docs.
func (s *SQLStore) Save(docs []domain.Document) error {
	return s.inTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM documents"); err != nil {
			return fmt.Errorf("failed to clear documents: %w", err)
		}

		stmt, err := tx.Prepare(s.rebind(`
			INSERT INTO documents (id, kind, title, author, published_at, url, body, comments, coauthors)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, r := range toRecords(docs) {
			coauthors := []byte("[]")
			if len(r.CoAuthors) > 0 {
				if coauthors, err = json.Marshal(r.CoAuthors); err != nil {
					return err
				}
			}
			_, err = stmt.Exec(r.ID, string(r.Kind), r.Title, r.Author,
				r.Date.Format(time.RFC3339Nano), r.URL, r.Text, r.Comments, string(coauthors))
			if err != nil {
				return fmt.Errorf("failed to insert document %d: %w", r.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Load() ([]domain.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, title, author, published_at, url, body, comments, coauthors
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []record
	for rows.Next() {
		var (
			r         record
			kind      string
			published string
			coauthors string
		)
		if err := rows.Scan(&r.ID, &kind, &r.Title, &r.Author, &published, &r.URL, &r.Text, &r.Comments, &coauthors); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		r.Kind = domain.Kind(kind)
		if r.Date, err = time.Parse(time.RFC3339Nano, published); err != nil {
			return nil, fmt.Errorf("document %d: bad date %q: %w", r.ID, published, err)
		}
		if err := json.Unmarshal([]byte(coauthors), &r.CoAuthors); err != nil {
			return nil, fmt.Errorf("document %d: bad co-authors: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fromRecords(records)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
