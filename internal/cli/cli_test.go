package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"corpus/config"
	"corpus/internal/adapter/store"
	"corpus/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 7*time.Minute, "2h7m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	if got, err := resolveFormat("out.csv", ""); err != nil || got != store.FormatCSV {
		t.Errorf("expected csv from extension, got %s, %v", got, err)
	}
	if got, _ := resolveFormat("out.csv", "json"); got != "json" {
		t.Errorf("explicit format should win, got %s", got)
	}
	if _, err := resolveFormat("out.xml", ""); !errors.Is(err, store.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	root := t.TempDir()
	rootDir = root
	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err != nil {
		t.Fatal(err)
	}
	cfg.Storage.Format = store.FormatJSON

	sess, err := openSession()
	if err != nil {
		t.Fatal(err)
	}
	sess.docs.Add(domain.NewForumPost("t", "a", time.Now().UTC(), "", "some text", 2))
	if err := sess.save(); err != nil {
		t.Fatal(err)
	}
	sess.Close()

	if _, err := os.Stat(filepath.Join(root, config.DataDir, "corpus.json")); err != nil {
		t.Fatalf("expected corpus file: %v", err)
	}

	again, err := openSession()
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	if again.docs.Len() != 1 {
		t.Fatalf("expected 1 document, got %d", again.docs.Len())
	}
	results := again.engine(nil).Rank("text", 1, true)
	if len(results) != 1 || results[0].DocID != 0 {
		t.Errorf("unexpected ranking %+v", results)
	}
}

func TestSessionEngine_StopwordsOptIn(t *testing.T) {
	rootDir = t.TempDir()
	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err != nil {
		t.Fatal(err)
	}
	cfg.Storage.Format = store.FormatJSON

	sess, err := openSession()
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()
	sess.docs.Add(domain.NewDocument("t", "a", time.Now().UTC(), "", "the cat and the dog"))

	vocab := sess.engine(nil).Index().Vocabulary()
	if vocab.Len() != 4 {
		t.Errorf("default config must index every distinct token, got %v", vocab.Terms())
	}

	sess.cfg.Index.Stopwords = true
	vocab = sess.engine(nil).Index().Vocabulary()
	if _, ok := vocab.Lookup("the"); ok {
		t.Errorf("stopwords enabled but indexed: %v", vocab.Terms())
	}
}
