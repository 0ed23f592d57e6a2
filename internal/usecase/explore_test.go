package usecase

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"corpus/internal/adapter/memstore"
	"corpus/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func storeOf(docs ...domain.Document) *memstore.DocumentStore {
	s := memstore.NewDocumentStore("test")
	for _, d := range docs {
		s.Add(d)
	}
	return s
}

func textStore(texts ...string) *memstore.DocumentStore {
	s := memstore.NewDocumentStore("test")
	for i, text := range texts {
		s.Add(domain.NewDocument("doc", "author", day(2024, 1, i+1), "", text))
	}
	return s
}

func TestGrep(t *testing.T) {
	e := NewExplorer(textStore("The cat sat on the mat.", "A dog chased the cat!"))

	passages := e.Grep("cat", 5)
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d: %q", len(passages), passages)
	}
	if passages[0] != "The cat sat " {
		t.Errorf("unexpected first passage %q", passages[0])
	}
	if passages[1] != " the cat!" {
		t.Errorf("unexpected second passage %q", passages[1])
	}

	if got := e.Grep("CAT", 5); len(got) != 2 {
		t.Errorf("expected case-insensitive matches, got %q", got)
	}
	if got := e.Grep("ca", 5); len(got) != 0 {
		t.Errorf("expected whole-word matching, got %q", got)
	}
	if got := e.Grep("", 5); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for empty keyword, got %#v", got)
	}
}

func TestGrep_QuotesKeyword(t *testing.T) {
	e := NewExplorer(textStore("price is 3.50 today", "price is 3550 today"))

	passages := e.Grep("3.50", 3)
	if len(passages) != 1 || !strings.Contains(passages[0], "3.50") {
		t.Errorf("expected the literal keyword only, got %q", passages)
	}
}

func TestConcordance(t *testing.T) {
	e := NewExplorer(textStore("The cat sat on the mat.", "A dog chased the CAT!"))

	lines, err := e.Concordance("c.t", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.ConcordanceLine{
		{Left: "The ", Match: "cat", Right: " sat"},
		{Left: "the ", Match: "CAT", Right: "!"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], lines[i])
		}
	}
}

func TestConcordance_RuneContext(t *testing.T) {
	e := NewExplorer(textStore("déjà été chat été déjà"))

	lines, err := e.Concordance("chat", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Left != "été " || lines[0].Right != " été" {
		t.Errorf("context should count characters, got %+v", lines[0])
	}
}

func TestConcordance_InvalidPattern(t *testing.T) {
	e := NewExplorer(textStore("anything"))

	_, err := e.Concordance("(", 10)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestStats(t *testing.T) {
	e := NewExplorer(textStore("a a b", "a c", "42 !!"))

	stats := e.Stats(0)
	if stats.Documents != 3 {
		t.Errorf("expected 3 documents, got %d", stats.Documents)
	}
	if stats.VocabularySize != 3 {
		t.Errorf("expected vocabulary of 3, got %d", stats.VocabularySize)
	}
	want := []domain.TermStat{{Word: "a", TF: 3, DF: 2}, {Word: "b", TF: 1, DF: 1}, {Word: "c", TF: 1, DF: 1}}
	if len(stats.Terms) != len(want) {
		t.Fatalf("expected %d terms, got %+v", len(want), stats.Terms)
	}
	for i := range want {
		if stats.Terms[i] != want[i] {
			t.Errorf("term %d: expected %+v, got %+v", i, want[i], stats.Terms[i])
		}
	}

	if top := e.Stats(1); len(top.Terms) != 1 || top.Terms[0].Word != "a" {
		t.Errorf("expected only the most frequent term, got %+v", top.Terms)
	}
}

func TestStats_KeepsStopwords(t *testing.T) {
	e := NewExplorer(textStore("the the the end"))

	stats := e.Stats(1)
	if len(stats.Terms) != 1 || stats.Terms[0].Word != "the" {
		t.Errorf("stats should count every word, got %+v", stats.Terms)
	}
}

func TestCompareKinds(t *testing.T) {
	e := NewExplorer(storeOf(
		domain.NewForumPost("p", "u", day(2024, 1, 1), "", "alpha alpha beta", 3),
		domain.NewPreprint("q", "v", day(2024, 1, 2), "", "beta gamma", []string{"w"}),
		domain.NewDocument("r", "x", day(2024, 1, 3), "", "alpha alpha alpha alpha"),
	))

	rows := e.CompareKinds(domain.KindForumPost, domain.KindPreprint, 0)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %+v", rows)
	}

	wantWords := []string{"alpha", "beta", "gamma"}
	for i, w := range wantWords {
		if rows[i].Word != w {
			t.Errorf("row %d: expected %s, got %s", i, w, rows[i].Word)
		}
	}
	if rows[0].TFA != 2 || rows[0].TFB != 0 {
		t.Errorf("generic documents must not be counted, got %+v", rows[0])
	}
	if math.Abs(rows[1].RelA-1.0/3) > 1e-9 || math.Abs(rows[1].RelB-0.5) > 1e-9 {
		t.Errorf("unexpected relative frequencies %+v", rows[1])
	}
	if math.Abs(rows[2].Diff+0.5) > 1e-9 {
		t.Errorf("expected diff -0.5, got %v", rows[2].Diff)
	}

	if top := e.CompareKinds(domain.KindForumPost, domain.KindPreprint, 2); len(top) != 2 {
		t.Errorf("expected 2 rows, got %d", len(top))
	}
}

func TestCompareKinds_MissingKind(t *testing.T) {
	e := NewExplorer(storeOf(domain.NewForumPost("p", "u", day(2024, 1, 1), "", "alpha", 0)))

	rows := e.CompareKinds(domain.KindForumPost, domain.KindPreprint, 0)
	if len(rows) != 1 || rows[0].RelB != 0 || rows[0].Diff != 1 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestTemporalTrend(t *testing.T) {
	e := NewExplorer(storeOf(
		domain.NewDocument("a", "x", day(2024, 3, 1), "", "peace"),
		domain.NewDocument("b", "x", day(2024, 1, 5), "", "war peace"),
		domain.NewDocument("c", "x", day(2024, 1, 20), "", "War, war!"),
		domain.NewDocument("d", "x", day(2024, 2, 10), "", "..."),
	))

	points := e.TemporalTrend("WAR", PeriodMonth)
	if len(points) != 2 {
		t.Fatalf("expected 2 periods, got %+v", points)
	}
	jan, mar := points[0], points[1]
	if !jan.Period.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected first period %v", jan.Period)
	}
	if jan.Hits != 3 || jan.Total != 4 || jan.RelFreq != 0.75 {
		t.Errorf("unexpected january point %+v", jan)
	}
	if mar.Hits != 0 || mar.Total != 1 || mar.RelFreq != 0 {
		t.Errorf("unexpected march point %+v", mar)
	}

	if years := e.TemporalTrend("war", PeriodYear); len(years) != 1 || years[0].Total != 5 {
		t.Errorf("expected one yearly bucket, got %+v", years)
	}
	if days := e.TemporalTrend("war", PeriodDay); len(days) != 3 {
		t.Errorf("expected 3 daily buckets, got %+v", days)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"D", PeriodDay},
		{"day", PeriodDay},
		{"M", PeriodMonth},
		{"", PeriodMonth},
		{"Year", PeriodYear},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParsePeriod("week"); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("expected ErrUnknownPeriod, got %v", err)
	}
}
