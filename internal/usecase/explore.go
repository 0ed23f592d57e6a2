package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/adapter/memstore"
	"corpus/internal/adapter/retriever"
	"corpus/internal/domain"
)

var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrUnknownPeriod  = errors.New("unknown period")
)

// maxRegexpRepeat is the largest repetition count accepted by regexp.
const maxRegexpRepeat = 1000

// Period is the bucket size of a temporal trend.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day":
		return PeriodDay, nil
	case "", "m", "month":
		return PeriodMonth, nil
	case "y", "year":
		return PeriodYear, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Start truncates t to the beginning of its period, in UTC.
func (p Period) Start(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Explorer answers keyword, concordance and frequency questions about a
// document store. Every call reads the current store content.
type Explorer struct {
	docs *memstore.DocumentStore
}

func NewExplorer(docs *memstore.DocumentStore) *Explorer {
	return &Explorer{docs: docs}
}

// Grep returns the passages of the corpus text containing keyword as a whole
// word, with up to context characters on each side. Matching ignores case.
func (e *Explorer) Grep(keyword string, context int) []string {
	if keyword == "" {
		return []string{}
	}
	context = clampContext(context)
	pattern := regexp.MustCompile(fmt.Sprintf(`(?i).{0,%d}\b%s\b.{0,%d}`, context, regexp.QuoteMeta(keyword), context))
	passages := pattern.FindAllString(e.docs.AllText(), -1)
	if passages == nil {
		return []string{}
	}
	return passages
}

// Concordance lists every match of the regular expression pattern with its
// left and right context, context characters wide. Matching ignores case.
func (e *Explorer) Concordance(pattern string, context int) ([]domain.ConcordanceLine, error) {
	if pattern == "" {
		return []domain.ConcordanceLine{}, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if context < 0 {
		context = 0
	}

	text := e.docs.AllText()
	lines := []domain.ConcordanceLine{}
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		lines = append(lines, domain.ConcordanceLine{
			Left:  text[runesBefore(text, start, context):start],
			Match: text[start:end],
			Right: text[end:runesAfter(text, end, context)],
		})
	}
	return lines, nil
}

// runesBefore returns the byte offset n runes before pos.
func runesBefore(text string, pos, n int) int {
	for ; n > 0 && pos > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(text[:pos])
		pos -= size
	}
	return pos
}

// runesAfter returns the byte offset n runes after pos.
func runesAfter(text string, pos, n int) int {
	for ; n > 0 && pos < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos
}

func clampContext(context int) int {
	if context < 0 {
		return 0
	}
	if context > maxRegexpRepeat {
		return maxRegexpRepeat
	}
	return context
}

// Stats counts every normalized word of the corpus and returns the top
// entries by frequency. top <= 0 keeps every word.
func (e *Explorer) Stats(top int) domain.CorpusStats {
	docs := e.docs.Documents()
	vocab, _ := retriever.BuildTermIndex(docs, analyzer.NewTokenizer(false))
	terms := vocab.TermStats()
	if top > 0 && top < len(terms) {
		terms = terms[:top]
	}
	return domain.CorpusStats{
		Documents:      len(docs),
		VocabularySize: vocab.Len(),
		Terms:          terms,
	}
}

// CompareKinds contrasts the vocabulary of two document kinds by relative
// term frequency. Rows are ordered by RelA-RelB descending, then by word.
// topN <= 0 keeps every row.
func (e *Explorer) CompareKinds(a, b domain.Kind, topN int) []domain.KindComparison {
	countsA, countsB := map[string]int{}, map[string]int{}
	totalA, totalB := 0, 0

	for _, doc := range e.docs.Documents() {
		tokens := analyzer.Normalize(doc.Text)
		if len(tokens) == 0 {
			continue
		}
		switch doc.Kind() {
		case a:
			for _, t := range tokens {
				countsA[t]++
			}
			totalA += len(tokens)
		case b:
			for _, t := range tokens {
				countsB[t]++
			}
			totalB += len(tokens)
		}
	}

	words := make(map[string]struct{}, len(countsA)+len(countsB))
	for w := range countsA {
		words[w] = struct{}{}
	}
	for w := range countsB {
		words[w] = struct{}{}
	}

	rows := make([]domain.KindComparison, 0, len(words))
	for w := range words {
		row := domain.KindComparison{Word: w, TFA: countsA[w], TFB: countsB[w]}
		if totalA > 0 {
			row.RelA = float64(row.TFA) / float64(totalA)
		}
		if totalB > 0 {
			row.RelB = float64(row.TFB) / float64(totalB)
		}
		row.Diff = row.RelA - row.RelB
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Diff != rows[j].Diff {
			return rows[i].Diff > rows[j].Diff
		}
		return rows[i].Word < rows[j].Word
	})
	if topN > 0 && topN < len(rows) {
		rows = rows[:topN]
	}
	return rows
}

// TemporalTrend buckets documents by period and reports how often term
// occurs relative to the number of tokens in each bucket.
func (e *Explorer) TemporalTrend(term string, period Period) []domain.TrendPoint {
	term = analyzer.Clean(term)
	buckets := make(map[time.Time]*domain.TrendPoint)

	for _, doc := range e.docs.Documents() {
		tokens := analyzer.Normalize(doc.Text)
		if len(tokens) == 0 {
			continue
		}
		start := period.Start(doc.Date)
		point, ok := buckets[start]
		if !ok {
			point = &domain.TrendPoint{Period: start}
			buckets[start] = point
		}
		for _, t := range tokens {
			if t == term {
				point.Hits++
			}
		}
		point.Total += len(tokens)
	}

	points := make([]domain.TrendPoint, 0, len(buckets))
	for _, p := range buckets {
		p.RelFreq = float64(p.Hits) / float64(p.Total)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Period.Before(points[j].Period)
	})
	return points
}
