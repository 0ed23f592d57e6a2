package analyzer

import (
	"regexp"
	"strings"
)

var (
	digitRun   = regexp.MustCompile(`\d+`)
	nonLetter  = regexp.MustCompile(`[^a-z\s]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Clean lowercases text and reduces it to ASCII letters separated by single
// spaces. Digits and every other character become word separators.
func Clean(text string) string {
	t := strings.ToLower(text)
	t = strings.ReplaceAll(t, "\n", " ")
	t = digitRun.ReplaceAllString(t, " ")
	t = nonLetter.ReplaceAllString(t, " ")
	t = whitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Normalize returns the token sequence of text. Text without letters yields an
// empty slice.
func Normalize(text string) []string {
	cleaned := Clean(text)
	if cleaned == "" {
		return []string{}
	}
	return strings.Split(cleaned, " ")
}

// Tokenizer normalizes text and optionally drops English stopwords.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer(removeStopwords bool) *Tokenizer {
	t := &Tokenizer{}
	if removeStopwords {
		t.stopwords = defaultStopwords()
	}
	return t
}

// Tokenize splits text into normalized tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := Normalize(text)
	if len(t.stopwords) == 0 {
		return tokens
	}

	kept := tokens[:0]
	for _, token := range tokens {
		if _, isStop := t.stopwords[token]; isStop {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
