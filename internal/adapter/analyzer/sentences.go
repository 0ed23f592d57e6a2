package analyzer

import (
	"strings"
	"unicode/utf8"
)

// minSentenceRunes drops fragments such as a stray "A" left by abbreviations.
const minSentenceRunes = 2

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	var sentences []string
	emit := func(piece string) {
		piece = strings.TrimSpace(piece)
		if utf8.RuneCountInString(piece) >= minSentenceRunes {
			sentences = append(sentences, piece)
		}
	}

	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		emit(text[start : i+1])
		start = j
		i = j - 1
	}
	if start < len(text) {
		emit(text[start:])
	}
	return sentences
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}
