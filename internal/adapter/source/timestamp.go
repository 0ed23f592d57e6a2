package source

import (
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseTimestamp accepts the date representations found in the datasets:
// RFC 3339, ISO date-time without zone (a trailing Z is ignored), a
// YYYY-MM-DD prefix, unix seconds and the long and short English month forms.
// Anything else returns fallback. Zone-less values are read as UTC.
func ParseTimestamp(raw string, fallback time.Time) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if trimmed := strings.TrimSuffix(s, "Z"); trimmed != s {
		if t, err := time.Parse("2006-01-02T15:04:05.999999999", trimmed); err == nil {
			return t
		}
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "-eE") {
		whole := int64(secs)
		nanos := int64((secs - float64(whole)) * 1e9)
		return time.Unix(whole, nanos).UTC()
	}

	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t
		}
	}
	return fallback
}
