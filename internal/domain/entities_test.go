package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestDocumentKinds(t *testing.T) {
	generic := NewDocument("t", "a", day, "u", "x")
	forum := NewForumPost("t", "a", day, "u", "x", 3)
	preprint := NewPreprint("t", "a", day, "u", "x", []string{"b", "c"})

	assert.Equal(t, KindGeneric, generic.Kind())
	assert.Equal(t, KindForumPost, forum.Kind())
	assert.Equal(t, KindPreprint, preprint.Kind())
	assert.Equal(t, KindGeneric, Document{}.Kind())

	n, ok := forum.CommentCount()
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = generic.CommentCount()
	assert.False(t, ok)

	co, ok := preprint.CoAuthors()
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, co)
}

func TestSetCommentCount(t *testing.T) {
	doc := NewForumPost("t", "a", day, "u", "x", 0)

	require.NoError(t, doc.SetCommentCount(12))
	n, _ := doc.CommentCount()
	assert.Equal(t, 12, n)

	err := doc.SetCommentCount(-1)
	assert.True(t, errors.Is(err, ErrInvalidCommentCount))
	n, _ = doc.CommentCount()
	assert.Equal(t, 12, n, "rejected update must not change the value")

	generic := NewDocument("t", "a", day, "u", "x")
	assert.ErrorIs(t, generic.SetCommentCount(1), ErrVariantMismatch)
}

func TestSetCoAuthors(t *testing.T) {
	doc := NewPreprint("t", "a", day, "u", "x", nil)
	co, _ := doc.CoAuthors()
	assert.Empty(t, co)

	require.NoError(t, doc.SetCoAuthors([]string{" Ada ", "Grace"}))
	co, _ = doc.CoAuthors()
	assert.Equal(t, []string{"Ada", "Grace"}, co)

	assert.ErrorIs(t, doc.SetCoAuthors(nil), ErrInvalidCoAuthors)
	assert.ErrorIs(t, doc.SetCoAuthors([]string{"ok", "  "}), ErrInvalidCoAuthors)

	forum := NewForumPost("t", "a", day, "u", "x", 1)
	assert.ErrorIs(t, forum.SetCoAuthors([]string{"x"}), ErrVariantMismatch)
}

func TestCloneDoesNotShareCoAuthors(t *testing.T) {
	names := []string{"b"}
	doc := NewPreprint("t", "a", day, "u", "x", names)
	names[0] = "mutated"

	clone := doc.Clone()
	co, _ := clone.CoAuthors()
	co[0] = "also mutated"

	original, _ := doc.CoAuthors()
	assert.Equal(t, []string{"b"}, original)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", KindGeneric},
		{"Document", KindGeneric},
		{"Reddit", KindForumPost},
		{"forum-post", KindForumPost},
		{"ARXIV", KindPreprint},
		{"preprint", KindPreprint},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("newsletter")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDocumentString(t *testing.T) {
	assert.Equal(t, "[generic] Hello", NewDocument("Hello", "a", day, "", "").String())
	assert.Equal(t, "[forum-post] Hello (comments: 4)", NewForumPost("Hello", "a", day, "", "", 4).String())
	assert.Equal(t, "[preprint] Hello (co-authors: none)", NewPreprint("Hello", "a", day, "", "", nil).String())
	assert.Equal(t, "[preprint] Hello (co-authors: x, y)", NewPreprint("Hello", "a", day, "", "", []string{"x", "y"}).String())
}

func TestAuthorAverageLength(t *testing.T) {
	a := Author{Name: "a", Production: map[int]Document{}}
	assert.Equal(t, 0.0, a.AverageLength())

	a.Production[0] = NewDocument("t", "a", day, "", "abcd")
	a.Production[1] = NewDocument("t", "a", day, "", "éé")
	assert.Equal(t, 2, a.DocCount())
	assert.InDelta(t, 3.0, a.AverageLength(), 1e-9)
}
