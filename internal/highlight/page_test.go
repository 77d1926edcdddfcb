package highlight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/vocabmaster/internal/settings"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	words []string
	pages []models.PageContext
	fail  error
}

func (s *recordingSink) Highlight(_ context.Context, text string, page models.PageContext) (models.WordRecord, error) {
	if s.fail != nil {
		return models.WordRecord{}, s.fail
	}
	s.words = append(s.words, text)
	s.pages = append(s.pages, page)
	return models.WordRecord{Word: text, OccurrenceCount: len(s.words)}, nil
}

func TestToggle(t *testing.T) {
	p := NewPage("https://example.com", "Example", "#FFEB3B")
	assert.False(t, p.Mode())
	assert.True(t, p.Toggle())
	assert.False(t, p.Toggle())
}

func TestSelectIgnoresInvalidText(t *testing.T) {
	p := NewPage("https://example.com", "Example", "#FFEB3B")

	assert.True(t, p.Select("  Alligator ", nil))
	assert.False(t, p.Select("   ", nil))
	assert.False(t, p.Select(strings.Repeat("x", 120), nil))

	word, ok := p.Pending()
	require.True(t, ok)
	assert.Equal(t, "alligator", word)
}

func TestCommit(t *testing.T) {
	p := NewPage("https://example.com/a", "Example A", "#FFEB3B")
	sink := &recordingSink{}
	ctx := context.Background()

	_, ok, err := p.Commit(ctx, sink)
	require.NoError(t, err)
	assert.False(t, ok, "nothing selected")

	loc := &models.Location{DOMPath: "p:0/#text:0", StartOffset: 3, EndOffset: 12}
	p.Select("Alligator", loc)
	p.SetColor("#00FF00")
	rec, ok, err := p.Commit(ctx, sink)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alligator", rec.Word)

	require.Len(t, sink.pages, 1)
	assert.Equal(t, "#00FF00", sink.pages[0].Color)
	assert.Equal(t, "Example A", sink.pages[0].Title)
	assert.Equal(t, loc, sink.pages[0].Location)

	_, pending := p.Pending()
	assert.False(t, pending)
}

func TestCommitFailureKeepsSelection(t *testing.T) {
	p := NewPage("https://example.com/a", "", "#FFEB3B")
	p.Select("bison", nil)

	_, _, err := p.Commit(context.Background(), &recordingSink{fail: errors.New("timeout")})
	require.Error(t, err)

	word, ok := p.Pending()
	require.True(t, ok)
	assert.Equal(t, "bison", word)
}

func TestMatches(t *testing.T) {
	s := settings.Defaults()
	assert.True(t, Matches("alt", "h", s))
	assert.True(t, Matches("ALT", "H", s))
	assert.False(t, Matches("ctrl", "h", s))
	assert.False(t, Matches("alt", "j", s))
}
