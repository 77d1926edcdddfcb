// Package highlight keeps the per-page highlighting context: whether
// highlight mode is on, the active colour and the pending selection.
package highlight

import (
	"context"
	"strings"
	"sync"

	"github.com/example/vocabmaster/internal/store"
	"github.com/example/vocabmaster/pkg/models"
)

// Sink receives committed highlights
type Sink interface {
	Highlight(ctx context.Context, text string, page models.PageContext) (models.WordRecord, error)
}

type selection struct {
	word     string
	location *models.Location
}

// Page is the highlighting state of one open page
type Page struct {
	mu      sync.Mutex
	url     string
	title   string
	mode    bool
	color   string
	pending *selection
}

// NewPage creates the context for a page, highlighting in color
func NewPage(url, title, color string) *Page {
	return &Page{url: url, title: title, color: color}
}

// Toggle flips highlight mode and returns the new value
func (p *Page) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = !p.mode
	return p.mode
}

func (p *Page) Mode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Page) SetColor(color string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.color = color
}

// Select remembers text as the pending selection.
// Text that does not normalize to a word is ignored and the previous selection kept.
func (p *Page) Select(text string, loc *models.Location) bool {
	word, err := store.Normalize(text)
	if err != nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := &selection{word: word}
	if loc != nil {
		l := *loc
		sel.location = &l
	}
	p.pending = sel
	return true
}

// Pending returns the selected word, if any
func (p *Page) Pending() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return "", false
	}
	return p.pending.word, true
}

// Commit sends the pending selection to sink and clears it.
// With nothing selected it returns false and does nothing.
func (p *Page) Commit(ctx context.Context, sink Sink) (models.WordRecord, bool, error) {
	p.mu.Lock()
	sel := p.pending
	pageCtx := models.PageContext{URL: p.url, Title: p.title, Color: p.color}
	p.mu.Unlock()

	if sel == nil {
		return models.WordRecord{}, false, nil
	}
	pageCtx.Location = sel.location

	rec, err := sink.Highlight(ctx, sel.word, pageCtx)
	if err != nil {
		return models.WordRecord{}, false, err
	}

	p.mu.Lock()
	if p.pending == sel {
		p.pending = nil
	}
	p.mu.Unlock()
	return rec, true, nil
}

// Matches reports whether the pressed modifier and key trigger the configured shortcut
func Matches(modifier, key string, s models.Settings) bool {
	return strings.EqualFold(modifier, s.ShortcutModifier) && strings.EqualFold(key, s.ShortcutKey)
}
