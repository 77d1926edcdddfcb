// Package coordinator owns every mutation of the vocabulary state.
//
// Callers post requests that a single goroutine (Run) executes in order, and
// wait for exactly one reply. A caller never hangs: when the loop is not
// running or does not answer in time the call fails with ErrChannelFailed.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/internal/settings"
	"github.com/example/vocabmaster/internal/sheets"
	"github.com/example/vocabmaster/internal/spaced_repetition"
	"github.com/example/vocabmaster/internal/stats"
	"github.com/example/vocabmaster/internal/store"
	"github.com/example/vocabmaster/pkg/models"
)

// DefaultCallTimeout bounds a request when Deps.CallTimeout is zero
const DefaultCallTimeout = 10 * time.Second

// ErrChannelFailed is returned when a request got no reply
var ErrChannelFailed = errors.New("coordinator channel failed")

// SheetLogger queues spreadsheet activity rows
type SheetLogger interface {
	Enqueue(e sheets.Entry) (string, error)
}

// Deps are the collaborators of a Coordinator. Sheets may be nil.
type Deps struct {
	Storage     store.Storage
	Store       *store.Store
	Stats       *stats.Tracker
	Settings    *settings.Repository
	Selector    *spaced_repetition.Selector
	Sheets      SheetLogger
	Clock       func() time.Time
	CallTimeout time.Duration
	Logger      *slog.Logger
}

type request struct {
	ctx context.Context
	run func(ctx context.Context)
}

// Coordinator serializes access to the store, statistics and settings
type Coordinator struct {
	deps     Deps
	requests chan request
	log      *slog.Logger
}

// New creates a coordinator; call Run to start serving requests
func New(deps Deps) *Coordinator {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = DefaultCallTimeout
	}
	if deps.Selector == nil {
		deps.Selector = spaced_repetition.NewSelector(nil)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		deps:     deps,
		requests: make(chan request),
		log:      log,
	}
}

// Run executes requests until ctx is done
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Debug("coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("coordinator stopped")
			return ctx.Err()
		case req := <-c.requests:
			if req.ctx.Err() != nil {
				continue
			}
			req.run(req.ctx)
		}
	}
}

func call[T any](c *Coordinator, ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, c.deps.CallTimeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	reply := make(chan result, 1)
	req := request{ctx: ctx, run: func(ctx context.Context) {
		v, err := fn(ctx)
		reply <- result{value: v, err: err}
	}}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %s not accepted: %v", ErrChannelFailed, op, ctx.Err())
	}

	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %s got no reply: %v", ErrChannelFailed, op, ctx.Err())
	}
}

// Bootstrap seeds missing state with defaults and loads the word list
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	_, err := call(c, ctx, "bootstrap", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.bootstrap(ctx)
	})
	return err
}

func (c *Coordinator) bootstrap(ctx context.Context) error {
	existing, err := c.deps.Storage.Get(ctx, store.WordsKey, stats.StatsKey, settings.SettingsKey)
	if err != nil {
		return fmt.Errorf("failed to read stored state: %w", err)
	}

	seed := map[string][]byte{}
	if _, ok := existing[store.WordsKey]; !ok {
		seed[store.WordsKey] = []byte("[]")
	}
	if _, ok := existing[stats.StatsKey]; !ok {
		data, _ := json.Marshal(models.ReviewStats{})
		seed[stats.StatsKey] = data
	}
	if _, ok := existing[settings.SettingsKey]; !ok {
		data, _ := json.Marshal(settings.Defaults())
		seed[settings.SettingsKey] = data
	}
	if len(seed) > 0 {
		if err := c.deps.Storage.Set(ctx, seed); err != nil {
			return fmt.Errorf("failed to seed defaults: %w", err)
		}
		c.log.Info("seeded default state", "keys", len(seed))
	}
	return c.deps.Store.Load(ctx)
}

// Highlight records a highlight of text on page and queues the sheet row
func (c *Coordinator) Highlight(ctx context.Context, text string, page models.PageContext) (models.WordRecord, error) {
	return call(c, ctx, "highlight", func(ctx context.Context) (models.WordRecord, error) {
		rec, err := c.deps.Store.Upsert(ctx, text, page)
		if err != nil {
			return models.WordRecord{}, err
		}
		c.log.Info("word highlighted", "word", rec.Word, "occurrences", rec.OccurrenceCount, "url", page.URL)
		c.logToSheet(ctx, sheets.ActionAdd, rec.Word, page.URL, map[string]any{
			"title":           page.Title,
			"color":           page.Color,
			"occurrenceCount": rec.OccurrenceCount,
		})
		return rec, nil
	})
}

// DeleteWord removes word; false means it was not stored
func (c *Coordinator) DeleteWord(ctx context.Context, word string) (bool, error) {
	return call(c, ctx, "delete word", func(ctx context.Context) (bool, error) {
		removed, err := c.deps.Store.Delete(ctx, word)
		if err != nil || !removed {
			return removed, err
		}
		normalized, _ := store.Normalize(word)
		c.log.Info("word deleted", "word", normalized)
		c.logToSheet(ctx, sheets.ActionDelete, normalized, "", nil)
		return true, nil
	})
}

// DeleteResult counts the words removed from and left after a page purge
type DeleteResult struct {
	Deleted   int
	Remaining int
}

// DeleteAllFor removes every word first seen on url
func (c *Coordinator) DeleteAllFor(ctx context.Context, url string) (DeleteResult, error) {
	return call(c, ctx, "delete all for page", func(ctx context.Context) (DeleteResult, error) {
		deleted, remaining, err := c.deps.Store.DeleteAllFor(ctx, url)
		if err != nil {
			return DeleteResult{}, err
		}
		res := DeleteResult{Deleted: deleted, Remaining: remaining}
		if deleted > 0 {
			c.log.Info("page words deleted", "url", url, "deleted", deleted, "remaining", remaining)
			c.logToSheet(ctx, sheets.ActionDeleteAll, "", url, map[string]any{"deleted": deleted})
		}
		return res, nil
	})
}

// DeleteAll removes every word
func (c *Coordinator) DeleteAll(ctx context.Context) (int, error) {
	return call(c, ctx, "delete all", func(ctx context.Context) (int, error) {
		n, err := c.deps.Store.DeleteAll(ctx)
		if err == nil {
			c.log.Info("all words deleted", "deleted", n)
		}
		return n, err
	})
}

// ListWords returns every record in insertion order
func (c *Coordinator) ListWords(ctx context.Context) ([]models.WordRecord, error) {
	return call(c, ctx, "list words", func(ctx context.Context) ([]models.WordRecord, error) {
		return c.deps.Store.List(ctx)
	})
}

// UpdateMeaning annotates word
func (c *Coordinator) UpdateMeaning(ctx context.Context, word, meaning string) (models.WordRecord, error) {
	return call(c, ctx, "update meaning", func(ctx context.Context) (models.WordRecord, error) {
		return c.deps.Store.UpdateMeaning(ctx, word, meaning)
	})
}

// ReviewBatch picks count words for review, due words first.
// A count of zero uses the configured batch size; any other count must lie within the batch size bounds.
func (c *Coordinator) ReviewBatch(ctx context.Context, count int) ([]models.WordRecord, error) {
	if count != 0 && (count < settings.MinBatchSize || count > settings.MaxBatchSize) {
		return nil, apperrors.Validation("count", "must be between %d and %d, got %d",
			settings.MinBatchSize, settings.MaxBatchSize, count)
	}
	return call(c, ctx, "review batch", func(ctx context.Context) ([]models.WordRecord, error) {
		if count == 0 {
			s, _, err := c.deps.Settings.Load(ctx)
			if err != nil {
				return nil, err
			}
			count = s.ReviewBatchSize
		}
		words, err := c.deps.Store.List(ctx)
		if err != nil {
			return nil, err
		}
		return c.deps.Selector.SelectBatch(words, count, c.deps.Clock())
	})
}

// GradeWord persists the answer for record and counts the review.
// Only the record with the same ID is graded; without an ID the first record for its word is.
// A failed statistics write is logged; the graded review state stays.
func (c *Coordinator) GradeWord(ctx context.Context, record models.WordRecord, knewIt bool) (models.ReviewState, error) {
	return call(c, ctx, "grade word", func(ctx context.Context) (models.ReviewState, error) {
		now := c.deps.Clock()
		rec, err := c.deps.Store.ApplyReview(ctx, record, knewIt, now)
		if err != nil {
			return models.ReviewState{}, err
		}
		if _, err := c.deps.Stats.RecordReview(ctx, now); err != nil {
			c.log.Warn("failed to record review statistics", "word", rec.Word, "error", err)
		}
		c.log.Debug("word graded", "word", rec.Word, "knew_it", knewIt, "interval_days", rec.ReviewState.IntervalDays)
		return *rec.ReviewState, nil
	})
}

// Stats returns the review counters as of now
func (c *Coordinator) Stats(ctx context.Context) (models.ReviewStats, error) {
	return call(c, ctx, "stats", func(ctx context.Context) (models.ReviewStats, error) {
		return c.deps.Stats.Current(ctx, c.deps.Clock())
	})
}

// Settings returns the stored settings
func (c *Coordinator) Settings(ctx context.Context) (models.Settings, error) {
	return call(c, ctx, "settings", func(ctx context.Context) (models.Settings, error) {
		s, _, err := c.deps.Settings.Load(ctx)
		return s, err
	})
}

// UpdateSettings validates and stores s
func (c *Coordinator) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	return call(c, ctx, "update settings", func(ctx context.Context) (models.Settings, error) {
		saved, err := c.deps.Settings.Save(ctx, s)
		if err == nil {
			c.log.Info("settings updated")
		}
		return saved, err
	})
}

// DueCount counts the words due now
func (c *Coordinator) DueCount(ctx context.Context) (int, error) {
	return call(c, ctx, "due count", func(ctx context.Context) (int, error) {
		words, err := c.deps.Store.List(ctx)
		if err != nil {
			return 0, err
		}
		return spaced_repetition.DueCount(words, c.deps.Clock()), nil
	})
}

// logToSheet queues a row when a sheet is configured. Failures never touch local state.
func (c *Coordinator) logToSheet(ctx context.Context, action sheets.Action, word, url string, details map[string]any) {
	if c.deps.Sheets == nil {
		return
	}
	s, _, err := c.deps.Settings.Load(ctx)
	if err != nil {
		c.log.Warn("skipping sheet logging, settings unavailable", "error", err)
		return
	}
	if s.SheetURL == "" {
		return
	}
	entry := sheets.Entry{
		SheetURL:  s.SheetURL,
		SheetName: s.SheetName,
		Action:    action,
		Word:      word,
		URL:       url,
		Timestamp: c.deps.Clock(),
		Details:   details,
	}
	if _, err := c.deps.Sheets.Enqueue(entry); err != nil {
		c.log.Warn("sheet logging not queued", "action", action, "word", word, "error", err)
	}
}
