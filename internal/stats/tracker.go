package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
)

// StatsKey is the storage key holding the review counters
const StatsKey = "reviewStats"

// Storage is the key-value persistence the tracker writes through
type Storage interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
}

// Tracker keeps daily and total review counters.
// Days roll over on the local calendar of loc, not after 24 hours.
type Tracker struct {
	mu      sync.Mutex
	storage Storage
	loc     *time.Location
}

// NewTracker creates a tracker; a nil loc means time.Local
func NewTracker(storage Storage, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{storage: storage, loc: loc}
}

func (t *Tracker) load(ctx context.Context) (models.ReviewStats, error) {
	values, err := t.storage.Get(ctx, StatsKey)
	if err != nil {
		return models.ReviewStats{}, apperrors.Storage("get review stats", err)
	}
	var stats models.ReviewStats
	if raw, ok := values[StatsKey]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &stats); err != nil {
			return models.ReviewStats{}, apperrors.Storage("decode review stats", err)
		}
	}
	return stats, nil
}

// RecordReview counts one graded review at now and persists the counters
func (t *Tracker) RecordReview(ctx context.Context, now time.Time) (models.ReviewStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.load(ctx)
	if err != nil {
		return models.ReviewStats{}, err
	}

	today := models.DateOf(now.In(t.loc))
	if stats.LastReviewDate == nil || !stats.LastReviewDate.Equal(today) {
		stats.TodayReviewed = 0
		stats.LastReviewDate = &today
	}
	stats.TodayReviewed++
	stats.TotalReviewed++

	data, err := json.Marshal(stats)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("failed to encode review stats: %w", err)
	}
	if err := t.storage.Set(ctx, map[string][]byte{StatsKey: data}); err != nil {
		return models.ReviewStats{}, apperrors.Storage("set review stats", err)
	}
	return stats, nil
}

// Current returns the stored counters as seen at now.
// TodayReviewed reads 0 when the last review happened on another day; nothing is persisted.
func (t *Tracker) Current(ctx context.Context, now time.Time) (models.ReviewStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.load(ctx)
	if err != nil {
		return models.ReviewStats{}, err
	}
	today := models.DateOf(now.In(t.loc))
	if stats.LastReviewDate == nil || !stats.LastReviewDate.Equal(today) {
		stats.TodayReviewed = 0
	}
	return stats, nil
}
