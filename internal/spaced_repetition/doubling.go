package spaced_repetition

import (
	"math/rand"
	"sync"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
)

const (
	// MinIntervalDays is the floor an interval resets to after a miss
	MinIntervalDays = 1
	// MaxIntervalDays caps interval growth
	MaxIntervalDays = 30
	// Day is the length of one interval unit
	Day = 24 * time.Hour
)

// IsDue reports whether a word should be reviewed at now.
// A word that was never reviewed is always due.
func IsDue(w models.WordRecord, now time.Time) bool {
	if w.ReviewState == nil {
		return true
	}
	return !now.Before(w.ReviewState.NextReviewAt)
}

// DueCount returns how many words are due at now
func DueCount(words []models.WordRecord, now time.Time) int {
	n := 0
	for _, w := range words {
		if IsDue(w, now) {
			n++
		}
	}
	return n
}

// Grade computes the review state after a grading.
// Knowing the word doubles the interval up to MaxIntervalDays;
// missing it resets the interval to MinIntervalDays.
func Grade(prev *models.ReviewState, knewIt bool, now time.Time) models.ReviewState {
	next := models.ReviewState{
		LastReviewedAt: now,
		ReviewCount:    1,
		KnewItLastTime: knewIt,
		IntervalDays:   MinIntervalDays,
	}

	base := MinIntervalDays
	if prev != nil {
		next.ReviewCount = prev.ReviewCount + 1
		base = clampInterval(prev.IntervalDays)
	}

	if knewIt {
		next.IntervalDays = base * 2
		if next.IntervalDays > MaxIntervalDays {
			next.IntervalDays = MaxIntervalDays
		}
	}

	next.NextReviewAt = now.Add(time.Duration(next.IntervalDays) * Day)
	return next
}

func clampInterval(days int) int {
	if days < MinIntervalDays {
		return MinIntervalDays
	}
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}

// Selector picks review batches. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector drawing from src; nil uses a time-seeded source
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(src)}
}

// SelectBatch returns up to desired words for a review session.
// Every due word that fits is taken before any word that is not due yet;
// within each group the choice is a uniform sample without replacement,
// and the returned batch is shuffled.
func (s *Selector) SelectBatch(words []models.WordRecord, desired int, now time.Time) ([]models.WordRecord, error) {
	if desired < 1 {
		return nil, apperrors.Validation("desiredCount", "must be at least 1, got %d", desired)
	}
	if len(words) == 0 {
		return []models.WordRecord{}, nil
	}

	var due, notDue []models.WordRecord
	for _, w := range words {
		if IsDue(w, now) {
			due = append(due, w)
		} else {
			notDue = append(notDue, w)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]models.WordRecord, 0, min(desired, len(words)))
	batch = append(batch, s.sample(due, desired)...)
	if remaining := desired - len(batch); remaining > 0 {
		batch = append(batch, s.sample(notDue, remaining)...)
	}

	s.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	return batch, nil
}

// sample draws up to n words without replacement using a partial Fisher-Yates shuffle
func (s *Selector) sample(words []models.WordRecord, n int) []models.WordRecord {
	pool := make([]models.WordRecord, len(words))
	copy(pool, words)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
