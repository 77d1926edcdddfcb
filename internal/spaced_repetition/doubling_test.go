package spaced_repetition

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newWord(word string) models.WordRecord {
	return models.WordRecord{Word: word, OccurrenceCount: 1, FirstSeenAt: t0, LastSeenAt: t0}
}

func reviewedWord(word string, next time.Time) models.WordRecord {
	w := newWord(word)
	w.ReviewState = &models.ReviewState{
		LastReviewedAt: next.Add(-Day),
		ReviewCount:    1,
		KnewItLastTime: true,
		IntervalDays:   1,
		NextReviewAt:   next,
	}
	return w
}

func TestGrade_FirstReviewKnew(t *testing.T) {
	got := Grade(nil, true, t0)

	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, 2, got.IntervalDays)
	assert.True(t, got.KnewItLastTime)
	assert.Equal(t, t0, got.LastReviewedAt)
	assert.Equal(t, t0.Add(2*Day), got.NextReviewAt)
}

func TestGrade_FirstReviewMissed(t *testing.T) {
	got := Grade(nil, false, t0)

	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, 1, got.IntervalDays)
	assert.False(t, got.KnewItLastTime)
	assert.Equal(t, t0.Add(Day), got.NextReviewAt)
}

func TestGrade_IntervalCap(t *testing.T) {
	state := &models.ReviewState{IntervalDays: 1}
	for n := 1; n <= 10; n++ {
		next := Grade(state, true, t0)
		want := 1 << n
		if want > MaxIntervalDays {
			want = MaxIntervalDays
		}
		require.Equal(t, want, next.IntervalDays, "after %d gradings", n)
		require.LessOrEqual(t, next.IntervalDays, MaxIntervalDays)
		state = &next
	}
}

func TestGrade_StaysAtCap(t *testing.T) {
	got := Grade(&models.ReviewState{IntervalDays: 30, ReviewCount: 9}, true, t0)
	assert.Equal(t, 30, got.IntervalDays)
	assert.Equal(t, 10, got.ReviewCount)
	assert.Equal(t, t0.Add(30*Day), got.NextReviewAt)
}

func TestGrade_ResetOnMiss(t *testing.T) {
	for interval := MinIntervalDays; interval <= MaxIntervalDays; interval++ {
		t.Run(fmt.Sprintf("interval_%d", interval), func(t *testing.T) {
			got := Grade(&models.ReviewState{IntervalDays: interval, ReviewCount: 3}, false, t0)
			assert.Equal(t, 1, got.IntervalDays)
			assert.Equal(t, t0.Add(Day), got.NextReviewAt)
			assert.Equal(t, 4, got.ReviewCount)
		})
	}
}

func TestGrade_OutOfRangePriorIsClamped(t *testing.T) {
	assert.Equal(t, 2, Grade(&models.ReviewState{IntervalDays: 0}, true, t0).IntervalDays)
	assert.Equal(t, 30, Grade(&models.ReviewState{IntervalDays: 90}, true, t0).IntervalDays)
}

func TestGrade_DoesNotMutatePrevious(t *testing.T) {
	prev := &models.ReviewState{IntervalDays: 4, ReviewCount: 2}
	Grade(prev, true, t0)
	assert.Equal(t, 4, prev.IntervalDays)
	assert.Equal(t, 2, prev.ReviewCount)
}

func TestIsDue(t *testing.T) {
	assert.True(t, IsDue(newWord("never"), t0))
	assert.True(t, IsDue(reviewedWord("exact", t0), t0))
	assert.True(t, IsDue(reviewedWord("past", t0.Add(-time.Hour)), t0))
	assert.False(t, IsDue(reviewedWord("future", t0.Add(time.Hour)), t0))
}

func TestDueCount(t *testing.T) {
	words := []models.WordRecord{
		newWord("a"),
		reviewedWord("b", t0.Add(-time.Minute)),
		reviewedWord("c", t0.Add(time.Minute)),
	}
	assert.Equal(t, 2, DueCount(words, t0))
}

func TestSelectBatch_RejectsNonPositiveCount(t *testing.T) {
	s := NewSelector(rand.NewSource(1))
	_, err := s.SelectBatch([]models.WordRecord{newWord("a")}, 0, t0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSelectBatch_Empty(t *testing.T) {
	s := NewSelector(rand.NewSource(1))
	got, err := s.SelectBatch(nil, 5, t0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectBatch_Partition(t *testing.T) {
	s := NewSelector(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		n := rng.Intn(15)
		desired := 1 + rng.Intn(10)

		var words []models.WordRecord
		dueSet := map[string]bool{}
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("w%d", i)
			switch rng.Intn(3) {
			case 0:
				words = append(words, newWord(name))
				dueSet[name] = true
			case 1:
				words = append(words, reviewedWord(name, t0.Add(-time.Hour)))
				dueSet[name] = true
			default:
				words = append(words, reviewedWord(name, t0.Add(time.Hour)))
			}
		}

		got, err := s.SelectBatch(words, desired, t0)
		require.NoError(t, err)
		require.Len(t, got, min(desired, n))

		seen := map[string]bool{}
		dueTaken := 0
		for _, w := range got {
			require.False(t, seen[w.Word], "duplicate %s", w.Word)
			seen[w.Word] = true
			if dueSet[w.Word] {
				dueTaken++
			}
		}
		require.Equal(t, min(len(dueSet), len(got)), dueTaken,
			"every due word that fits must be chosen before not-due words")
	}
}

func TestSelectBatch_SampleOfDue(t *testing.T) {
	s := NewSelector(rand.NewSource(7))
	words := []models.WordRecord{
		newWord("a"), newWord("b"), newWord("c"), newWord("d"),
		reviewedWord("later", t0.Add(48*time.Hour)),
	}

	got, err := s.SelectBatch(words, 2, t0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, w := range got {
		assert.NotEqual(t, "later", w.Word)
	}
}

func TestSelectBatch_DeterministicWithSeed(t *testing.T) {
	words := []models.WordRecord{newWord("a"), newWord("b"), newWord("c"), newWord("d"), newWord("e")}

	first, err := NewSelector(rand.NewSource(99)).SelectBatch(words, 3, t0)
	require.NoError(t, err)
	second, err := NewSelector(rand.NewSource(99)).SelectBatch(words, 3, t0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelectBatch_DoesNotReorderInput(t *testing.T) {
	words := []models.WordRecord{newWord("a"), newWord("b"), newWord("c")}
	_, err := NewSelector(rand.NewSource(3)).SelectBatch(words, 3, t0)
	require.NoError(t, err)
	assert.Equal(t, "a", words[0].Word)
	assert.Equal(t, "b", words[1].Word)
	assert.Equal(t, "c", words[2].Word)
}

func TestEndToEnd_AlligatorScenario(t *testing.T) {
	s := NewSelector(rand.NewSource(1))
	words := []models.WordRecord{newWord("alligator")}

	batch, err := s.SelectBatch(words, 5, t0)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "alligator", batch[0].Word)

	state := Grade(words[0].ReviewState, true, t0)
	assert.Equal(t, 2, state.IntervalDays)
	assert.Equal(t, t0.Add(2*Day), state.NextReviewAt)
	words[0].ReviewState = &state

	assert.Equal(t, 0, DueCount(words, t0))
}
