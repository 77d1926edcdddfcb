package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/vocabmaster/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fixedCounter struct {
	count int
	err   error
}

func (f fixedCounter) DueCount(context.Context) (int, error) { return f.count, f.err }

type countingNotifier struct {
	sent []int
	err  error
}

func (n *countingNotifier) SendReminder(_ context.Context, count int) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, count)
	return nil
}

func newTestScheduler(counter DueCounter, notifier Notifier, at time.Time) *Scheduler {
	s := New(counter, notifier, Config{StartHour: 8, EndHour: 22, Location: time.UTC}, logging.Discard())
	s.now = func() time.Time { return at }
	return s
}

func TestCheckAndRemind(t *testing.T) {
	noon := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	night := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		at       time.Time
		counter  fixedCounter
		notifier *countingNotifier
		want     bool
	}{
		{"due words in window", noon, fixedCounter{count: 4}, &countingNotifier{}, true},
		{"outside window", night, fixedCounter{count: 4}, &countingNotifier{}, false},
		{"nothing due", noon, fixedCounter{count: 0}, &countingNotifier{}, false},
		{"count fails", noon, fixedCounter{err: errors.New("timeout")}, &countingNotifier{}, false},
		{"notifier fails", noon, fixedCounter{count: 2}, &countingNotifier{err: errors.New("offline")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.counter, tt.notifier, tt.at)
			assert.Equal(t, tt.want, s.CheckAndRemind(context.Background()))
			if tt.want {
				assert.Equal(t, []int{tt.counter.count}, tt.notifier.sent)
			}
		})
	}
}

func TestInWindowBoundaries(t *testing.T) {
	s := newTestScheduler(fixedCounter{}, &countingNotifier{}, time.Time{})
	assert.True(t, s.InWindow(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, s.InWindow(time.Date(2025, 1, 1, 22, 59, 0, 0, time.UTC)))
	assert.False(t, s.InWindow(time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.False(t, s.InWindow(time.Date(2025, 1, 1, 7, 59, 0, 0, time.UTC)))
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(fixedCounter{}, &countingNotifier{}, Config{StartHour: -1, EndHour: 40}, nil)
	assert.Equal(t, DefaultNotificationStartHour, s.cfg.StartHour)
	assert.Equal(t, DefaultNotificationEndHour, s.cfg.EndHour)
	assert.Equal(t, time.Hour, s.cfg.Interval)
}
