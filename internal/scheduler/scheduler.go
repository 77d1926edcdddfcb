package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Default reminder window
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier sends a reminder that count words are waiting for review
type Notifier interface {
	SendReminder(ctx context.Context, count int) error
}

// DueCounter reports how many words are due now
type DueCounter interface {
	DueCount(ctx context.Context) (int, error)
}

// Config controls when reminders go out
type Config struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	counter   DueCounter
	notifier  Notifier
	cfg       Config
	now       func() time.Time
	log       *slog.Logger
}

// New creates a new scheduler instance
func New(counter DueCounter, notifier Notifier, cfg Config, log *slog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if !validHour(cfg.StartHour) {
		cfg.StartHour = DefaultNotificationStartHour
	}
	if !validHour(cfg.EndHour) {
		cfg.EndHour = DefaultNotificationEndHour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(cfg.Location),
		counter:   counter,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		s.CheckAndRemind(ctx)
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether t falls inside the reminder hours
func (s *Scheduler) InWindow(t time.Time) bool {
	hour := t.In(s.cfg.Location).Hour()
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

// CheckAndRemind sends a reminder when words are due inside the reminder window.
// It reports whether a reminder went out.
func (s *Scheduler) CheckAndRemind(ctx context.Context) bool {
	now := s.now()
	if !s.InWindow(now) {
		s.log.Debug("outside notification hours, skipping reminder",
			"hour", now.In(s.cfg.Location).Hour(), "start", s.cfg.StartHour, "end", s.cfg.EndHour)
		return false
	}

	count, err := s.counter.DueCount(ctx)
	if err != nil {
		s.log.Error("error counting due words", "error", err)
		return false
	}
	if count == 0 {
		return false
	}

	if err := s.notifier.SendReminder(ctx, count); err != nil {
		s.log.Error("error sending reminder", "count", count, "error", err)
		return false
	}
	s.log.Info("review reminder sent", "due", count)
	return true
}
