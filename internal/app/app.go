// Package app wires configuration, storage, the coordinator and the remote
// logger into one running instance.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/vocabmaster/internal/config"
	"github.com/example/vocabmaster/internal/coordinator"
	"github.com/example/vocabmaster/internal/database"
	"github.com/example/vocabmaster/internal/logging"
	"github.com/example/vocabmaster/internal/notify"
	"github.com/example/vocabmaster/internal/scheduler"
	"github.com/example/vocabmaster/internal/settings"
	"github.com/example/vocabmaster/internal/sheets"
	"github.com/example/vocabmaster/internal/spaced_repetition"
	"github.com/example/vocabmaster/internal/stats"
	"github.com/example/vocabmaster/internal/store"
	"github.com/example/vocabmaster/internal/worker"
	"github.com/jmoiron/sqlx"
)

// App is a running vocabmaster instance
type App struct {
	Config      config.Config
	Coordinator *coordinator.Coordinator
	Log         *slog.Logger

	db     *sqlx.DB
	kv     *database.KVRepository
	client *sheets.Client
	pool   *worker.Pool
	cancel context.CancelFunc
	done   chan struct{}
}

// New opens the database and builds every component. Nothing runs until Start.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	policy, err := store.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	kv := database.NewKVRepository(db)

	a := &App{Config: cfg, Log: log, db: db, kv: kv}

	var sheetLogger coordinator.SheetLogger
	if cfg.Sheets.CredentialsFile != "" {
		client, err := sheets.NewClientFromFile(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.Timeout)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.client = client
		a.pool = worker.NewPool(cfg.Sheets.Workers, cfg.Sheets.QueueSize)
		sheetLog := logging.Component(log, "sheets")
		sheetLogger = sheets.NewLogger(client, a.pool,
			sheets.WithTimeout(cfg.Sheets.Timeout),
			sheets.WithLogger(sheetLog),
			sheets.WithOutcomeHandler(func(o sheets.Outcome) {
				if o.Err == nil {
					sheetLog.Info("logged to sheet", "action", o.Entry.Action, "word", o.Entry.Word)
				}
			}))
	}

	a.Coordinator = coordinator.New(coordinator.Deps{
		Storage:     kv,
		Store:       store.New(kv, store.WithMergePolicy(policy)),
		Stats:       stats.NewTracker(kv, loc),
		Settings:    settings.NewRepository(kv),
		Selector:    spaced_repetition.NewSelector(nil),
		Sheets:      sheetLogger,
		CallTimeout: cfg.CallTimeout,
		Logger:      logging.Component(log, "coordinator"),
	})
	return a, nil
}

// Start runs the coordinator and the remote logging workers, then seeds missing state
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	if a.pool != nil {
		a.pool.Start(runCtx, nil)
	}
	go func() {
		defer close(a.done)
		_ = a.Coordinator.Run(runCtx)
	}()

	if err := a.Coordinator.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	return nil
}

// SheetsClient returns the spreadsheet client, if credentials are configured
func (a *App) SheetsClient() (*sheets.Client, error) {
	if a.client == nil {
		return nil, fmt.Errorf("sheets.credentials_file is not configured")
	}
	return a.client, nil
}

// Notifier picks Telegram when a token is configured, the log otherwise
func (a *App) Notifier() (scheduler.Notifier, error) {
	if a.Config.Telegram.Token == "" {
		return notify.NewLogNotifier(logging.Component(a.Log, "reminder")), nil
	}
	return notify.NewTelegram(a.Config.Telegram.Token, a.Config.Telegram.ChatID, logging.Component(a.Log, "telegram"))
}

// Scheduler builds the reminder scheduler for this instance
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	notifier, err := a.Notifier()
	if err != nil {
		return nil, err
	}
	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}
	return scheduler.New(a.Coordinator, notifier, scheduler.Config{
		Interval:  a.Config.Reminder.Interval,
		StartHour: a.Config.Reminder.StartHour,
		EndHour:   a.Config.Reminder.EndHour,
		Location:  loc,
	}, logging.Component(a.Log, "scheduler")), nil
}

// Close flushes queued sheet rows, stops the coordinator and closes the database
func (a *App) Close() error {
	if a.pool != nil {
		if n := a.pool.Pending(); n > 0 {
			a.Log.Info("flushing queued sheet rows", "pending", n)
		}
		a.pool.Close()
	}
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
	return a.db.Close()
}
