package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/internal/worker"
	"github.com/google/uuid"
)

// Action is the kind of change written to the sheet
type Action string

const (
	ActionAdd       Action = "add"
	ActionDelete    Action = "delete"
	ActionDeleteAll Action = "delete_all"
)

// TimestampLayout is how entry timestamps are written so the sheet parses them as dates
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one row of activity
type Entry struct {
	SheetURL  string
	SheetName string
	Action    Action
	Word      string
	URL       string
	Timestamp time.Time
	Details   map[string]any
}

// Row renders the entry as [timestamp, action, word, url, details]
func (e Entry) Row() []any {
	details := "{}"
	if len(e.Details) > 0 {
		if data, err := json.Marshal(e.Details); err == nil {
			details = string(data)
		}
	}
	return []any{e.Timestamp.Format(TimestampLayout), string(e.Action), e.Word, e.URL, details}
}

// Outcome reports how a queued entry ended. Err is nil on success.
type Outcome struct {
	RequestID string
	Entry     Entry
	Err       error
}

// Appender writes a row to a spreadsheet
type Appender interface {
	AppendRow(ctx context.Context, sheetURL, sheetName string, row []any) error
}

// Logger queues entries and writes them in the background.
// Enqueue never waits for the remote call.
type Logger struct {
	appender  Appender
	pool      *worker.Pool
	timeout   time.Duration
	onOutcome func(Outcome)
	log       *slog.Logger
}

// LoggerOption configures a Logger
type LoggerOption func(*Logger)

// WithTimeout bounds each remote call
func WithTimeout(d time.Duration) LoggerOption {
	return func(l *Logger) { l.timeout = d }
}

// WithOutcomeHandler receives the outcome of every queued entry
func WithOutcomeHandler(fn func(Outcome)) LoggerOption {
	return func(l *Logger) { l.onOutcome = fn }
}

// WithLogger sets the structured logger
func WithLogger(log *slog.Logger) LoggerOption {
	return func(l *Logger) { l.log = log }
}

// NewLogger creates a logger running remote calls on pool.
// The pool must be started by the caller.
func NewLogger(appender Appender, pool *worker.Pool, opts ...LoggerOption) *Logger {
	l := &Logger{
		appender: appender,
		pool:     pool,
		timeout:  15 * time.Second,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enqueue schedules e for writing and returns its request id.
// A full queue or closed pool drops the entry and reports the error.
func (l *Logger) Enqueue(e Entry) (string, error) {
	if e.SheetURL == "" {
		return "", fmt.Errorf("no sheet configured")
	}
	if e.SheetName == "" {
		e.SheetName = "Sheet1"
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	requestID := uuid.NewString()
	err := l.pool.TrySubmit(func(ctx context.Context) error {
		return l.write(ctx, requestID, e)
	})
	if err != nil {
		l.log.Debug("sheet row dropped", "action", e.Action, "word", e.Word, "pending", l.pool.Pending(), "error", err)
		return "", &apperrors.RemoteLoggingError{Action: string(e.Action), Word: e.Word, Err: err}
	}
	return requestID, nil
}

func (l *Logger) write(ctx context.Context, requestID string, e Entry) error {
	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var result error
	if err := l.appender.AppendRow(callCtx, e.SheetURL, e.SheetName, e.Row()); err != nil {
		result = &apperrors.RemoteLoggingError{Action: string(e.Action), Word: e.Word, Err: err}
		l.log.Warn("sheet logging failed",
			"request_id", requestID, "action", e.Action, "word", e.Word, "error", err)
	} else {
		l.log.Debug("sheet row appended", "request_id", requestID, "action", e.Action, "word", e.Word)
	}

	if l.onOutcome != nil {
		l.onOutcome(Outcome{RequestID: requestID, Entry: e, Err: result})
	}
	return result
}
