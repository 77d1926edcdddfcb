package sheets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/vocabmaster/internal/apperrors"
	"github.com/example/vocabmaster/internal/logging"
	"github.com/example/vocabmaster/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppender struct {
	mu    sync.Mutex
	rows  [][]any
	fail  error
	block bool
}

func (f *fakeAppender) AppendRow(ctx context.Context, sheetURL, sheetName string, row []any) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.rows = append(f.rows, row)
	return nil
}

type outcomes struct {
	mu  sync.Mutex
	all []Outcome
}

func (o *outcomes) add(out Outcome) {
	o.mu.Lock()
	o.all = append(o.all, out)
	o.mu.Unlock()
}

func (o *outcomes) list() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outcome(nil), o.all...)
}

func newTestLogger(appender Appender, timeout time.Duration) (*Logger, *worker.Pool, *outcomes) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background(), nil)
	got := &outcomes{}
	l := NewLogger(appender, pool,
		WithTimeout(timeout),
		WithOutcomeHandler(got.add),
		WithLogger(logging.Discard()))
	return l, pool, got
}

func TestEntryRow(t *testing.T) {
	e := Entry{
		Action:    ActionAdd,
		Word:      "alligator",
		URL:       "https://example.com/a",
		Timestamp: time.Date(2025, 6, 15, 10, 4, 5, 0, time.UTC),
		Details:   map[string]any{"title": "Example"},
	}
	assert.Equal(t, []any{"2025-06-15 10:04:05", "add", "alligator", "https://example.com/a", `{"title":"Example"}`}, e.Row())

	e.Details = nil
	assert.Equal(t, "{}", e.Row()[4])
}

func TestEnqueueWritesInBackground(t *testing.T) {
	appender := &fakeAppender{}
	l, pool, got := newTestLogger(appender, time.Second)

	id, err := l.Enqueue(Entry{SheetURL: testSheetURL, Action: ActionAdd, Word: "alligator"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	pool.Close()

	out := got.list()
	require.Len(t, out, 1)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, id, out[0].RequestID)
	assert.Equal(t, "Sheet1", out[0].Entry.SheetName)
	require.Len(t, appender.rows, 1)
	assert.Equal(t, "alligator", appender.rows[0][2])
}

func TestEnqueueReportsRemoteFailure(t *testing.T) {
	appender := &fakeAppender{fail: errors.New("quota exceeded")}
	l, pool, got := newTestLogger(appender, time.Second)

	_, err := l.Enqueue(Entry{SheetURL: testSheetURL, Action: ActionDelete, Word: "bison"})
	require.NoError(t, err)
	pool.Close()

	out := got.list()
	require.Len(t, out, 1)
	var remoteErr *apperrors.RemoteLoggingError
	require.ErrorAs(t, out[0].Err, &remoteErr)
	assert.Equal(t, "delete", remoteErr.Action)
	assert.Equal(t, "bison", remoteErr.Word)
}

func TestEnqueueTimesOut(t *testing.T) {
	l, pool, got := newTestLogger(&fakeAppender{block: true}, 20*time.Millisecond)

	_, err := l.Enqueue(Entry{SheetURL: testSheetURL, Action: ActionAdd, Word: "slow"})
	require.NoError(t, err)
	pool.Close()

	out := got.list()
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, context.DeadlineExceeded)
}

func TestEnqueueWithoutSheet(t *testing.T) {
	l, pool, _ := newTestLogger(&fakeAppender{}, time.Second)
	defer pool.Close()

	_, err := l.Enqueue(Entry{Action: ActionAdd, Word: "x"})
	assert.Error(t, err)
}

func TestEnqueueAfterPoolClosed(t *testing.T) {
	l, pool, _ := newTestLogger(&fakeAppender{}, time.Second)
	pool.Close()

	_, err := l.Enqueue(Entry{SheetURL: testSheetURL, Action: ActionAdd, Word: "late"})
	assert.True(t, apperrors.IsRemoteLogging(err))
	assert.ErrorIs(t, err, worker.ErrPoolClosed)
}
