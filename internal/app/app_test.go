package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/vocabmaster/internal/config"
	"github.com/example/vocabmaster/internal/logging"
	"github.com/example/vocabmaster/internal/notify"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Database:    config.DatabaseConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "vocab.db")},
		MergePolicy: "word",
		Timezone:    "UTC",
		CallTimeout: time.Second,
		Reminder:    config.ReminderConfig{Interval: time.Hour, StartHour: 0, EndHour: 23},
	}
}

func TestAppLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))

	_, err = a.Coordinator.Highlight(ctx, "Persisted", models.PageContext{URL: "https://example.com"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, reopened.Start(ctx))
	defer reopened.Close()

	words, err := reopened.Coordinator.ListWords(ctx)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "persisted", words[0].Word)

	_, err = reopened.SheetsClient()
	assert.Error(t, err, "no credentials configured")
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MergePolicy = "fuzzy"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Sheets.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNotifierDefaultsToLog(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	n, err := a.Notifier()
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)

	s, err := a.Scheduler()
	require.NoError(t, err)
	assert.NotNil(t, s)
}
