package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/vocabmaster/internal/review"
	"github.com/example/vocabmaster/internal/settings"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGrader struct {
	fail  int
	calls int
}

func (g *stubGrader) GradeWord(_ context.Context, _ models.WordRecord, knewIt bool) (models.ReviewState, error) {
	g.calls++
	if g.calls <= g.fail {
		return models.ReviewState{}, errors.New("storage busy")
	}
	interval := 1
	if knewIt {
		interval = 2
	}
	return models.ReviewState{ReviewCount: 1, IntervalDays: interval, KnewItLastTime: knewIt}, nil
}

func TestRunSession(t *testing.T) {
	batch := []models.WordRecord{{Word: "alligator", Meaning: "reptile"}, {Word: "bison"}}
	var out bytes.Buffer
	in := strings.NewReader("maybe\ny\nn\n")

	err := runSession(context.Background(), review.NewSession(&stubGrader{}), batch, in, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[1/2] alligator")
	assert.Contains(t, out.String(), "Please answer y, n or q")
	assert.Contains(t, out.String(), "reptile")
	assert.Contains(t, out.String(), "next review in 2 day(s)")
	assert.Contains(t, out.String(), "Review complete: knew 1 of 2 words")
}

func TestRunSessionRetriesFailedAnswer(t *testing.T) {
	batch := []models.WordRecord{{Word: "alligator"}}
	var out bytes.Buffer
	grader := &stubGrader{fail: 1}

	err := runSession(context.Background(), review.NewSession(grader), batch, strings.NewReader("y\ny\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Could not save the answer")
	assert.Contains(t, out.String(), "Review complete: knew 1 of 1 words")
	assert.Equal(t, 2, grader.calls)
}

func TestRunSessionQuitAndEmpty(t *testing.T) {
	var out bytes.Buffer
	err := runSession(context.Background(), review.NewSession(&stubGrader{}), nil, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No words to review yet")

	out.Reset()
	batch := []models.WordRecord{{Word: "a"}, {Word: "b"}}
	err = runSession(context.Background(), review.NewSession(&stubGrader{}), batch, strings.NewReader("q\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stopped after 0 of 2 words")
}

func TestNextReviewLabel(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "due", nextReview(models.WordRecord{Word: "new"}, now))

	later := models.WordRecord{Word: "later", ReviewState: &models.ReviewState{NextReviewAt: now.Add(72 * time.Hour)}}
	assert.NotEqual(t, "due", nextReview(later, now))
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("VOCABMASTER_DATABASE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("VOCABMASTER_LOG_LEVEL", "error")

	out, err := executeCommand(t, "highlight", "Alligator", "--url", "https://example.com/zoo", "--keys", "alt+h")
	require.NoError(t, err)
	assert.Contains(t, out, `Highlighted "alligator" (seen 1 times)`)

	_, err = executeCommand(t, "highlight", "bison", "--keys", "ctrl+b")
	assert.Error(t, err)

	out, err = executeCommand(t, "words", "meaning", "alligator", "large", "reptile")
	require.NoError(t, err)
	assert.Contains(t, out, "alligator: large reptile")

	out, err = executeCommand(t, "words", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "alligator")
	assert.Contains(t, out, "large reptile")

	out, err = executeCommand(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Due now:        1")

	_, err = executeCommand(t, "review", "--count", "500")
	assert.Error(t, err)

	out, err = executeCommand(t, "settings", "show", "--format", "json")
	require.NoError(t, err)
	got, err := settings.Import(strings.NewReader(out), settings.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), got)
}

func TestFormatFlagFromExtension(t *testing.T) {
	require.NoError(t, settingsExportCmd.Flags().Set("format", ""))
	f, err := formatFlag(settingsExportCmd, "backup.yaml")
	require.NoError(t, err)
	assert.Equal(t, settings.FormatYAML, f)

	f, err = formatFlag(settingsExportCmd, "backup.json")
	require.NoError(t, err)
	assert.Equal(t, settings.FormatJSON, f)
}
