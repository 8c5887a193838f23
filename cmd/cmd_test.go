package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/wordtrack/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DB_TYPE", "DB_DSN", "TELEGRAM_BOT_TOKEN", "OPENAI_API_KEY", "OPENAI_MODEL",
	"OPENAI_BASE_URL", "LOG_LEVEL", "LOG_FORMAT", "NOTIFICATION_START_HOUR",
	"NOTIFICATION_END_HOUR", "DAILY_GOAL_MINUTES", "QUEUE_LIMIT", "LEARNER_ID",
}

// setupCLI points the commands at a fresh SQLite file holding two words
func setupCLI(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("DB_DSN", filepath.Join(dir, "wordtrack.db"))
	t.Setenv("LOG_LEVEL", "error")

	csvPath := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("word,translation\napple,manzana\nhouse,casa\n"), 0o600))

	out, err := run(t, "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "2 created")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStudyFlow(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "queue")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] apple - manzana")
	assert.Contains(t, out, "[2] house - casa")

	out, err = run(t, "session", "start", "fruit")
	require.NoError(t, err)
	assert.Contains(t, out, "started")

	out, err = run(t, "review", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Item 1: learning")
	assert.Contains(t, out, "in 1 days")

	out, err = run(t, "answer", "2", "casa")
	require.NoError(t, err)
	assert.Contains(t, out, "house = casa (quality 5)")

	out, err = run(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "2 words")

	out, err = run(t, "session", "close", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Words reviewed: 2")
	assert.Contains(t, out, "Streak: 1 days")

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Streak: 1 days (longest 1)")
	assert.Contains(t, out, "2 learning")

	out, err = run(t, "session", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "100%")

	// both words were reviewed today, so they come back as upcoming items
	out, err = run(t, "queue", "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestSessionProtocolErrors(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "review", "1", "4")
	assert.ErrorIs(t, err, tracker.ErrNoOpenSession)

	_, err = run(t, "session", "close")
	assert.ErrorIs(t, err, tracker.ErrNoOpenSession)

	_, err = run(t, "session", "start")
	require.NoError(t, err)
	_, err = run(t, "session", "start")
	assert.ErrorIs(t, err, tracker.ErrSessionAlreadyOpen)

	_, err = run(t, "answer", "99", "anything")
	assert.ErrorIs(t, err, tracker.ErrUnknownItem)

	_, err = run(t, "review", "one", "4")
	assert.Error(t, err)
}

func TestLearnerFlagSeparatesProgress(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "session", "start", "--learner", "7")
	require.NoError(t, err)

	_, err = run(t, "session", "show")
	assert.ErrorIs(t, err, tracker.ErrNoOpenSession)

	_, err = run(t, "session", "show", "--learner", "7")
	assert.NoError(t, err)
}

func TestAchievementsAndDifficulty(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "achievements")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ]")
	assert.NotContains(t, out, "[x]")

	out, err = run(t, "difficulty")
	require.NoError(t, err)
	assert.Equal(t, "normal\n", out)

	out, err = run(t, "difficulty", "1")
	require.NoError(t, err)
	assert.Equal(t, "normal\n", out)
}
