package session_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/logging"
	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/session"
	"github.com/Tiliavir/stt/internal/storage"
	"github.com/Tiliavir/stt/internal/store"
)

var now = time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)

func openSession(t *testing.T, path string, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{session.WithClock(clockwork.NewFakeClockAt(now))}, opts...)
	s, err := session.Open(path, opts...)
	require.NoError(t, err)
	return s
}

func execute(t *testing.T, s *session.Session, input string) model.Interval {
	t.Helper()
	ins, err := instruction.Parse(input, s.Now())
	require.NoError(t, err)
	iv, err := s.Execute(ins)
	require.NoError(t, err)
	return iv
}

func TestStartFlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities")

	s := openSession(t, path)
	assert.Equal(t, 0, s.Store().Len())
	execute(t, s, "coding since 1h")
	require.True(t, s.Dirty())
	require.NoError(t, s.Flush())
	assert.False(t, s.Dirty())

	reloaded := openSession(t, path)
	latest, ok := reloaded.Store().Latest()
	require.True(t, ok)
	assert.Equal(t, "coding", latest.Activity)
	assert.True(t, latest.End.IsOpen())
	assert.True(t, now.Add(-time.Hour).Equal(latest.Start))
}

func TestFinClosesRunningActivity(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))
	execute(t, s, "coding since 1h")

	stopped := execute(t, s, "fin 10m ago")

	end, ok := stopped.End.Time()
	require.True(t, ok)
	assert.True(t, now.Add(-10*time.Minute).Equal(end))
	require.Equal(t, 1, s.Store().Len())
	assert.True(t, stopped.Equal(s.Store().Items()[0]))
}

func TestFinWithoutRunningActivity(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))

	_, err := s.Execute(instruction.Instruction{Kind: instruction.Fin, When: instruction.Now()})
	assert.ErrorIs(t, err, session.ErrNothingRunning)

	execute(t, s, "meeting from 09:00 to 10:00")
	_, err = s.Execute(instruction.Instruction{Kind: instruction.Fin, When: instruction.Now()})
	assert.ErrorIs(t, err, session.ErrNothingRunning)
}

func TestFinBeforeStartIsRejected(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))
	execute(t, s, "coding since 10m")

	ins, err := instruction.Parse("fin 1h ago", s.Now())
	require.NoError(t, err)
	_, err = s.Execute(ins)
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)

	latest, _ := s.Store().Latest()
	assert.True(t, latest.End.IsOpen())
}

func TestResume(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))

	_, err := s.Execute(instruction.Instruction{Kind: instruction.Resume, When: instruction.Now()})
	assert.ErrorIs(t, err, session.ErrEmptyLog)

	execute(t, s, "review\nticket 42 since 2h")
	execute(t, s, "fin 1h ago")
	resumed := execute(t, s, "resume")

	assert.Equal(t, "review\nticket 42", resumed.Activity)
	assert.True(t, resumed.End.IsOpen())
	assert.True(t, now.Equal(resumed.Start))
	assert.Equal(t, 2, s.Store().Len())
}

func TestStopAndContinueListedItems(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))
	running := execute(t, s, "coding since 30m")

	_, err := s.Stop(running, now.Add(-time.Hour))
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)

	stopped, err := s.Stop(running, now)
	require.NoError(t, err)
	_, err = s.Stop(stopped, now)
	assert.ErrorIs(t, err, session.ErrNothingRunning)

	cont := s.Continue(stopped, now.Add(time.Minute))
	assert.Equal(t, "coding", cont.Activity)
	assert.Equal(t, 2, s.Store().Len())
}

func TestDeleteUnknownInterval(t *testing.T) {
	s := openSession(t, filepath.Join(t.TempDir(), "activities"))
	err := s.Delete(model.StartingAt(now, "ghost"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, s.Dirty())
}

func TestOpenLogsSkippedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities")
	content := "2024-03-05_09:00:00 2024-03-05_10:00:00 mail\ngarbage\n2024-03-05_10:00:00 coding\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var buf bytes.Buffer
	s := openSession(t, path, session.WithLogger(logging.New(logging.WithWriter(&buf), logging.WithLevel(slog.LevelDebug))))

	assert.Equal(t, 2, s.Store().Len())
	assert.Contains(t, buf.String(), "skipping unreadable line")
	assert.False(t, s.Dirty())
}

func TestFlushWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities")
	s := openSession(t, path)
	require.NoError(t, s.Flush())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFlushTakesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities")
	backups := filepath.Join(dir, "backups")
	require.NoError(t, os.WriteFile(path, []byte("2024-03-05_09:00:00 2024-03-05_10:00:00 mail\n"), 0o600))

	s := openSession(t, path, session.WithBackup(storage.BackupPolicy{Dir: backups, IntervalDays: 1, Retention: 3}))
	execute(t, s, "coding")
	require.NoError(t, s.Flush())

	data, err := os.ReadFile(filepath.Join(backups, "activities-2024-03-05"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05_09:00:00 2024-03-05_10:00:00 mail\n", string(data))

	items, err := storage.Load(path)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
