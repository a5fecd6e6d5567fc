package combatlog_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

func emoteAt(n int) string {
	return fmt.Sprintf(`8/3 20:15:42.%03d  EMOTE,Player-1-ABC,"Thrall",0x0,0x0,msg%d`, n, n)
}

// newLogDir creates a temp directory with one combat log containing the
// given lines.
func newLogDir(t *testing.T, lines ...string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "WoWCombatLog.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

// receive reads one record with a timeout so a broken watcher fails the
// test instead of hanging it.
func receive(t *testing.T, records <-chan *combatlog.Record) *combatlog.Record {
	t.Helper()
	select {
	case rec, ok := <-records:
		require.True(t, ok, "record channel closed unexpectedly")
		return rec
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for record")
		return nil
	}
}

func TestNewWatcherWithOptions_NoLogFiles(t *testing.T) {
	_, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(t.TempDir()))
	assert.ErrorIs(t, err, combatlog.ErrLogDirNotFound)
}

func TestNewWatcherWithOptions_InvalidOptions(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1))

	_, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithPollInterval(-time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")

	_, err = combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithReplayLastN(combatlog.DefaultMaxReplayLastN+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestNewWatcherWithOptions_WaitForLogsAcceptsEmptyDir(t *testing.T) {
	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(t.TempDir()),
		combatlog.WithWaitForLogs(true))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestWatcher_Lifecycle(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(combatlog.WithLogDir(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _, err = w.Watch(ctx)
	require.NoError(t, err)

	_, _, err = w.Watch(ctx)
	assert.ErrorIs(t, err, combatlog.ErrAlreadyWatching)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close()) // idempotent

	_, _, err = w.Watch(ctx)
	assert.ErrorIs(t, err, combatlog.ErrWatcherClosed)
}

func TestWatcher_ReplayFromStart(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1), emoteAt(2))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithReplayFromStart())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	first := receive(t, records)
	second := receive(t, records)
	assert.Equal(t, "msg1", first.Event.(*event.Emote).Text)
	assert.Equal(t, "msg2", second.Event.(*event.Emote).Text)
}

func TestWatcher_ReplayLastN(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1), emoteAt(2), emoteAt(3))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithReplayLastN(2))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	first := receive(t, records)
	second := receive(t, records)
	assert.Equal(t, "msg2", first.Event.(*event.Emote).Text)
	assert.Equal(t, "msg3", second.Event.(*event.Emote).Text)
}

func TestWatcher_ReplayLimitExceeded(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1), emoteAt(2))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithReplayLastN(2),
		combatlog.WithMaxReplayBytes(8))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	select {
	case werr := <-errs:
		assert.ErrorIs(t, werr, combatlog.ErrReplayLimitExceeded)
		var we *combatlog.WatchError
		require.ErrorAs(t, werr, &we)
		assert.Equal(t, combatlog.WatchOpReplay, we.Op)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for replay error")
	}
}

func TestWatcher_LiveAppend(t *testing.T) {
	dir, path := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(combatlog.WithLogDir(dir))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	// Give the tailer a moment to seek to the end, then append.
	time.Sleep(500 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(emoteAt(2) + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rec := receive(t, records)
	assert.Equal(t, "msg2", rec.Event.(*event.Emote).Text)
}

func TestWatcher_Filter(t *testing.T) {
	dir, _ := newLogDir(t,
		"8/3 20:15:42.001  SPELL_AURA_APPLIED,a,b,c",
		emoteAt(2))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithReplayFromStart(),
		combatlog.WithIncludeTypes(event.TypeEmote))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	rec := receive(t, records)
	assert.Equal(t, event.TypeEmote, rec.Type)
}

func TestWatcher_Rotation(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithPollInterval(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	// Let the watcher settle on the current file, then start a fresh
	// session log the way the game does.
	time.Sleep(300 * time.Millisecond)
	next := filepath.Join(dir, "WoWCombatLog-080325_201600.txt")
	require.NoError(t, os.WriteFile(next, []byte(emoteAt(2)+"\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(next, future, future))

	// The new file is read from the start, so its existing line arrives
	// once the rotation poll notices it.
	rec := receive(t, records)
	assert.Equal(t, "msg2", rec.Event.(*event.Emote).Text)
	assert.Equal(t, event.TypeEmote, rec.Type)
}

func TestWatcher_RotationKeepsDelivering(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithPollInterval(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, _, err := w.Watch(ctx)
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)
	next := filepath.Join(dir, "WoWCombatLog-080325_201600.txt")
	require.NoError(t, os.WriteFile(next, []byte(emoteAt(2)+"\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(next, future, future))

	rec := receive(t, records)
	require.Equal(t, "msg2", rec.Event.(*event.Emote).Text)

	// Lines appended to the new file after the switch keep flowing.
	f, err := os.OpenFile(next, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(emoteAt(3) + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Chtimes(next, future, future))

	rec = receive(t, records)
	assert.Equal(t, "msg3", rec.Event.(*event.Emote).Text)
}

func TestWatcher_RotationError(t *testing.T) {
	dir, path := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(
		combatlog.WithLogDir(dir),
		combatlog.WithPollInterval(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	// Deleting every log file makes the rotation poll fail; the watcher
	// reports it and keeps running.
	require.NoError(t, os.Remove(path))

	deadline := time.After(10 * time.Second)
	for {
		select {
		case werr, ok := <-errs:
			require.True(t, ok, "error channel closed unexpectedly")
			var we *combatlog.WatchError
			if errors.As(werr, &we) && we.Op == combatlog.WatchOpRotation {
				assert.ErrorIs(t, we, combatlog.ErrNoLogFiles)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for rotation error")
		}
	}
}

func TestWatcher_ChannelsCloseOnCancel(t *testing.T) {
	dir, _ := newLogDir(t, emoteAt(1))

	w, err := combatlog.NewWatcherWithOptions(combatlog.WithLogDir(dir))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	records, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	cancel()

	deadline := time.After(10 * time.Second)
	for records != nil || errs != nil {
		select {
		case _, ok := <-records:
			if !ok {
				records = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-deadline:
			t.Fatal("channels did not close after cancel")
		}
	}
}
