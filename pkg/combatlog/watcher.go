package combatlog

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/wowlog/wowlog-go/internal/logfinder"
	"github.com/wowlog/wowlog-go/internal/tailer"
)

// ReplayMode specifies how to handle existing log lines.
type ReplayMode int

const (
	// ReplayNone only watches for new lines (default, tail -f behavior).
	ReplayNone ReplayMode = iota
	// ReplayFromStart reads from the beginning of the file.
	ReplayFromStart
	// ReplayLastN reads the last N lines before tailing.
	ReplayLastN
)

// DefaultMaxReplayLastN is the default maximum lines for ReplayLastN
// mode.
const DefaultMaxReplayLastN = 10000

// watcherErrBuffer is the buffer size for the error channel. A small
// buffer prevents error loss during brief moments when the consumer is
// busy, while keeping memory usage minimal.
const watcherErrBuffer = 16

// ReplayConfig configures replay behavior.
type ReplayConfig struct {
	Mode  ReplayMode
	LastN int // for ReplayLastN
}

// Watcher monitors combat log files and delivers decoded records.
type Watcher struct {
	cfg    watchConfig // internal configuration (immutable after creation)
	logDir string
	log    *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// Watch starts watching and returns the record and error channels.
// Both channels close on ctx.Done() or fatal error.
// Watch can only be called once per Watcher instance.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan *Record, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	recCh := make(chan *Record)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, recCh, errCh)

	return recCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times. Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, recCh chan<- *Record, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(recCh)
	defer close(errCh)

	logFile, err := w.findLogFileWithWait(ctx, errCh)
	if err != nil {
		// Error already sent to errCh by findLogFileWithWait.
		return
	}
	w.log.Debug("found latest combat log", "path", logFile)

	cfg := tailer.DefaultConfig()
	cfg.FromStart = w.cfg.replay.Mode == ReplayFromStart

	if w.cfg.replay.Mode == ReplayLastN && w.cfg.replay.LastN > 0 {
		w.log.Debug("replaying last N lines", "n", w.cfg.replay.LastN, "path", logFile)
		if err := w.replayLastN(ctx, logFile, recCh, errCh); err != nil {
			sendError(errCh, &WatchError{Op: WatchOpReplay, Path: logFile, Err: err})
		}
		cfg.FromStart = false // continue from the end after replay
	}

	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	w.log.Debug("started tailing", "path", logFile, "from_start", cfg.FromStart)

	rotationTicker := time.NewTicker(w.cfg.pollInterval)
	defer rotationTicker.Stop()
	defer func() { _ = t.Stop() }()

	currentFile := logFile

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			w.processLine(ctx, line, recCh, errCh)
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(errCh, err)
		case <-rotationTicker.C:
			// The game starts a fresh WoWCombatLog file per session; switch
			// to the newest file when one appears.
			newFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err != nil {
				sendError(errCh, &WatchError{Op: WatchOpRotation, Err: err})
				continue
			}
			if newFile != currentFile {
				w.log.Debug("log rotation detected", "from", currentFile, "to", newFile)
				_ = t.Stop()
				cfg := tailer.DefaultConfig()
				cfg.FromStart = true // read the new file from the start
				newTailer, err := tailer.New(ctx, newFile, cfg)
				if err != nil {
					sendError(errCh, &WatchError{Op: WatchOpTail, Path: newFile, Err: err})
					continue
				}
				t = newTailer
				currentFile = newFile
			}
		}
	}
}

// findLogFileWithWait finds the latest log file, optionally waiting if
// none exist yet. The error, if any, has already been sent to errCh.
func (w *Watcher) findLogFileWithWait(ctx context.Context, errCh chan<- error) (string, error) {
	logFile, err := logfinder.FindLatestLogFile(w.logDir)
	if err == nil {
		return logFile, nil
	}
	if err != ErrNoLogFiles {
		sendError(errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	if !w.cfg.waitForLogs {
		sendError(errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	w.log.Debug("no combat logs found, waiting", "poll_interval", w.cfg.pollInterval)
	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			select {
			case errCh <- &WatchError{Op: WatchOpFindLatest, Err: err}:
			default:
			}
			return "", err
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err == nil {
				w.log.Debug("combat log appeared", "path", logFile)
				return logFile, nil
			}
			if err != ErrNoLogFiles {
				sendError(errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, recCh chan<- *Record, errCh chan<- error) {
	if line == "" {
		return
	}
	result, err := w.cfg.parser.ParseLine(ctx, line)
	if err != nil {
		sendError(errCh, &LineError{Line: line, Err: err})
		if len(result.Records) == 0 {
			return
		}
		// Partial results from ChainContinueOnError are still delivered.
	}
	if !result.Matched && len(result.Records) == 0 {
		return
	}

	for _, rec := range result.Records {
		if w.cfg.filter != nil && !w.cfg.filter.Allows(rec.Type) {
			continue
		}
		if w.cfg.includeRawLine {
			rec.RawLine = line
		}
		select {
		case recCh <- rec:
		case <-ctx.Done():
			return
		}
	}
}

// replayLastN reads and processes the last N lines from the log file.
func (w *Watcher) replayLastN(ctx context.Context, logFile string, recCh chan<- *Record, errCh chan<- error) error {
	lines, err := readLastNLines(logFile, w.cfg.replay.LastN, w.cfg.maxReplayBytes)
	if err != nil {
		return err
	}

	for _, line := range lines {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			w.processLine(ctx, line, recCh, errCh)
		}
	}
	return nil
}

// readLastNLines returns the last n non-empty lines of a file, oldest
// first. The file is scanned forward with a ring buffer of n lines;
// memory stays bounded by the longest n lines regardless of file size.
//
// maxBytes caps the total file size accepted for replay (0 = unlimited);
// ErrReplayLimitExceeded is returned when the file is larger.
func readLastNLines(filepath string, n int, maxBytes int) ([]string, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxBytes > 0 {
		stat, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if stat.Size() > int64(maxBytes) {
			return nil, ErrReplayLimitExceeded
		}
	}

	ring := make([]string, n)
	count := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineBytes)
	for sc.Scan() {
		line := sc.Text()
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if line == "" {
			continue
		}
		ring[count%n] = line
		count++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if count < n {
		return ring[:count], nil
	}
	// Unroll the ring: oldest entry is at count % n.
	out := make([]string, 0, n)
	start := count % n
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}

// sendError sends an error to the error channel without ever blocking
// shutdown. With a buffered channel, errors are only dropped if the
// buffer is full.
func sendError(errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	default:
	}
}

// WatchWithOptions creates a watcher using functional options and starts
// watching. The watcher stops when the context is cancelled; for
// synchronous shutdown use NewWatcherWithOptions and Watcher.Watch
// directly.
//
// Example:
//
//	records, errs, err := combatlog.WatchWithOptions(ctx,
//	    combatlog.WithIncludeTypes(event.TypeSpellDamage, event.TypeSpellHeal),
//	)
func WatchWithOptions(ctx context.Context, opts ...WatchOption) (<-chan *Record, <-chan error, error) {
	w, err := NewWatcherWithOptions(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}

// NewWatcherWithOptions creates a watcher using functional options.
// Validates options and checks log directory existence. Does NOT start
// goroutines.
func NewWatcherWithOptions(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		// An explicit directory with no combat logs yet is acceptable when
		// the caller asked to wait for them.
		if cfg.waitForLogs && cfg.logDir != "" {
			if info, statErr := os.Stat(cfg.logDir); statErr == nil && info.IsDir() {
				return newWatcher(cfg, cfg.logDir), nil
			}
		}
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	return newWatcher(cfg, logDir), nil
}

func newWatcher(cfg *watchConfig, logDir string) *Watcher {
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	return &Watcher{
		cfg:    *cfg, // copy to ensure immutability
		logDir: logDir,
		log:    log,
	}
}
