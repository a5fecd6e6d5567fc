// Package tailer follows a growing combat log file and delivers its
// lines over a channel. It wraps nxadm/tail with context-aware shutdown.
package tailer

import (
	"context"
	"io"
	"strings"

	"github.com/nxadm/tail"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the file from the beginning instead of seeking to
	// the end before following.
	FromStart bool

	// Poll uses polling instead of inotify. Polling is more robust on
	// network shares and on the Windows filesystems combat logs live on.
	Poll bool
}

// DefaultConfig returns the config used by the watcher: follow from the
// end, polling enabled.
func DefaultConfig() Config {
	return Config{Poll: true}
}

// Tailer follows a single file.
type Tailer struct {
	t     *tail.Tail
	lines chan string
	errs  chan error
}

// New starts following path. Lines already present are skipped unless
// cfg.FromStart is set. The tailer stops when ctx is cancelled or Stop is
// called; both channels are closed on exit.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tc := tail.Config{
		Follow: true,
		ReOpen: true,
		Poll:   cfg.Poll,
		Logger: tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tc.Location = &tail.SeekInfo{Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tc)
	if err != nil {
		return nil, err
	}

	tl := &Tailer{
		t:     t,
		lines: make(chan string),
		errs:  make(chan error, 1),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of lines read from the file. Trailing CR is
// stripped for CRLF files.
func (tl *Tailer) Lines() <-chan string { return tl.lines }

// Errors returns the channel of read errors.
func (tl *Tailer) Errors() <-chan error { return tl.errs }

// Stop stops following the file and waits for the reader to exit.
// Safe to call after the context is already cancelled.
func (tl *Tailer) Stop() error {
	return tl.t.Stop()
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.lines)
	defer close(tl.errs)
	defer tl.t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = tl.t.Stop()
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case tl.errs <- line.Err:
				case <-ctx.Done():
					_ = tl.t.Stop()
					return
				}
				continue
			}
			text := strings.TrimRight(line.Text, "\r")
			select {
			case tl.lines <- text:
			case <-ctx.Done():
				_ = tl.t.Stop()
				return
			}
		}
	}
}
