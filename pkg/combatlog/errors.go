package combatlog

import (
	"errors"
	"fmt"

	"github.com/wowlog/wowlog-go/internal/logfinder"
	"github.com/wowlog/wowlog-go/internal/parser"
)

// Sentinel errors.
var (
	// ErrLogDirNotFound indicates no combat log directory could be located.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles indicates the log directory contains no combat log files.
	ErrNoLogFiles = logfinder.ErrNoLogFiles

	// ErrWatcherClosed is returned by Watch after Close has been called.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyWatching is returned by a second call to Watch.
	ErrAlreadyWatching = errors.New("watcher is already watching")

	// ErrReplayLimitExceeded indicates replay would read more data than the
	// configured limits allow.
	ErrReplayLimitExceeded = errors.New("replay limit exceeded")
)

// FramingError reports a line that could not be split into timestamp and
// event body. See the parser for details.
type FramingError = parser.FramingError

// ArityError reports an event body whose cell count does not match its
// fixed schema.
type ArityError = parser.ArityError

// LineError wraps a per-line decode failure with the offending line.
type LineError struct {
	Line string // raw line text
	Num  int    // 1-based line number, 0 if unknown
	Err  error
}

func (e *LineError) Error() string {
	if e.Num > 0 {
		return fmt.Sprintf("line %d: %v", e.Num, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Line, e.Err)
}

// Unwrap returns the underlying decode error, enabling errors.Is and
// errors.As against FramingError, ArityError and cell.GrammarError.
func (e *LineError) Unwrap() error { return e.Err }

// TrailingDataError is a data-integrity warning: the line decoded
// successfully but the decoder consumed less than the full event body.
// The decoded record is still delivered; this error is reported
// separately.
type TrailingDataError struct {
	Line     string
	Num      int
	Trailing string
}

func (e *TrailingDataError) Error() string {
	return fmt.Sprintf("line %d: %d bytes of trailing data after event: %q", e.Num, len(e.Trailing), e.Trailing)
}

// WatchOp identifies the watcher operation that failed.
type WatchOp string

// Watch operations.
const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpReplay     WatchOp = "replay"
	WatchOpRotation   WatchOp = "rotation"
)

// WatchError wraps an error from the watcher with operation context.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *WatchError) Unwrap() error { return e.Err }
