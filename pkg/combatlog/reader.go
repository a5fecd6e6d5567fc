package combatlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// DefaultMaxLineBytes is the default maximum line length for the drivers.
const DefaultMaxLineBytes = 1024 * 1024

// Handler receives the per-line outcomes of a driver run. Exactly one of
// rec and err is non-nil per call, except for trailing-data warnings
// where err is a *TrailingDataError delivered after the record it refers
// to (or alone, when the type filter suppressed that record). Returning
// a non-nil error stops the run; ErrStop stops it without the driver
// reporting a failure.
type Handler func(rec *Record, err error) error

// ErrStop can be returned from a Handler to stop a driver run early
// without it being treated as a failure.
var ErrStop = errors.New("stop")

// Stats summarizes a driver run.
type Stats struct {
	// Lines is the number of non-empty lines seen.
	Lines int
	// Records is the number of decoded records delivered, unsupported
	// included.
	Records int
	// Unsupported is the number of records with an unrecognized event tag.
	Unsupported int
	// Failures is the number of per-line decode failures.
	Failures int
	// Trailing is the number of lines that decoded with unconsumed input.
	Trailing int
}

// ParseReader feeds lines from r through the decode pipeline and reports
// each outcome to h.
//
// Decode failures are delivered to the handler as *LineError and the run
// continues, unless WithParseStopOnError or WithParseFatalFraming says
// otherwise. A line that decodes with unconsumed input is delivered
// normally and then flagged with a *TrailingDataError. Records whose
// event type is rejected by the configured filter are counted but not
// delivered.
//
// The returned Stats covers the whole run, including lines the filter
// suppressed. The returned error is nil on a clean run (handler-stopped
// runs via ErrStop included); it is the handler's error, the first fatal
// decode failure, a scanner failure, or the context error.
func ParseReader(ctx context.Context, r io.Reader, h Handler, opts ...ParseOption) (Stats, error) {
	cfg := applyParseOptions(opts)
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	if h == nil {
		h = func(*Record, error) error { return nil }
	}

	var stats Stats
	sc := bufio.NewScanner(r)
	// The scanner's limit is the larger of max and the initial capacity,
	// so the initial buffer must not exceed the configured cap.
	bufCap := 64 * 1024
	if cfg.maxLineBytes < bufCap {
		bufCap = cfg.maxLineBytes
	}
	sc.Buffer(make([]byte, 0, bufCap), cfg.maxLineBytes)

	num := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		num++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		result, err := cfg.parser.ParseLine(ctx, line)
		if err != nil {
			stats.Failures++
			lineErr := &LineError{Line: line, Num: num, Err: err}
			if herr := h(nil, lineErr); herr != nil {
				return stats, stopErr(herr)
			}
			if cfg.stopOnError || (cfg.fatalFraming && isFraming(err)) {
				return stats, lineErr
			}
			continue
		}
		if !result.Matched {
			continue
		}

		for _, rec := range result.Records {
			stats.Records++
			if rec.Type == event.TypeUnsupported {
				stats.Unsupported++
			}
			rec.Num = num
			if cfg.includeRawLine {
				rec.RawLine = line
			}

			trailing := rec.Trailing != "" && rec.Type != event.TypeUnsupported
			if trailing {
				stats.Trailing++
			}
			if cfg.filter.Allows(rec.Type) {
				if herr := h(rec, nil); herr != nil {
					return stats, stopErr(herr)
				}
			}
			// Trailing data is a data-integrity signal independent of the
			// type filter; the warning is delivered even when the record
			// itself was suppressed.
			if trailing {
				warn := &TrailingDataError{Line: line, Num: num, Trailing: rec.Trailing}
				log.Debug("trailing data after event", "line", num, "bytes", len(rec.Trailing))
				if herr := h(nil, warn); herr != nil {
					return stats, stopErr(herr)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading lines: %w", err)
	}
	log.Debug("driver run complete",
		"lines", stats.Lines, "records", stats.Records,
		"unsupported", stats.Unsupported, "failures", stats.Failures)
	return stats, nil
}

// ParseFile opens a combat log file and drives ParseReader over it.
// Files ending in ".gz" are transparently decompressed; rotated combat
// logs are commonly archived that way.
func ParseFile(ctx context.Context, path string, h Handler, opts ...ParseOption) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Stats{}, fmt.Errorf("opening gzip log file: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return ParseReader(ctx, r, h, opts...)
}

func stopErr(err error) error {
	if err == ErrStop {
		return nil
	}
	return err
}

func isFraming(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
