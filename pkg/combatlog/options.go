package combatlog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// WatchOption configures Watch behavior using the functional options
// pattern.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	logDir             string
	pollInterval       time.Duration
	includeRawLine     bool
	replay             ReplayConfig
	maxReplayLines     int
	maxReplayBytes     int  // maximum total bytes for replay (0 = unlimited)
	waitForLogs        bool // wait for log files to appear if the directory is empty
	logger             *slog.Logger
	filter             *compiledFilter
	parser             Parser
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		pollInterval:   2 * time.Second,
		maxReplayLines: DefaultMaxReplayLastN,
		maxReplayBytes: 64 * 1024 * 1024, // combat logs grow fast; 64MB default
		parser:         DefaultParser{},
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *watchConfig) validate() error {
	if c.replay.Mode == ReplayLastN && c.replay.LastN < 0 {
		return fmt.Errorf("replay LastN must be non-negative, got %d", c.replay.LastN)
	}
	if c.replay.Mode == ReplayLastN {
		maxLines := c.maxReplayLines
		if maxLines == 0 {
			maxLines = DefaultMaxReplayLastN
		}
		if maxLines > 0 && c.replay.LastN > maxLines {
			return fmt.Errorf("replay LastN (%d) exceeds maximum of %d", c.replay.LastN, maxLines)
		}
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.maxReplayBytes < 0 {
		return fmt.Errorf("maxReplayBytes must be non-negative, got %d", c.maxReplayBytes)
	}
	return nil
}

// WithLogDir sets the combat log directory.
// If not set, auto-detects from default install locations.
// Can also be set via the WOWLOG_LOGDIR environment variable.
func WithLogDir(dir string) WatchOption {
	return func(c *watchConfig) {
		c.logDir = dir
	}
}

// WithPollInterval sets how often to check for new/rotated log files.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithWaitForLogs configures whether to wait for log files to appear.
// When true, if the log directory exists but has no combat logs yet, the
// watcher polls at pollInterval until one appears (useful for starting
// the watcher before the game launches). When false (default),
// ErrNoLogFiles is returned immediately.
func WithWaitForLogs(wait bool) WatchOption {
	return func(c *watchConfig) {
		c.waitForLogs = wait
	}
}

// WithIncludeRawLine includes the original log line in Record.RawLine.
// Default: false.
func WithIncludeRawLine(include bool) WatchOption {
	return func(c *watchConfig) {
		c.includeRawLine = include
	}
}

// WithReplay configures replay behavior for existing log lines.
// Default: ReplayNone (only new lines).
func WithReplay(config ReplayConfig) WatchOption {
	return func(c *watchConfig) {
		c.replay = config
	}
}

// WithReplayFromStart reads from the beginning of the log file.
func WithReplayFromStart() WatchOption {
	return func(c *watchConfig) {
		c.replay = ReplayConfig{Mode: ReplayFromStart}
	}
}

// WithReplayLastN reads the last N non-empty lines before tailing.
// Empty lines are skipped and not counted towards N.
func WithReplayLastN(n int) WatchOption {
	return func(c *watchConfig) {
		c.replay = ReplayConfig{Mode: ReplayLastN, LastN: n}
	}
}

// WithMaxReplayLines sets the maximum lines for ReplayLastN mode.
// 0 uses the default (10000). Set to -1 for unlimited (not recommended).
func WithMaxReplayLines(max int) WatchOption {
	return func(c *watchConfig) {
		c.maxReplayLines = max
	}
}

// WithMaxReplayBytes sets the maximum total bytes to read during replay.
// Set to 0 for unlimited (not recommended). If the limit is exceeded,
// ErrReplayLimitExceeded is reported.
func WithMaxReplayBytes(max int) WatchOption {
	return func(c *watchConfig) {
		c.maxReplayBytes = max
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithParser sets a custom parser for log line parsing.
// If p is nil, this option has no effect (the default parser remains
// active).
func WithParser(p Parser) WatchOption {
	return func(c *watchConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParsers combines multiple parsers using ChainFirst mode, so each
// line is decoded by the first parser that recognizes it.
func WithParsers(parsers ...Parser) WatchOption {
	return func(c *watchConfig) {
		if len(parsers) > 0 {
			c.parser = &ParserChain{
				Mode:    ChainFirst,
				Parsers: parsers,
			}
		}
	}
}

// WithIncludeTypes filters records to only include the specified event
// types. If called multiple times, only the last call takes effect.
func WithIncludeTypes(types ...event.Type) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = make(map[event.Type]struct{}, len(types))
		for _, t := range types {
			c.filter.include[t] = struct{}{}
		}
	}
}

// WithExcludeTypes filters out records of the specified event types.
// Exclude takes precedence over include.
func WithExcludeTypes(types ...event.Type) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = make(map[event.Type]struct{}, len(types))
		for _, t := range types {
			c.filter.exclude[t] = struct{}{}
		}
	}
}

// WithFilter sets both include and exclude type filters.
// Exclude takes precedence over include.
func WithFilter(include, exclude []event.Type) WatchOption {
	return func(c *watchConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// ParseOption configures ParseReader/ParseFile behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for the line driver.
type parseConfig struct {
	filter         *compiledFilter
	includeRawLine bool
	stopOnError    bool
	fatalFraming   bool
	maxLineBytes   int
	logger         *slog.Logger
	parser         Parser
}

// defaultParseConfig returns a parseConfig with sensible defaults.
func defaultParseConfig() *parseConfig {
	return &parseConfig{
		maxLineBytes: DefaultMaxLineBytes,
		parser:       DefaultParser{},
	}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseIncludeTypes filters records to only include the specified
// event types.
func WithParseIncludeTypes(types ...event.Type) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = make(map[event.Type]struct{}, len(types))
		for _, t := range types {
			c.filter.include[t] = struct{}{}
		}
	}
}

// WithParseExcludeTypes filters out records of the specified event types.
func WithParseExcludeTypes(types ...event.Type) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = make(map[event.Type]struct{}, len(types))
		for _, t := range types {
			c.filter.exclude[t] = struct{}{}
		}
	}
}

// WithParseFilter sets both include and exclude type filters.
func WithParseFilter(include, exclude []event.Type) ParseOption {
	return func(c *parseConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithParseIncludeRawLine includes the original log line in
// Record.RawLine.
func WithParseIncludeRawLine(include bool) ParseOption {
	return func(c *parseConfig) {
		c.includeRawLine = include
	}
}

// WithParseParser sets a custom parser for ParseReader/ParseFile.
// If p is nil, this option has no effect (the default parser remains
// active).
func WithParseParser(p Parser) ParseOption {
	return func(c *parseConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParseParsers combines multiple parsers using ChainFirst mode.
func WithParseParsers(parsers ...Parser) ParseOption {
	return func(c *parseConfig) {
		if len(parsers) > 0 {
			c.parser = &ParserChain{
				Mode:    ChainFirst,
				Parsers: parsers,
			}
		}
	}
}

// WithParseStopOnError stops the driver at the first per-line decode
// failure instead of reporting it and continuing.
// Default: false (report malformed lines and continue).
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}

// WithParseFatalFraming stops the driver when a line fails framing, on
// the grounds that a timestamp that does not even frame indicates the
// file is not a combat log at all. Default: false (framing failures are
// per-line errors like any other).
func WithParseFatalFraming(fatal bool) ParseOption {
	return func(c *parseConfig) {
		c.fatalFraming = fatal
	}
}

// WithParseMaxLineBytes sets the maximum accepted line length in bytes.
// Lines longer than this fail the run with bufio.ErrTooLong.
// 0 uses the default (1MB).
func WithParseMaxLineBytes(max int) ParseOption {
	return func(c *parseConfig) {
		if max > 0 {
			c.maxLineBytes = max
		}
	}
}

// WithParseLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithParseLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}
