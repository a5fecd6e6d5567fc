package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wowlog/wowlog-go/pkg/combatlog"
	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

var (
	// tail flags
	tailLogDir     string
	tailFormat     string
	tailTypes      []string
	tailRaw        bool
	tailReplayLast int
	tailWait       bool
	tailSchemas    []string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Monitor the live combat log and output events",
	Long: `Monitor the newest combat log file in real-time and output decoded
events as they are written.

Events are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

Examples:
  # Monitor with default settings (auto-detect log directory)
  wowlog tail

  # Specify the log directory
  wowlog tail --log-dir "C:\Program Files (x86)\World of Warcraft\_retail_\Logs"

  # Only damage and heal events
  wowlog tail --types spell_damage,spell_heal

  # Human-readable output
  wowlog tail --format pretty

  # Replay the last 100 lines before tailing; 0 replays the whole file
  wowlog tail --replay-last 100

  # Pipe to jq for filtering
  wowlog tail | jq 'select(.type == "spell_damage")'`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailLogDir, "log-dir", "d", "",
		"Combat log directory (auto-detected if not specified)")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringSliceVarP(&tailTypes, "types", "t", nil,
		"Event types to show (comma-separated: emote,spell_cast_success,spell_damage,spell_heal)")
	tailCmd.Flags().BoolVar(&tailRaw, "raw", false,
		"Include raw log lines in output")
	tailCmd.Flags().IntVar(&tailReplayLast, "replay-last", -1,
		"Replay last N lines before tailing (-1 = disabled, 0 = from start)")
	tailCmd.Flags().BoolVar(&tailWait, "wait", false,
		"Wait for a combat log to appear instead of failing immediately")
	tailCmd.Flags().StringSliceVar(&tailSchemas, "schema", nil,
		"YAML schema files declaring additional event kinds")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !ValidFormats[tailFormat] {
		return fmt.Errorf("unknown format: %s", tailFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []combatlog.WatchOption{
		combatlog.WithLogDir(tailLogDir),
		combatlog.WithIncludeRawLine(tailRaw),
		combatlog.WithWaitForLogs(tailWait),
	}
	if len(tailTypes) > 0 {
		include := make([]event.Type, 0, len(tailTypes))
		for _, t := range tailTypes {
			include = append(include, event.Type(t))
		}
		opts = append(opts, combatlog.WithIncludeTypes(include...))
	}
	if tailReplayLast == 0 {
		opts = append(opts, combatlog.WithReplayFromStart())
	} else if tailReplayLast > 0 {
		opts = append(opts, combatlog.WithReplayLastN(tailReplayLast))
	}
	custom, err := buildParser(tailSchemas)
	if err != nil {
		return err
	}
	if custom != nil {
		opts = append(opts, combatlog.WithParser(custom))
	}

	watcher, err := combatlog.NewWatcherWithOptions(opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	records, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		select {
		case rec, ok := <-records:
			if !ok {
				return nil // channel closed
			}
			if err := OutputRecord(tailFormat, rec, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil // channel closed
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
