// Command wowlog parses and monitors World of Warcraft combat logs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wowlog",
	Short: "Parse and monitor World of Warcraft combat logs",
	Long: `wowlog decodes World of Warcraft combat log files into typed events.

Use "wowlog parse" to decode existing log files (gzipped archives
included) and "wowlog tail" to monitor the live combat log. Events are
emitted as JSON Lines by default for easy processing with tools like jq.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Print per-line warnings to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
