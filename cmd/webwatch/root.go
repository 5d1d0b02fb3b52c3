// Package main provides the entry point for the webwatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webwatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webwatch",
		Short: "Detect content changes on watched web pages",
		Long: `webwatch checks a set of web pages and reports which of them changed
since the last run.

Each run fetches every configured site, normalizes the page content so
that embedded timestamps and visit counters do not count as changes, and
compares a fingerprint against the previous run. Results are written to
JSON files that dashboards can poll.

Site URLs can be stored encrypted in the sites file; set WEBWATCH_SECRET
to the passphrase used with 'webwatch encrypt'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewEncryptCmd())
	cmd.AddCommand(NewDecryptCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewDiffCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
