package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/webwatch/internal/config"
	"github.com/nao1215/webwatch/internal/database"
	"github.com/nao1215/webwatch/internal/model"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command reads the check archive written by previous runs.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [site-id]",
		Short: "Show archived checks for a site",
		Long: `History lists the archived checks recorded by previous runs.

Without arguments it lists every site present in the archive. With a
site id it prints that site's checks, newest first.

The archive lives in the XDG data directory unless --archive-dir points
elsewhere. Runs started with --no-archive leave no trace here.

Examples:
  # List sites present in the archive
  webwatch history

  # Last 20 checks for one site
  webwatch history my-blog --limit 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of checks to show (0 = all)")
	cmd.Flags().String("archive-dir", "",
		"Directory for the check archive database (default: XDG data dir)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 0 {
		return listArchivedSites(ctx, cmd, db)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listSiteHistory(ctx, cmd, db, args[0], limit)
}

// openArchive opens the check archive read-only at the directory from
// the --archive-dir flag, falling back to the XDG data directory.
func openArchive(cmd *cobra.Command) (*database.WatchDB, error) {
	archiveDir, err := cmd.Flags().GetString("archive-dir")
	if err != nil {
		return nil, err
	}
	if archiveDir == "" {
		archiveDir = config.XDGDataDir()
	}

	db, err := database.Open(archiveDir, database.ReadOnlyOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open check archive (run 'webwatch check' first): %w", err)
	}
	return db, nil
}

// listArchivedSites lists every site id present in the archive.
func listArchivedSites(ctx context.Context, cmd *cobra.Command, db *database.WatchDB) error {
	sites, err := db.Sites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list archived sites: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sites) == 0 {
		fmt.Fprintln(out, "No archived checks found.")
		fmt.Fprintln(out, "\nUse 'webwatch check' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Archived sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'webwatch history <site-id>' to see the checks for a site.")

	return nil
}

// listSiteHistory prints a site's archived checks, newest first.
func listSiteHistory(ctx context.Context, cmd *cobra.Command, db *database.WatchDB, siteID string, limit int) error {
	records, err := db.History(ctx, siteID, limit)
	if err != nil {
		return fmt.Errorf("failed to read check history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No archived checks found for %s\n", siteID)
		fmt.Fprintln(out, "\nUse 'webwatch history' to list the sites present in the archive.")
		return nil
	}

	fmt.Fprintf(out, "Check history for %s (%d checks):\n\n", siteID, len(records))
	fmt.Fprintf(out, "  %-20s  %-10s  %-8s  %s\n", "Date", "Status", "Changed", "Detail")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 74))

	for _, rec := range records {
		detail := rec.Hash
		if rec.Status == model.StatusError {
			detail = rec.Error
		}
		changed := ""
		if rec.ChangeDetected {
			changed = "yes"
		}
		fmt.Fprintf(out, "  %-20s  %-10s  %-8s  %s\n",
			rec.CheckedAt.Format("2006-01-02 15:04:05"),
			rec.Status,
			changed,
			detail,
		)
	}

	return nil
}
