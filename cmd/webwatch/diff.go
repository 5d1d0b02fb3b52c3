package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

// diffContext is how many characters of an unchanged run to keep on each
// side of a change.
const diffContext = 40

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <site-id>",
		Short: "Show what changed between the last two checks of a site",
		Long: `Diff compares the two most recent successful checks of a site and
shows the differences in the normalized page content.

The comparison uses content from the check archive, so the archive must
hold at least two successful checks for the site. Failed checks are
skipped.

Examples:
  # What changed on my-blog between the last two runs?
  webwatch diff my-blog

  # Without terminal colors, for piping into a file
  webwatch diff my-blog --plain`,
		Args: cobra.ExactArgs(1),
		RunE: runDiffCmd,
	}

	cmd.Flags().String("archive-dir", "",
		"Directory for the check archive database (default: XDG data dir)")
	cmd.Flags().Bool("plain", false,
		"Mark changes with [-..-] and {+..+} instead of terminal colors")

	return cmd
}

// runDiffCmd executes the diff command.
func runDiffCmd(cmd *cobra.Command, args []string) error {
	siteID := args[0]

	db, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots, err := db.LastSnapshots(context.Background(), siteID, 2)
	if err != nil {
		return fmt.Errorf("failed to read archived snapshots: %w", err)
	}
	if len(snapshots) < 2 {
		return fmt.Errorf("at least 2 successful checks are required for a diff (found %d for %s)",
			len(snapshots), siteID)
	}

	// LastSnapshots returns newest first.
	current, previous := snapshots[0], snapshots[1]

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Diff for %s\n", siteID)
	fmt.Fprintf(out, "  previous: %s\n", previous.CheckedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  current:  %s\n\n", current.CheckedAt.Format("2006-01-02 15:04:05"))

	if previous.Content == current.Content {
		fmt.Fprintln(out, "No differences.")
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previous.Content, current.Content, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return err
	}
	if plain {
		fmt.Fprintln(out, formatDiff(diffs))
		return nil
	}
	fmt.Fprintln(out, dmp.DiffPrettyText(diffs))

	return nil
}

// formatDiff renders a diff without terminal colors. Deletions appear as
// [-text-], insertions as {+text+}. Long unchanged runs are shortened to
// a little context around each change.
func formatDiff(diffs []diffmatchpatch.Diff) string {
	var sb strings.Builder
	for i, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(shortenContext(d.Text, i == 0, i == len(diffs)-1))
		}
	}
	return sb.String()
}

// shortenContext trims the middle out of an unchanged text run, keeping
// diffContext characters next to the surrounding changes.
func shortenContext(text string, first, last bool) string {
	runes := []rune(text)
	if len(runes) <= 2*diffContext+5 {
		return text
	}

	head := string(runes[:diffContext])
	tail := string(runes[len(runes)-diffContext:])
	switch {
	case first:
		return "..." + tail
	case last:
		return head + "..."
	default:
		return head + " ... " + tail
	}
}
