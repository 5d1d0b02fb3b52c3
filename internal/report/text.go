package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/webwatch/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// summaryElapsedPrecision rounds the elapsed time in the header; nobody
// needs microseconds in a run summary.
const summaryElapsedPrecision = 100 * time.Millisecond

// TextWriter outputs human-readable run summaries.
// This format is designed for terminal display and cron mail.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
//  1. It works in all terminals without compatibility issues
//  2. It's easy to pipe to files or other tools
//  3. Cron mails render it as-is
type TextWriter struct {
	baseWriter

	// changesOnly hides unchanged sites from the listing. Errors and
	// updates are always shown.
	changesOnly bool

	// verbose adds hash and URL detail under each site.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithChangesOnly hides unchanged sites from the listing.
func WithChangesOnly(changesOnly bool) TextWriterOption {
	return func(w *TextWriter) {
		w.changesOnly = changesOnly
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *TextWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSites(&sb, summary)
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          WEBWATCH RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Checked: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed: %s\n", summary.Elapsed().Round(summaryElapsedPrecision)))
	sb.WriteString(fmt.Sprintf("Sites:   %d checked, %d updated, %d unchanged, %d failed\n",
		summary.Checked, summary.Updated, summary.Unchanged, summary.Errors))
	sb.WriteString("\n")
}

// writeSites writes the per-site listing.
func (w *TextWriter) writeSites(sb *strings.Builder, summary *model.RunSummary) {
	if summary.Snapshot == nil || len(summary.Snapshot.Sites) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SITES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, site := range summary.Snapshot.Sites {
		if w.changesOnly && site.Status == model.StatusUnchanged {
			continue
		}

		indicator := statusIndicator(site.Status)
		sb.WriteString(fmt.Sprintf("  [%s] %-26s %-10s %s\n",
			indicator,
			truncateString(site.Name, 26),
			statusLabel(site.Status),
			w.siteDetail(site),
		))

		if w.verbose {
			if !site.Encrypted && site.URL != "" {
				sb.WriteString(fmt.Sprintf("      url:  %s\n", site.URL))
			}
			if site.Hash != "" {
				sb.WriteString(fmt.Sprintf("      hash: %s\n", site.Hash))
			}
		}
	}
	sb.WriteString("\n")
}

// siteDetail returns the trailing column for one site row.
func (w *TextWriter) siteDetail(site model.SiteStatus) string {
	switch site.Status {
	case model.StatusUpdated:
		if site.LastChange != nil {
			return "changed " + site.LastChange.Format("2006-01-02 15:04 MST")
		}
	case model.StatusError:
		return site.Error
	case model.StatusUnchanged:
		if site.LastChange != nil {
			return "last change " + site.LastChange.Format("2006-01-02 15:04 MST")
		}
	}
	return ""
}

// writeFooter writes the closing line of the summary.
func (w *TextWriter) writeFooter(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	switch {
	case summary.Updated > 0 && summary.Errors > 0:
		sb.WriteString(fmt.Sprintf("%d site(s) changed, %d check(s) failed.\n",
			summary.Updated, summary.Errors))
	case summary.Updated > 0:
		sb.WriteString(fmt.Sprintf("%d site(s) changed since the last run.\n", summary.Updated))
	case summary.Errors > 0:
		sb.WriteString(fmt.Sprintf("No changes detected; %d check(s) failed.\n", summary.Errors))
	default:
		sb.WriteString("No changes detected.\n")
	}
}

// statusLabel returns the display form of a status for the listing.
func statusLabel(status model.Status) string {
	return cases.Title(language.English).String(string(status))
}

// statusIndicator returns a one-character marker for the status column.
func statusIndicator(status model.Status) string {
	switch status {
	case model.StatusUpdated:
		return "+"
	case model.StatusUnchanged:
		return "="
	case model.StatusError:
		return "!"
	default:
		return "?"
	}
}
