package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/webwatch/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for wikis, pull requests and static
// dashboards.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	w.writeSites(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("webwatch Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run Date", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", summary.Elapsed().Round(summaryElapsedPrecision).String()},
			{"Sites Checked", strconv.Itoa(summary.Checked)},
			{"Updated", strconv.Itoa(summary.Updated)},
			{"Unchanged", strconv.Itoa(summary.Unchanged)},
			{"Failed", strconv.Itoa(summary.Errors)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert reflecting the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.Errors > 0 && summary.Updated > 0:
		md.Warningf("%d site(s) changed and %d check(s) failed.", summary.Updated, summary.Errors)
	case summary.Errors > 0:
		md.Warningf("%d check(s) failed; their sites keep their previous state.", summary.Errors)
	case summary.Updated > 0:
		md.Importantf("%d site(s) changed since the last run.", summary.Updated)
	default:
		md.Tip("No changes detected.")
	}
	md.PlainText("")
}

// writeSites writes the per-site table.
func (w *MarkdownWriter) writeSites(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Sites")
	md.PlainText("")

	if summary.Snapshot == nil || len(summary.Snapshot.Sites) == 0 {
		md.PlainText("No sites were checked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Snapshot.Sites))
	for _, site := range summary.Snapshot.Sites {
		rows = append(rows, []string{
			statusEmoji(site.Status),
			site.Name,
			siteURLCell(site),
			site.LastCheck.Format("2006-01-02 15:04 MST"),
			lastChangeCell(site),
			truncateString(site.Error, 60),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Name", "URL", "Last Check", "Last Change", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webwatch](https://github.com/nao1215/webwatch)*")
}

// statusEmoji returns a visual marker for the status column.
func statusEmoji(status model.Status) string {
	switch status {
	case model.StatusUpdated:
		return "🔄 updated"
	case model.StatusUnchanged:
		return "✅ unchanged"
	case model.StatusError:
		return "❌ error"
	default:
		return string(status)
	}
}

// siteURLCell renders the URL column, keeping encrypted URLs out of the
// report.
func siteURLCell(site model.SiteStatus) string {
	if site.Encrypted {
		return "_(encrypted)_"
	}
	return "`" + truncateString(site.URL, 50) + "`"
}

// lastChangeCell renders the last-change column.
func lastChangeCell(site model.SiteStatus) string {
	if site.LastChange == nil {
		return "-"
	}
	return site.LastChange.Format("2006-01-02 15:04 MST")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
