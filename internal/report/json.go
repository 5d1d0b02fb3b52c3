package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/webwatch/internal/model"
)

// JSONWriter outputs run summaries in JSON format for scripts and tool
// integration.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because:
//  1. It's part of the standard library (no extra dependencies)
//  2. The summary is small; streaming or speed do not matter here
//  3. It's the same encoder that writes status.json, so the status
//     fields serialize identically in both places
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is included in the output so consumers can detect format
	// changes. Empty omits the field.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used per level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithVersion includes the tool version in the JSON output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonSummary is the wire shape of the JSON run summary.
//
// Design decision: We wrap RunSummary rather than marshalling it
// directly so output-specific fields (version) stay out of the core
// data structure.
type jsonSummary struct {
	Version    string                `json:"version,omitempty"`
	StartedAt  string                `json:"started_at"`
	FinishedAt string                `json:"finished_at"`
	Checked    int                   `json:"checked"`
	Updated    int                   `json:"updated"`
	Unchanged  int                   `json:"unchanged"`
	Errors     int                   `json:"errors"`
	Snapshot   *model.StatusSnapshot `json:"snapshot,omitempty"`
}

// Write outputs the run summary in JSON format.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	wrapped := jsonSummary{
		Version:    w.version,
		StartedAt:  summary.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: summary.FinishedAt.UTC().Format(time.RFC3339),
		Checked:    summary.Checked,
		Updated:    summary.Updated,
		Unchanged:  summary.Unchanged,
		Errors:     summary.Errors,
		Snapshot:   summary.Snapshot,
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')

	return w.output.Write(data)
}
