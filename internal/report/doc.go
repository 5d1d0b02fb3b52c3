// Package report renders run summaries for people and tools: plain text
// for the terminal, Markdown for docs and dashboards, JSON for scripts.
package report
