package model

import "time"

// RunSummary describes one completed check run: what was checked, what
// changed, and the snapshot that was written. The report writers render
// it and the notifier reads UpdatedSites from it.
type RunSummary struct {
	// StartedAt is when the run began (UTC).
	StartedAt time.Time

	// FinishedAt is when the run completed (UTC).
	FinishedAt time.Time

	// Checked is the number of sites the run processed.
	Checked int

	// Updated is the number of sites whose content changed.
	Updated int

	// Unchanged is the number of sites whose content did not change.
	Unchanged int

	// Errors is the number of sites whose check failed.
	Errors int

	// Snapshot is the status snapshot produced by the run.
	Snapshot *StatusSnapshot

	// UpdatedSites lists the sites that changed, in check order.
	UpdatedSites []SiteStatus
}

// Elapsed returns the wall-clock duration of the run.
func (r *RunSummary) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasChanges reports whether any site changed during the run.
func (r *RunSummary) HasChanges() bool {
	return r.Updated > 0
}
