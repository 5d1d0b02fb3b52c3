package model

import "time"

// HistoryEntry is one completed check in a site's history, as persisted in
// history.json. Only successful checks produce entries; failures are visible
// in the current status but leave no history trail.
type HistoryEntry struct {
	// Timestamp is when the check ran (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Status is the classification of the check (unchanged or updated;
	// error outcomes never reach the history).
	Status Status `json:"status"`

	// Hash is the 32-character hex fingerprint computed by the check.
	Hash string `json:"hash"`

	// ChangeDetected reports whether this check observed a content change.
	ChangeDetected bool `json:"change_detected"`
}

// History maps site ids to their check histories, most-recent-last.
// This is the top-level shape of history.json.
type History map[string][]HistoryEntry
