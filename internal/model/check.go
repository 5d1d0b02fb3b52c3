package model

import "time"

// CheckState carries the working state of a single site check through the
// pipeline steps: decrypt fills TargetURL, fetch fills Body/ContentType/
// FetchedAt, normalize fills Content, detect fills Hash, Outcome and History.
//
// Design decision: the pipeline operates on one shared mutable state value
// per site instead of passing step-specific inputs and outputs around. This
// mirrors how the steps actually relate (each consumes what the previous one
// produced) and keeps the Step interface uniform.
type CheckState struct {
	// Site is the configuration entry being checked. Never modified.
	Site Site

	// Prior is this site's entry in the previous status snapshot, or nil on
	// the site's first observation.
	Prior *SiteStatus

	// TargetURL is the plaintext URL to fetch. Equal to Site.URL for
	// unencrypted sites, the decrypted form otherwise.
	TargetURL string

	// FetchedAt is when the fetch completed (UTC).
	FetchedAt time.Time

	// Body is the raw response body, transcoded to UTF-8.
	Body []byte

	// ContentType is the response's media type.
	ContentType string

	// Content is the normalized text extracted from Body.
	Content string

	// Hash is the fingerprint of Content.
	Hash string

	// Outcome is the SiteStatus this check produced. Populated by the
	// detect step on success, or by the monitor on step failure.
	Outcome SiteStatus

	// History is the history entry this check produced, nil when the check
	// failed.
	History *HistoryEntry
}
