package model

import "time"

// Status classifies the latest check of a site.
//
// Design decision: We use string constants rather than iota-based integers
// because these values are serialized verbatim into status.json and
// history.json. The dashboard matches on the literal strings, so the Go
// representation and the wire representation must be the same thing.
type Status string

const (
	// StatusUnchanged means the check succeeded and the content fingerprint
	// matches the previous one. The first ever successful check of a site is
	// also unchanged: with no prior fingerprint there is nothing to compare
	// against, so it establishes the baseline rather than reporting a change.
	StatusUnchanged Status = "unchanged"

	// StatusUpdated means the check succeeded and the content fingerprint
	// differs from the previous one.
	StatusUpdated Status = "updated"

	// StatusError means the check failed before a fingerprint could be
	// computed (decrypt failure, network failure, non-2xx response).
	StatusError Status = "error"
)

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known status values.
// Used when reading persisted state back in.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnchanged, StatusUpdated, StatusError:
		return true
	}
	return false
}

// SiteStatus is the latest check outcome for one site, as persisted in
// status.json. Field names are part of the dashboard contract.
type SiteStatus struct {
	// ID is the site's unique key, copied from the configuration.
	ID string `json:"id"`

	// Name is the site's display label, copied from the configuration.
	Name string `json:"name"`

	// URL is the site URL as displayed. For encrypted sites this is the
	// original ciphertext form, never the decrypted plaintext.
	URL string `json:"url"`

	// Status is the classification of this check.
	Status Status `json:"status"`

	// LastCheck is when this check ran (UTC).
	LastCheck time.Time `json:"last_check"`

	// LastChange is when a content change was last detected for this site.
	// Absent until the first detected change; carried over unchanged when a
	// check finds the same content as before.
	LastChange *time.Time `json:"last_change,omitempty"`

	// Hash is the 32-character hex fingerprint of the normalized content.
	// Absent when the check failed.
	Hash string `json:"hash,omitempty"`

	// Error is the failure message. Absent when the check succeeded.
	Error string `json:"error,omitempty"`

	// Encrypted mirrors the site's encrypted flag so the dashboard can
	// label confidential entries without consulting sites.json.
	Encrypted bool `json:"encrypted"`
}

// StatusSnapshot is the aggregate persisted in status.json. A run replaces
// the whole snapshot; entries are never merged with previous state.
type StatusSnapshot struct {
	// LastUpdated is the maximum LastChange across all sites.
	// Absent if no site has ever changed.
	LastUpdated *time.Time `json:"last_updated,omitempty"`

	// Sites holds one entry per configured site, in configuration order.
	Sites []SiteStatus `json:"sites"`
}

// ComputeLastUpdated recomputes LastUpdated from the site entries.
// Call it after the Sites slice reaches its final state for the run.
func (s *StatusSnapshot) ComputeLastUpdated() {
	var latest *time.Time
	for i := range s.Sites {
		lc := s.Sites[i].LastChange
		if lc == nil {
			continue
		}
		if latest == nil || lc.After(*latest) {
			latest = lc
		}
	}
	s.LastUpdated = latest
}

// FindSite returns the status entry for the given site id, or nil if the
// snapshot has none. Used to look up prior state during classification.
func (s *StatusSnapshot) FindSite(id string) *SiteStatus {
	for i := range s.Sites {
		if s.Sites[i].ID == id {
			return &s.Sites[i]
		}
	}
	return nil
}
