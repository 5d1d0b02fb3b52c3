// Package model defines the core data structures used throughout webwatch.
//
// This package contains the following main types:
//   - Site: A monitored page as configured in sites.json
//   - SiteStatus: The latest check outcome for one site
//   - StatusSnapshot: The aggregate state written to status.json
//   - HistoryEntry: One check outcome in a site's bounded history
//   - CheckState: Per-site working state threaded through the check pipeline
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (fetcher, detector, store, monitor, report)
// need these types, so centralizing them prevents import cycles.
//
// The JSON field names and status enum values in this package are consumed by
// an external dashboard. They are a compatibility contract: renaming a field
// or an enum string is a breaking change for every consumer of status.json
// and history.json.
package model
