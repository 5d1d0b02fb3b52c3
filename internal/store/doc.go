// Package store persists the two contract files consumed by the dashboard:
// status.json (the latest snapshot per site) and history.json (a bounded
// per-site log of completed checks).
//
// Both stores follow the same lifecycle: state is loaded once at run start,
// accumulated in memory by the run, and written back exactly once at run
// end. Writes replace the whole file via a temp file and rename, so a crash
// mid-run leaves the previous state intact and readers never observe a torn
// file.
//
// A missing file is a normal first-run condition and loads as empty state.
// An existing file that fails to parse is an error: silently starting from
// empty would reclassify every site as a cold start and destroy last_change
// continuity on the next write.
package store
