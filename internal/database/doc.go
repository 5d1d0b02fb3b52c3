// Package database provides the SQLite-backed check archive.
//
// Every completed check, whether it succeeded or failed, is appended to
// the archive as one row. The archive is what the history and diff
// commands read: it keeps the normalized content of successful checks so
// two snapshots can be compared long after the pages themselves changed.
//
// The status and history JSON files remain the contract surface for
// dashboards; the archive is a local convenience and can be disabled or
// pruned without affecting them.
package database
