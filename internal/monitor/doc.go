// Package monitor drives one complete check run: it walks the
// configured sites in order, executes the check pipeline for each,
// collects the new status snapshot, and flushes all results at the end.
//
// Checks are strictly sequential. One failing site is recorded with
// status "error" and never stops the run; only run-level problems
// (unreadable state files, cancellation, unwritable results) abort it.
package monitor
