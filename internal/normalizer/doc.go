// Package normalizer turns fetched markup into canonical text so that
// fingerprints only change when a page's substantive content changes.
//
// Normalization extracts visible text (optionally restricted to a CSS
// selector, with excluded sub-structures removed first) and then strips
// volatile substrings: dates, clock times, and view/comment/like counters.
// Server-rendered pages embed these even when nothing meaningful changed, and
// without stripping them every check would classify as updated.
//
// Normalization is idempotent: applying it to its own output is a no-op.
// The detector relies on this, and canonicalization re-runs its strip
// passes until the text stabilizes to preserve it (see the pattern
// comments in normalizer.go).
package normalizer
