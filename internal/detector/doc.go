// Package detector fingerprints normalized page text and classifies each
// check against the site's prior state.
//
// The fingerprint is a 128-bit murmur3 digest, hex encoded. Murmur3 is fast
// and deterministic, which is all change detection needs; it is not
// collision-resistant against an adversary, and that is an accepted property
// rather than a gap. Nobody attacks their own watchlist.
//
// Classification rules:
//   - no prior fingerprint: unchanged (the first observation establishes the
//     baseline, it cannot witness a change)
//   - prior fingerprint differs: updated, last_change set to the check time
//   - prior fingerprint equal: unchanged, last_change carried over
package detector
