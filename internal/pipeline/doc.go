// Package pipeline runs the per-site check as an ordered sequence of
// steps: resolve the URL, fetch the page, normalize the content, and
// classify the result against the previous snapshot.
//
// Each step reads what earlier steps wrote into the shared check state.
// The pipeline stops at the first failing step; the monitor records that
// failure as the site's outcome and moves on to the next site, so one
// broken site never affects the others.
package pipeline
