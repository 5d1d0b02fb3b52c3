package normalizer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// nonVisibleMatcher selects elements whose text never counts as page content.
// Removed before extraction so script bodies and inline styles cannot leak
// into the fingerprint.
var nonVisibleMatcher = cascadia.MustCompile("script, style, noscript, template")

// Volatile-content patterns stripped during canonicalization.
//
// All three removal patterns are anchored with \b on both ends: a removed
// span is always flanked by non-word characters (or the string edge), so a
// removal can never splice two digit runs together into a fresh date or
// time. Without the anchors, removing the time from "12345:5544-66-77"
// would leave "12344-66-77" and hand the next pass a brand-new date match.
//
// The anchors do not make a single pass complete. counterPattern matches
// across whitespace, so a removal can leave an earlier number next to a
// surviving counter word: stripping the inner "5 views" from
// "3 5 views views" leaves "3 views", a fresh match the scan has already
// moved past. canonicalize repeats the strip passes until the text stops
// changing.
var (
	// whitespacePattern matches runs of whitespace, including Unicode
	// spaces so that &nbsp; collapses like a regular space.
	whitespacePattern = regexp.MustCompile(`[\s\p{Zs}]+`)

	// datePattern matches YYYY-MM-DD dates.
	datePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

	// timePattern matches H:MM and H:MM:SS clock times.
	timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\b`)

	// counterPattern matches "<number> views/comments/likes" phrases,
	// singular or plural, any case.
	counterPattern = regexp.MustCompile(`(?i)\b\d+[\s\p{Zs}]*(?:views?|comments?|likes?)\b`)
)

// Normalizer extracts and canonicalizes the watched portion of a page.
// Selectors are compiled once at construction; a Normalizer is safe for
// concurrent use.
type Normalizer struct {
	// selector restricts extraction to matching nodes. Nil means the whole
	// document.
	selector cascadia.Selector

	// excludes are removed from the document, in order, before extraction.
	excludes []cascadia.Selector
}

// New compiles the site's selectors into a Normalizer.
//
// Design decision: selectors are compiled here, at configuration-load time,
// rather than inside Normalize. goquery's string-based Find panics on an
// invalid selector, and a bad selector is an operator mistake that should
// fail the run up front with a clear message, not blow up mid-check.
func New(selector string, excludes []string) (*Normalizer, error) {
	n := &Normalizer{}

	if selector != "" {
		compiled, err := cascadia.Compile(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid content selector %q: %w", selector, err)
		}
		n.selector = compiled
	}

	for _, ex := range excludes {
		if ex == "" {
			continue
		}
		compiled, err := cascadia.Compile(ex)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude selector %q: %w", ex, err)
		}
		n.excludes = append(n.excludes, compiled)
	}

	return n, nil
}

// Normalize parses the markup, applies the selectors and returns the
// canonical text. The result is a pure function of the input bytes and the
// construction-time selectors.
func (n *Normalizer) Normalize(markup []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	doc.FindMatcher(nonVisibleMatcher).Remove()
	for _, ex := range n.excludes {
		doc.FindMatcher(ex).Remove()
	}

	root := doc.Selection
	if n.selector != nil {
		root = doc.FindMatcher(n.selector)
	}

	// Matched nodes are joined with a space so text from adjacent nodes
	// cannot run together into one token.
	var parts []string
	root.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})

	return canonicalize(strings.Join(parts, " ")), nil
}

// canonicalize collapses whitespace, strips volatile substrings and trims.
// Idempotent: canonicalize(canonicalize(s)) == canonicalize(s) for all s.
func canonicalize(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")

	// Stripping can uncover new counter matches (see the pattern comments),
	// so the passes run to a fixpoint. Every changed iteration shortens the
	// text, which bounds the loop.
	for {
		stripped := datePattern.ReplaceAllString(text, "")
		stripped = timePattern.ReplaceAllString(stripped, "")
		stripped = counterPattern.ReplaceAllString(stripped, "")
		stripped = whitespacePattern.ReplaceAllString(stripped, " ")
		if stripped == text {
			break
		}
		text = stripped
	}
	return strings.TrimSpace(text)
}
