package pipeline

import (
	"context"
	"errors"

	"github.com/nao1215/webwatch/internal/cipher"
	"github.com/nao1215/webwatch/internal/detector"
	"github.com/nao1215/webwatch/internal/fetcher"
	"github.com/nao1215/webwatch/internal/model"
	"github.com/nao1215/webwatch/internal/normalizer"
)

// ErrNoDecryptionKey is returned when a site is marked encrypted but no
// passphrase was configured for the run.
var ErrNoDecryptionKey = errors.New(
	"no decryption key available; set WEBWATCH_SECRET or use --insecure-default-key")

// ResolveStep produces the plaintext URL to fetch. For unencrypted sites
// this is a straight copy; for encrypted sites the configured URL is
// decrypted with the run's cipher.
//
// Design decision: Decryption is a pipeline step rather than a loading
// concern because a bad passphrase must fail only the affected site. If
// URLs were decrypted up front, one undecryptable entry would abort the
// whole run before any site was checked.
type ResolveStep struct {
	// urlCipher decrypts encrypted site URLs. May be nil when no
	// passphrase was configured; encrypted sites then fail with
	// ErrNoDecryptionKey while plaintext sites proceed normally.
	urlCipher *cipher.URLCipher
}

// NewResolveStep creates a URL resolution step.
func NewResolveStep(urlCipher *cipher.URLCipher) *ResolveStep {
	return &ResolveStep{urlCipher: urlCipher}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve_url"
}

// Do resolves the target URL into state.TargetURL.
func (s *ResolveStep) Do(_ context.Context, state *model.CheckState) error {
	if !state.Site.Encrypted {
		state.TargetURL = state.Site.URL
		return nil
	}

	if s.urlCipher == nil {
		return ErrNoDecryptionKey
	}

	plaintext, err := s.urlCipher.Decrypt(state.Site.URL)
	if err != nil {
		return err
	}
	state.TargetURL = plaintext
	return nil
}

// FetchStep downloads the target page and stores the UTF-8 body in the
// check state.
type FetchStep struct {
	fetcher *fetcher.Fetcher
}

// NewFetchStep creates a fetch step using the given fetcher.
func NewFetchStep(f *fetcher.Fetcher) *FetchStep {
	return &FetchStep{fetcher: f}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches state.TargetURL and records body, content type and fetch
// time. Transport failures and non-2xx responses surface as *FetchError.
func (s *FetchStep) Do(ctx context.Context, state *model.CheckState) error {
	result, err := s.fetcher.Fetch(ctx, state.TargetURL)
	if err != nil {
		return err
	}

	state.Body = result.Body
	state.ContentType = result.ContentType
	state.FetchedAt = result.FetchedAt
	return nil
}

// NormalizeStep reduces the fetched markup to canonical visible text.
//
// Design decision: The step compiles the site's selectors on each run
// instead of caching normalizers per site. Reasons:
//  1. Selector compilation is far cheaper than the fetch it follows
//  2. The monitor checks each site exactly once per run
//  3. Config loading already rejected invalid selectors, so a compile
//     failure here means the configuration changed mid-run and deserves
//     the error
type NormalizeStep struct{}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do normalizes state.Body into state.Content.
func (s *NormalizeStep) Do(_ context.Context, state *model.CheckState) error {
	n, err := normalizer.New(state.Site.Selector, state.Site.ExcludeSelectors)
	if err != nil {
		return err
	}

	content, err := n.Normalize(state.Body)
	if err != nil {
		return err
	}
	state.Content = content
	return nil
}

// DetectStep fingerprints the normalized content, classifies the check
// against the previous snapshot, and builds the site's new status and
// history entry.
type DetectStep struct{}

// NewDetectStep creates a detection step.
func NewDetectStep() *DetectStep {
	return &DetectStep{}
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do fills state.Hash, state.Outcome and state.History. It never fails;
// it runs only after fetch and normalize succeeded, and classification
// itself is pure computation.
func (s *DetectStep) Do(_ context.Context, state *model.CheckState) error {
	state.Hash = detector.Fingerprint(state.Content)

	outcome := detector.Classify(state.Prior, state.Hash, state.FetchedAt)

	state.Outcome = model.SiteStatus{
		ID:         state.Site.ID,
		Name:       state.Site.Name,
		URL:        state.Site.URL,
		Status:     outcome.Status,
		LastCheck:  state.FetchedAt,
		LastChange: outcome.LastChange,
		Hash:       state.Hash,
		Encrypted:  state.Site.Encrypted,
	}
	state.History = &model.HistoryEntry{
		Timestamp:      state.FetchedAt,
		Status:         outcome.Status,
		Hash:           state.Hash,
		ChangeDetected: outcome.ChangeDetected,
	}
	return nil
}

// DefaultPipeline creates a pipeline with the standard check steps in
// order: resolve URL, fetch, normalize, detect.
//
// Design decision: We provide a default pipeline because:
//  1. Every caller wants the same four steps in the same order
//  2. It keeps the monitor free of step wiring boilerplate
//  3. Tests can still assemble partial pipelines from the step types
func DefaultPipeline(urlCipher *cipher.URLCipher, f *fetcher.Fetcher, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewResolveStep(urlCipher),
		NewFetchStep(f),
		NewNormalizeStep(),
		NewDetectStep(),
	)
	return p
}
