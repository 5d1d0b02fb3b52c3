package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/webwatch/internal/database"
	"github.com/nao1215/webwatch/internal/model"
	"github.com/nao1215/webwatch/internal/pipeline"
	"github.com/nao1215/webwatch/internal/store"
)

// Runner executes one check run over all configured sites.
//
// Design decision: The runner loads the previous snapshot once, checks
// every site against that in-memory copy, and writes everything in a
// single flush at the end. Reasons:
//  1. A crash mid-run leaves the previous snapshot fully intact
//  2. Dashboards polling status.json never observe a half-updated run
//  3. Comparing against the start-of-run snapshot keeps results
//     independent of check order
type Runner struct {
	// sites are the entries to check, in file order.
	sites []model.Site

	// pipe is the per-site check pipeline.
	pipe *pipeline.Pipeline

	// status persists the status snapshot.
	status *store.StatusStore

	// history persists the per-site check history.
	history *store.HistoryStore

	// archive is the optional SQLite check archive. Nil disables it.
	archive *database.WatchDB

	// archiveKeep bounds archived checks per site when pruning.
	archiveKeep int

	// limiter paces consecutive checks. Nil means no pacing.
	limiter *rate.Limiter

	// logger for structured logging.
	logger *slog.Logger

	// now returns the current time; replaceable in tests.
	now func() time.Time
}

// Option is a function that configures a Runner.
type Option func(*Runner)

// WithArchive enables the check archive with the given retention bound.
func WithArchive(db *database.WatchDB, keepPerSite int) Option {
	return func(r *Runner) {
		r.archive = db
		r.archiveKeep = keepPerSite
	}
}

// WithDelay paces consecutive site checks. The first check starts
// immediately; each following check waits until delay has passed since
// the previous one. Zero disables pacing.
func WithDelay(delay time.Duration) Option {
	return func(r *Runner) {
		if delay > 0 {
			r.limiter = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock replaces the time source. Tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner for the given sites and stores.
func New(sites []model.Site, pipe *pipeline.Pipeline, status *store.StatusStore, history *store.HistoryStore, opts ...Option) *Runner {
	r := &Runner{
		sites:   sites,
		pipe:    pipe,
		status:  status,
		history: history,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run checks every site once and flushes the results.
//
// Per-site failures are recorded in the returned summary and in the
// snapshot; they never produce a non-nil error. The error return is
// reserved for run-level problems: unreadable state files, context
// cancellation, or a failed flush. On those the previous snapshot and
// history files are left untouched.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	startedAt := r.now().UTC()

	prior, err := r.status.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load previous status: %w", err)
	}
	if err := r.history.Load(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	next := &model.StatusSnapshot{
		Sites: make([]model.SiteStatus, 0, len(r.sites)),
	}
	summary := &model.RunSummary{
		StartedAt: startedAt,
		Snapshot:  next,
	}

	for _, site := range r.sites {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		state := &model.CheckState{
			Site:  site,
			Prior: prior.FindSite(site.ID),
		}

		err := r.pipe.Execute(ctx, state)

		// Distinguish run cancellation from a site that merely timed
		// out: a slow fetch also unwraps to context.DeadlineExceeded.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		summary.Checked++

		if err != nil {
			outcome := r.failedStatus(site, state, err)
			next.Sites = append(next.Sites, outcome)
			summary.Errors++

			r.logger.Warn("check failed",
				"site", site.ID,
				"error", err,
			)
			r.archiveCheck(ctx, site, state, outcome)
			continue
		}

		next.Sites = append(next.Sites, state.Outcome)

		if state.History != nil {
			r.history.Append(site.ID, *state.History)
		}

		switch state.Outcome.Status {
		case model.StatusUpdated:
			summary.Updated++
			summary.UpdatedSites = append(summary.UpdatedSites, state.Outcome)
			r.logger.Info("change detected",
				"site", site.ID,
				"hash", state.Outcome.Hash,
			)
		default:
			summary.Unchanged++
			r.logger.Debug("no change",
				"site", site.ID,
				"hash", state.Outcome.Hash,
			)
		}
		r.archiveCheck(ctx, site, state, state.Outcome)
	}

	if err := r.flush(ctx, next); err != nil {
		return nil, err
	}

	summary.FinishedAt = r.now().UTC()
	return summary, nil
}

// failedStatus builds the snapshot entry for a failed check. It carries
// no hash and no last-change time: nothing trustworthy was observed.
func (r *Runner) failedStatus(site model.Site, state *model.CheckState, err error) model.SiteStatus {
	checkedAt := state.FetchedAt
	if checkedAt.IsZero() {
		checkedAt = r.now().UTC()
	}

	return model.SiteStatus{
		ID:        site.ID,
		Name:      site.Name,
		URL:       site.URL,
		Status:    model.StatusError,
		LastCheck: checkedAt,
		Error:     err.Error(),
		Encrypted: site.Encrypted,
	}
}

// archiveCheck appends one check to the archive. Archive problems are
// logged and swallowed; the JSON files are the authoritative output.
func (r *Runner) archiveCheck(ctx context.Context, site model.Site, state *model.CheckState, outcome model.SiteStatus) {
	if r.archive == nil {
		return
	}

	rec := &database.CheckRecord{
		SiteID:    site.ID,
		SiteName:  site.Name,
		URL:       site.URL,
		CheckedAt: outcome.LastCheck,
		Status:    outcome.Status,
		Hash:      outcome.Hash,
		Error:     outcome.Error,
		Content:   state.Content,
	}
	if state.History != nil {
		rec.ChangeDetected = state.History.ChangeDetected
	}

	if _, err := r.archive.SaveCheck(ctx, rec); err != nil {
		r.logger.Warn("failed to archive check",
			"site", site.ID,
			"error", err,
		)
	}
}

// flush writes the snapshot and history files, then prunes the archive.
// The two file writes are independent and run concurrently; either
// failing fails the run because the files are the tool's contract.
// Archive pruning is best effort.
func (r *Runner) flush(ctx context.Context, next *model.StatusSnapshot) error {
	var g errgroup.Group
	g.Go(func() error {
		return r.status.Write(next)
	})
	g.Go(func() error {
		return r.history.Write()
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if r.archive != nil {
		if _, err := r.archive.Prune(ctx, r.archiveKeep); err != nil {
			r.logger.Warn("failed to prune archive", "error", err)
		}
	}
	return nil
}
