package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/webwatch/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each reading from and writing to the
// shared check state.
//
// Design decision: We use an interface rather than function types because:
//  1. It allows steps to carry configuration state
//  2. It provides a Name() method for logging and debugging
//  3. It keeps the monitor loop uniform regardless of which steps run
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the state to read from and modify. A returned
	// error aborts the pipeline for this site.
	Do(ctx context.Context, state *model.CheckState) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps for one site
// check. Every step feeds the next, so the pipeline always stops at the
// first error; there is nothing useful a later step could do with the
// missing intermediate result.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the process default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep or AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence against the given state.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps handle their own timeouts. This keeps a long
// fetch interruptible at step boundaries without racing its cleanup.
//
// The first failing step's error is returned unwrapped so the caller can
// inspect typed errors (FetchError, CryptoError) and record the message
// verbatim as the site's error string.
func (p *Pipeline) Execute(ctx context.Context, state *model.CheckState) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("check cancelled",
				"step", step.Name(),
				"site", state.Site.ID,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"site", state.Site.ID,
		)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"site", state.Site.ID,
				"error", err,
			)
			return err
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
