// Package runner drives the apply loop over the work queue.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobsbot-automation/internal/apply"
	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/reporter"
	"go-jobsbot-automation/internal/store"
)

// ErrTooManyFailures is returned in Stats.Reason when the run stopped early.
var ErrTooManyFailures = errors.New("too many consecutive errors")

// Attempter submits one application.
type Attempter interface {
	Apply(ctx context.Context, url string) (apply.Outcome, error)
}

// Policy holds the pacing and the failure threshold.
type Policy struct {
	// MaxConsecutiveFailures is exceeded, not reached, before the run stops.
	MaxConsecutiveFailures int
	SuccessMin, SuccessMax time.Duration
	FailureMin, FailureMax time.Duration
}

// DefaultPolicy stops after the eleventh consecutive failure.
func DefaultPolicy() Policy {
	return Policy{
		MaxConsecutiveFailures: 10,
		SuccessMin:             50 * time.Second,
		SuccessMax:             80 * time.Second,
		FailureMin:             10 * time.Second,
		FailureMax:             40 * time.Second,
	}
}

// Stats summarises one run.
type Stats struct {
	Queued    int
	Attempted int
	Succeeded int
	Failed    int
	External  int
	// Reason is set when the run ended before the queue was exhausted.
	Reason error
}

func (s Stats) String() string {
	msg := fmt.Sprintf("queued %d, attempted %d, applied %d, failed %d (external %d)",
		s.Queued, s.Attempted, s.Succeeded, s.Failed, s.External)
	if s.Reason != nil {
		msg += fmt.Sprintf(", stopped early: %v", s.Reason)
	}
	return msg
}

type Runner struct {
	store    store.Store
	attempt  Attempter
	pacer    *browser.Pacer
	log      logger.Logger
	reporter reporter.Reporter
	shots    *browser.ScreenshotDebugger
	client   browser.PageClient
	policy   Policy
}

// Option customises a Runner.
type Option func(*Runner)

func WithPolicy(p Policy) Option { return func(r *Runner) { r.policy = p } }

func WithReporter(rep reporter.Reporter) Option { return func(r *Runner) { r.reporter = rep } }

// WithScreenshots captures the page of every failed attempt.
func WithScreenshots(shots *browser.ScreenshotDebugger, client browser.PageClient) Option {
	return func(r *Runner) {
		r.shots = shots
		r.client = client
	}
}

func New(st store.Store, attempt Attempter, pacer *browser.Pacer, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:    st,
		attempt:  attempt,
		pacer:    pacer,
		log:      log,
		reporter: reporter.Nop(),
		policy:   DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies to every target not yet in taboo. Each URL is written to
// taboo before it is attempted, so no posting is attempted twice even if
// the process dies mid-attempt. A returned error means the run could not
// continue (store failure or cancellation); stopping on the failure
// threshold is reported through Stats.Reason instead.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	r.log.Info("Starting main cycle - applying to jobs")

	queue, err := store.Queue(ctx, r.store)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Queued: len(queue)}
	failures := 0

	for i, url := range queue {
		r.log.Warn(fmt.Sprintf("Running application number %d out of %d", i+1, len(queue)))
		r.log.Warn("Will try to apply", logger.String("url", url))

		if err := r.store.Append(ctx, store.Taboo, url); err != nil {
			return stats, fmt.Errorf("record attempt of %s: %w", url, err)
		}
		stats.Attempted++

		ok := r.applySafe(ctx, url, &stats)
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var pause error
		if ok {
			failures = 0
			pause = r.pacer.RandomDelay(ctx, r.policy.SuccessMin, r.policy.SuccessMax)
		} else {
			failures++
			pause = r.pacer.RandomDelay(ctx, r.policy.FailureMin, r.policy.FailureMax)
		}
		if pause != nil {
			return stats, pause
		}

		if failures > r.policy.MaxConsecutiveFailures {
			r.log.Error("Got too many consecutive errors. Will stop now.", logger.Int("failures", failures))
			stats.Reason = ErrTooManyFailures
			r.notifyError(ctx, fmt.Errorf("%w after %d attempts", ErrTooManyFailures, stats.Attempted))
			return stats, nil
		}
	}

	r.log.Info("Finished execution on the end. Good luck with the interviews. Bye now.")
	return stats, nil
}

// applySafe turns every failure of one attempt into false.
func (r *Runner) applySafe(ctx context.Context, url string, stats *Stats) bool {
	out, err := r.attempt.Apply(ctx, url)
	switch {
	case err != nil:
		stats.Failed++
		r.log.Error("There was an error applying, continuing", logger.String("url", url), logger.Error(err))
		r.capture(ctx, url)
		return false
	case out.External:
		stats.Failed++
		stats.External++
		r.log.Warn("Application is hosted externally, skipping", logger.String("url", url))
		return false
	case !out.Submitted:
		stats.Failed++
		return false
	}

	stats.Succeeded++
	if err := r.store.Append(ctx, store.Applied, url); err != nil {
		r.log.Error("Could not record application", logger.String("url", url), logger.Error(err))
	}
	r.log.Critical("Successfully applied", logger.String("url", url), logger.String("company", out.Company))
	if err := r.reporter.Applied(ctx, url, out.Company); err != nil {
		r.log.Warn("Could not send notification", logger.Error(err))
	}
	return true
}

func (r *Runner) capture(ctx context.Context, url string) {
	if r.shots == nil || r.client == nil {
		return
	}
	path, err := r.shots.Capture(ctx, r.client, "apply-failed")
	if err != nil {
		r.log.Warn("Failed to capture screenshot", logger.Error(err))
		return
	}
	if path != "" {
		r.log.Info("Screenshot saved", logger.String("url", url), logger.String("path", path))
	}
}

func (r *Runner) notifyError(ctx context.Context, err error) {
	if rerr := r.reporter.Error(ctx, err); rerr != nil {
		r.log.Warn("Could not send notification", logger.Error(rerr))
	}
}

// Summary reports the finished run.
func (r *Runner) Summary(ctx context.Context, stats Stats) {
	r.log.Warn("Run finished", logger.String("summary", stats.String()))
	if err := r.reporter.Status(ctx, "Run finished: "+stats.String()); err != nil {
		r.log.Warn("Could not send notification", logger.Error(err))
	}
}
