// Package supervisor keeps the bot running by restarting it after every
// exit, pausing between runs.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/logger"
)

// DefaultInterval is the pause between two runs.
const DefaultInterval = time.Hour

// Launcher runs the bot once and returns when it exits.
type Launcher func(ctx context.Context) error

// ExecLauncher starts binary with args as a child process.
func ExecLauncher(binary string, args []string, stdout, stderr io.Writer) Launcher {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s exited: %w", binary, err)
		}
		return nil
	}
}

// ChildArgs are the arguments every supervised run gets.
func ChildArgs(configPath string) []string {
	args := []string{"--verbose", "1", "--update", "1"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return args
}

type Supervisor struct {
	launch   Launcher
	interval time.Duration
	sleep    browser.SleepFunc
	log      logger.Logger
	metrics  *Metrics
}

type Option func(*Supervisor)

func WithSleep(sleep browser.SleepFunc) Option { return func(s *Supervisor) { s.sleep = sleep } }

func WithMetrics(m *Metrics) Option { return func(s *Supervisor) { s.metrics = m } }

func New(launch Launcher, interval time.Duration, log logger.Logger, opts ...Option) *Supervisor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Supervisor{
		launch:   launch,
		interval: interval,
		sleep:    browser.ContextSleep,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops until ctx is cancelled. A failing child never stops the loop.
func (s *Supervisor) Run(ctx context.Context) error {
	for run := 1; ; run++ {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Info("🚀 Starting run", logger.Int("run", run))
		started := time.Now()
		err := s.launch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if s.metrics != nil {
			s.metrics.Runs.Inc()
			s.metrics.LastRunSeconds.Set(time.Since(started).Seconds())
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.FailedRuns.Inc()
			}
			s.log.Error("❌ Run failed", logger.Int("run", run), logger.Error(err))
		} else {
			s.log.Info("✅ Run finished", logger.Int("run", run))
		}

		s.log.Info("💤 Sleeping until next run", logger.Duration("interval", s.interval))
		if err := s.sleep(ctx, s.interval); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
