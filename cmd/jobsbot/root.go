package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobsbot-automation/internal/apply"
	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/config"
	"go-jobsbot-automation/internal/discovery"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/runner"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose    int
	update     int
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "jobsbot",
		Short:         "Discover job postings and apply to them with a browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			return interruptible(ctx, cmd.OutOrStdout(), func(ctx context.Context) error {
				return runOnce(ctx, opts)
			})
		},
	}

	f := cmd.PersistentFlags()
	f.IntVarP(&opts.verbose, "verbose", "v", 0, "print progress messages (0 or 1)")
	f.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the config file")
	cmd.Flags().IntVarP(&opts.update, "update", "u", 1, "crawl the search pages for new postings before applying (0 or 1)")

	cmd.AddCommand(newSuperviseCmd(opts), newCheckCmd(opts), newRenderCVCmd(opts))
	return cmd
}

// notifyContext is cancelled by the first SIGINT or SIGTERM. Signal handling
// is released right after, so a second interrupt kills the process.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// interruptible runs fn and turns a cancellation of ctx into a clean exit.
func interruptible(ctx context.Context, out io.Writer, fn func(context.Context) error) error {
	err := fn(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(out, "program execution interrupted.")
		fmt.Fprintln(out, "Exiting.")
		return nil
	}
	return err
}

func (o *rootOptions) validate() error {
	if o.verbose != 0 && o.verbose != 1 {
		return fmt.Errorf("invalid value %d for --verbose: must be 0 or 1", o.verbose)
	}
	if o.update != 0 && o.update != 1 {
		return fmt.Errorf("invalid value %d for --update: must be 0 or 1", o.update)
	}
	return nil
}

func (o *rootOptions) logger() logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.FromVerbosity(o.verbose),
		Output: os.Stderr,
	})
}

// runOnce performs one discovery pass (when enabled) followed by one apply
// loop over the queue.
func runOnce(ctx context.Context, opts *rootOptions) error {
	log := opts.logger().With(logger.String("run_id", uuid.NewString()))
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log.Info("🔧 Config loaded", logger.Strings("keywords", cfg.Keywords), logger.Strings("locations", cfg.Locations),
		logger.Bool("update", opts.update == 1))
	if err := ctx.Err(); err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	site, err := buildSite(cfg)
	if err != nil {
		return err
	}

	clients, err := openClients(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer clients.Close()

	pacer := browser.NewPacer(browser.ContextSleep, time.Now().UnixNano())

	disc := discovery.New(clients.discover, site, pacer, log)
	if _, err := disc.Update(ctx, st, cfg.Keywords, cfg.Locations, opts.update == 1); err != nil {
		return err
	}

	applier := apply.New(clients.apply, site, apply.Candidate{
		Name:     cfg.CandidateName,
		Location: cfg.CandidateLocation,
		Email:    cfg.CandidateEmail,
		Phone:    cfg.CandidatePhone,
		Letter:   cfg.Letter,
		CVPath:   cfg.CVPath,
	}, pacer, log)

	r := runner.New(st, applier, pacer, log,
		runner.WithReporter(buildReporter(cfg, log)),
		runner.WithScreenshots(browser.NewScreenshotDebugger(cfg.Browser.ScreenshotDir), clients.apply),
	)

	stats, err := r.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.Summary(context.WithoutCancel(ctx), stats)
	return nil
}
