package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-jobsbot-automation/internal/config"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/supervisor"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSuperviseCmd(root *rootOptions) *cobra.Command {
	var (
		interval   time.Duration
		statusAddr string
	)

	cmd := &cobra.Command{
		Use:   "supervise",
		Short: "Run the bot over and over, pausing between runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			log := root.logger()
			defer func() { _ = log.Sync() }()

			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			launch := supervisor.ExecLauncher(self, supervisor.ChildArgs(root.configPath), os.Stdout, os.Stderr)

			metrics := supervisor.NewMetrics()
			sup := supervisor.New(launch, interval, log, supervisor.WithMetrics(metrics))

			var status *supervisor.StatusServer
			if statusAddr != "" {
				cfg, err := config.Load(root.configPath)
				if err != nil {
					return err
				}
				st, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				status = supervisor.NewStatusServer(st, metrics, log)
			}

			return interruptible(ctx, cmd.OutOrStdout(), func(ctx context.Context) error {
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error { return sup.Run(gctx) })
				if status != nil {
					g.Go(func() error { return status.Serve(gctx, statusAddr) })
				}
				if err := g.Wait(); err != nil {
					log.Error("Supervisor stopped", logger.Error(err))
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", supervisor.DefaultInterval, "pause between two runs")
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "serve health, stats and metrics on this address (e.g. :8080)")
	return cmd
}
