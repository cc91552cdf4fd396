package main

import (
	"fmt"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/config"
	"go-jobsbot-automation/internal/store"

	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var withBrowser bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config and print list and queue sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			site, err := buildSite(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "config ok: %d keywords, %d locations, driver %s, storage %s\n",
				len(cfg.Keywords), len(cfg.Locations), cfg.Browser.Driver, cfg.Storage.Driver)

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, c := range store.Collections {
				urls, err := st.Load(ctx, c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-8s %d\n", c, len(urls))
			}
			queue, err := store.Queue(ctx, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-8s %d\n", "queue", len(queue))

			if !withBrowser {
				return nil
			}

			log := root.logger()
			clients, err := openClients(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer clients.Close()

			first := site.BaseURL(cfg.Keywords[0], cfg.Locations[0])
			if err := clients.discover.Navigate(ctx, first); err != nil {
				return err
			}
			if err := browser.ContextSleep(ctx, 2*time.Second); err != nil {
				return err
			}
			links, err := clients.discover.FindAll(ctx, site.Selectors.ListingLink)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d listing links\n", first, len(links))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withBrowser, "browser", false, "open the first search page and count listing links")
	return cmd
}
