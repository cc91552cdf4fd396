package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/config"
	"go-jobsbot-automation/internal/database"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/reporter"
	"go-jobsbot-automation/internal/scraper"
	"go-jobsbot-automation/internal/scraper/stackjobs"
	"go-jobsbot-automation/internal/store"
)

// staticInterval spaces out plain HTTP fetches of search pages.
const staticInterval = 2 * time.Second

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return database.Connect(ctx, cfg.Storage.DatabaseURL)
	default:
		return store.NewFile(map[store.Collection]string{
			store.Targets: cfg.TargetsPath,
			store.Taboo:   cfg.TabooPath,
			store.Applied: cfg.AppliedPath,
		})
	}
}

func buildSite(cfg *config.Config) (scraper.Site, error) {
	site, err := stackjobs.New().WithOverrides(cfg.Site.SearchURL, cfg.Site.Selectors)
	if err != nil {
		return site, fmt.Errorf("%w: site: %v", config.ErrInvalidConfig, err)
	}
	return site, nil
}

// clients pairs the driver used to crawl search pages with the one used to
// fill forms. They are the same browser unless the http driver is chosen.
type clients struct {
	discover browser.PageClient
	apply    browser.PageClient
}

func (c clients) Close() error {
	var errs []error
	if c.discover != nil {
		errs = append(errs, c.discover.Close())
	}
	if c.apply != nil && c.apply != c.discover {
		errs = append(errs, c.apply.Close())
	}
	return errors.Join(errs...)
}

func openClients(ctx context.Context, cfg *config.Config, log logger.Logger) (clients, error) {
	switch cfg.Browser.Driver {
	case "chromedp":
		c, err := browser.NewChromedp(ctx, browser.ChromedpOptions{
			Headless:  cfg.IsHeadless(),
			UserAgent: cfg.Browser.UserAgent,
		})
		if err != nil {
			return clients{}, err
		}
		log.Info("✅ Browser initialized", logger.String("driver", "chromedp"))
		return clients{discover: c, apply: c}, nil
	case "http":
		pw, err := openPlaywright(cfg)
		if err != nil {
			return clients{}, err
		}
		log.Info("✅ Browser initialized", logger.String("driver", "http+playwright"))
		return clients{discover: openStatic(cfg), apply: pw}, nil
	default:
		pw, err := openPlaywright(cfg)
		if err != nil {
			return clients{}, err
		}
		log.Info("✅ Browser initialized", logger.String("driver", "playwright"))
		return clients{discover: pw, apply: pw}, nil
	}
}

func openPlaywright(cfg *config.Config) (*browser.Playwright, error) {
	return browser.NewPlaywright(browser.PlaywrightOptions{
		Headless:    cfg.IsHeadless(),
		UserAgent:   cfg.Browser.UserAgent,
		CookiesPath: cfg.Browser.CookiesPath,
	})
}

func openStatic(cfg *config.Config) *browser.Static {
	return browser.NewStatic(browser.StaticOptions{
		UserAgent: cfg.Browser.UserAgent,
		Interval:  staticInterval,
	})
}

// buildReporter returns a Telegram reporter when credentials are set.
func buildReporter(cfg *config.Config, log logger.Logger) reporter.Reporter {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return reporter.Nop()
	}
	tg, err := reporter.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn("⚠️ Telegram disabled", logger.Error(err))
		return reporter.Nop()
	}
	return tg
}
