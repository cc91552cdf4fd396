// Package discovery crawls paginated search results and collects new
// job-posting URLs.
//
// Results are assumed to be sorted newest first: once a known posting shows
// up, everything behind it was seen by an earlier run, so the crawl of that
// search stops there.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/scraper"
	"go-jobsbot-automation/internal/store"
)

const (
	// settleDelay lets a freshly loaded page finish rendering.
	settleDelay = 2 * time.Second
	// pageDelay separates two result pages of one search.
	pageDelay = 2 * time.Second
)

type Discoverer struct {
	client browser.PageClient
	site   scraper.Site
	pacer  *browser.Pacer
	log    logger.Logger
}

func New(client browser.PageClient, site scraper.Site, pacer *browser.Pacer, log logger.Logger) *Discoverer {
	if site.MaxLinksPerPage <= 0 {
		site.MaxLinksPerPage = scraper.MaxLinksPerPage
	}
	return &Discoverer{client: client, site: site, pacer: pacer, log: log}
}

// Update loads the persisted targets and, when shouldUpdate is set, crawls
// every keyword/location search and appends the postings not seen before.
// It returns the full target list.
func (d *Discoverer) Update(ctx context.Context, st store.Store, keywords, locations []string, shouldUpdate bool) ([]string, error) {
	d.log.Info("Loading targets...")
	existing, err := st.Load(ctx, store.Targets)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	if !shouldUpdate {
		return existing, nil
	}

	found, err := d.Discover(ctx, keywords, locations, existing)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		if err := st.Append(ctx, store.Targets, found...); err != nil {
			return nil, fmt.Errorf("append targets: %w", err)
		}
	}
	d.log.Info("Finished loading targets.", logger.Int("new", len(found)), logger.Int("total", len(existing)+len(found)))
	return append(existing, found...), nil
}

// Discover crawls every base URL and returns the new postings in the order
// they were found.
func (d *Discoverer) Discover(ctx context.Context, keywords, locations, known []string) ([]string, error) {
	seen := store.Set(known)
	var found []string

	d.log.Info("Crawling job board", logger.String("site", d.site.Name),
		logger.Strings("keywords", keywords), logger.Strings("locations", locations))

	for _, base := range d.site.BaseURLs(keywords, locations) {
		d.log.Info("Loading targets from base URL", logger.String("url", base))
		links, err := d.crawl(ctx, base, seen)
		found = append(found, links...)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			d.log.Error("Crawl of base URL abandoned", logger.String("url", base), logger.Error(err))
			continue
		}
	}
	return found, nil
}

// crawl follows one search through its result pages. Collected links are
// added to seen as they are found.
func (d *Discoverer) crawl(ctx context.Context, pageURL string, seen map[string]struct{}) ([]string, error) {
	var collected []string
	for {
		if err := d.client.Navigate(ctx, pageURL); err != nil {
			return collected, err
		}
		if err := d.pacer.Pause(ctx, settleDelay); err != nil {
			return collected, err
		}
		if err := browser.Humanize(ctx, d.client, d.pacer); err != nil {
			if ctx.Err() != nil {
				return collected, ctx.Err()
			}
			d.log.Debug("Page gestures skipped", logger.Error(err))
		}

		links, err := d.pageLinks(ctx, pageURL)
		if err != nil {
			return collected, err
		}
		for _, link := range links {
			if _, ok := seen[link]; ok {
				d.log.Warn("Encountered an already existing target, will not continue", logger.String("url", link))
				return collected, nil
			}
			seen[link] = struct{}{}
			collected = append(collected, link)
		}

		next, err := d.nextPage(ctx, pageURL)
		if err != nil {
			return collected, err
		}
		if next == "" {
			return collected, nil
		}
		pageURL = next
		if err := d.pacer.Pause(ctx, pageDelay); err != nil {
			return collected, err
		}
	}
}

// pageLinks extracts up to MaxLinksPerPage normalized listing links in page
// order. Listings without an href are skipped.
func (d *Discoverer) pageLinks(ctx context.Context, pageURL string) ([]string, error) {
	els, err := d.client.FindAll(ctx, d.site.Selectors.ListingLink)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	if len(els) > d.site.MaxLinksPerPage {
		els = els[:d.site.MaxLinksPerPage]
	}

	links := make([]string, 0, len(els))
	for _, el := range els {
		href, err := el.Attribute(ctx, "href")
		if err != nil {
			return nil, fmt.Errorf("read listing href: %w", err)
		}
		if link := resolve(pageURL, href); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

// nextPage returns the absolute URL of the next results page, or "".
func (d *Discoverer) nextPage(ctx context.Context, pageURL string) (string, error) {
	els, err := d.client.FindAll(ctx, d.site.Selectors.NextPage)
	if err != nil {
		return "", fmt.Errorf("find next page: %w", err)
	}
	if len(els) == 0 {
		return "", nil
	}
	href, err := els[0].Attribute(ctx, "href")
	if err != nil {
		return "", fmt.Errorf("read next page href: %w", err)
	}
	if href == "" {
		return "", nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href, nil
	}
	return base.ResolveReference(ref).String(), nil
}

// resolve turns href into an absolute, normalized posting URL.
func resolve(pageURL, href string) string {
	href = store.Normalize(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	return store.Normalize(base.ResolveReference(ref).String())
}
