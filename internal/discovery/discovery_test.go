package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/browser/browsertest"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/scraper"
	"go-jobsbot-automation/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listing = "listing"
	next    = "next"
)

var testSite = scraper.Site{
	Name:      "test board",
	SearchURL: "https://jobs.test/search?q={keyword}&l={location}",
	Selectors: scraper.Selectors{ListingLink: listing, NextPage: next},
}

func noSleep() *browser.Pacer {
	return browser.NewPacer(func(context.Context, time.Duration) error { return nil }, 1)
}

func links(hrefs ...string) []*browsertest.Element {
	els := make([]*browsertest.Element, len(hrefs))
	for i, h := range hrefs {
		els[i] = browsertest.Link(h)
	}
	return els
}

func page(listings []*browsertest.Element, nextHref string) *browsertest.Page {
	p := &browsertest.Page{Elements: map[string][]*browsertest.Element{listing: listings}}
	if nextHref != "" {
		p.Elements[next] = links(nextHref)
	}
	return p
}

func job(n int) string { return fmt.Sprintf("https://jobs.test/jobs/%d", n) }

func TestEarlyStopAppendsLinksBeforeKnown(t *testing.T) {
	ctx := context.Background()
	base := "https://jobs.test/search?q=rust&l=remote"
	client := browsertest.New(map[string]*browsertest.Page{
		base: page(links(job(1), job(2)+"?ref=search", job(3), job(99), job(5)), "/search?q=rust&l=remote&pg=2"),
		"https://jobs.test/search?q=rust&l=remote&pg=2": page(links(job(6)), ""),
	})
	st := store.NewMemory()
	require.NoError(t, st.Append(ctx, store.Targets, job(99)))

	d := New(client, testSite, noSleep(), logger.NewNop())
	all, err := d.Update(ctx, st, []string{"rust"}, []string{"remote"}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{base}, client.Visited)
	assert.Equal(t, []string{job(99), job(1), job(2), job(3)}, st.Raw(store.Targets))
	assert.Equal(t, []string{job(99), job(1), job(2), job(3)}, all)
}

func TestFollowsNextPageUntilExhausted(t *testing.T) {
	ctx := context.Background()
	base := "https://jobs.test/search?q=go&l=berlin"
	page2 := "https://jobs.test/search?q=go&l=berlin&pg=2"
	client := browsertest.New(map[string]*browsertest.Page{
		base:  page(links(job(1), job(2)), page2),
		page2: page(links("/jobs/3", ""), ""),
	})

	d := New(client, testSite, noSleep(), logger.NewNop())
	found, err := d.Discover(ctx, []string{"go"}, []string{"berlin"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{base, page2}, client.Visited)
	assert.Equal(t, []string{base, page2}, client.Humanized)
	assert.Equal(t, []string{job(1), job(2), job(3)}, found)
}

func TestKnownOnLaterPageKeepsEarlierPages(t *testing.T) {
	base := "https://jobs.test/search?q=go&l=remote"
	page2 := "https://jobs.test/search?q=go&l=remote&pg=2"
	page3 := "https://jobs.test/search?q=go&l=remote&pg=3"
	client := browsertest.New(map[string]*browsertest.Page{
		base:  page(links(job(1)), page2),
		page2: page(links(job(2), job(50), job(3)), page3),
		page3: page(links(job(4)), ""),
	})

	d := New(client, testSite, noSleep(), logger.NewNop())
	found, err := d.Discover(context.Background(), []string{"go"}, []string{"remote"}, []string{job(50)})
	require.NoError(t, err)

	assert.Equal(t, []string{job(1), job(2)}, found)
	assert.Equal(t, []string{base, page2}, client.Visited)
}

func TestPairsCrawledLocationOuterWithSharedKnownSet(t *testing.T) {
	urls := testSite.BaseURLs([]string{"go", "rust"}, []string{"berlin", "remote"})
	pages := map[string]*browsertest.Page{
		urls[0]: page(links(job(1), job(2)), ""),
		urls[1]: page(links(job(3)), ""),
		// job 2 was collected earlier in this run
		urls[2]: page(links(job(4), job(2), job(5)), ""),
		urls[3]: page(links(job(6)), ""),
	}
	client := browsertest.New(pages)

	d := New(client, testSite, noSleep(), logger.NewNop())
	found, err := d.Discover(context.Background(), []string{"go", "rust"}, []string{"berlin", "remote"}, nil)
	require.NoError(t, err)

	assert.Equal(t, urls, client.Visited)
	assert.Equal(t, "https://jobs.test/search?q=go&l=berlin", urls[0])
	assert.Equal(t, "https://jobs.test/search?q=rust&l=berlin", urls[1])
	assert.Equal(t, []string{job(1), job(2), job(3), job(4), job(6)}, found)
}

func TestScanDepthIsBounded(t *testing.T) {
	var hrefs []string
	for i := 1; i <= 30; i++ {
		hrefs = append(hrefs, job(i))
	}
	base := testSite.BaseURL("go", "remote")
	client := browsertest.New(map[string]*browsertest.Page{base: page(links(hrefs...), "")})

	d := New(client, testSite, noSleep(), logger.NewNop())
	// job 27 is known but lies beyond the scan depth, so it never stops the crawl
	found, err := d.Discover(context.Background(), []string{"go"}, []string{"remote"}, []string{job(27)})
	require.NoError(t, err)
	assert.Len(t, found, scraper.MaxLinksPerPage)
	assert.Equal(t, job(25), found[24])
}

func TestNavigationFailureMovesToNextPair(t *testing.T) {
	urls := testSite.BaseURLs([]string{"go"}, []string{"berlin", "remote"})
	client := browsertest.New(map[string]*browsertest.Page{
		urls[1]: page(links(job(7)), ""),
	})
	client.NavigateErr[urls[0]] = errors.New("net::ERR_TIMED_OUT")

	d := New(client, testSite, noSleep(), logger.NewNop())
	found, err := d.Discover(context.Background(), []string{"go"}, []string{"berlin", "remote"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{job(7)}, found)
}

func TestSecondRunAddsNothing(t *testing.T) {
	ctx := context.Background()
	base := testSite.BaseURL("go", "remote")
	page2 := base + "&pg=2"
	client := browsertest.New(map[string]*browsertest.Page{
		base:  page(links(job(1), job(2)), page2),
		page2: page(links(job(3)), ""),
	})
	st := store.NewMemory()
	d := New(client, testSite, noSleep(), logger.NewNop())

	_, err := d.Update(ctx, st, []string{"go"}, []string{"remote"}, true)
	require.NoError(t, err)
	require.Len(t, st.Raw(store.Targets), 3)

	all, err := d.Update(ctx, st, []string{"go"}, []string{"remote"}, true)
	require.NoError(t, err)
	assert.Len(t, st.Raw(store.Targets), 3)
	assert.Len(t, all, 3)
}

func TestUpdateWithoutCrawl(t *testing.T) {
	ctx := context.Background()
	client := browsertest.New(nil)
	st := store.NewMemory()
	require.NoError(t, st.Append(ctx, store.Targets, job(1)))

	d := New(client, testSite, noSleep(), logger.NewNop())
	all, err := d.Update(ctx, st, []string{"go"}, []string{"remote"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{job(1)}, all)
	assert.Empty(t, client.Visited)
}

func TestCancelledContextStopsCrawl(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	base := testSite.BaseURL("go", "remote")
	client := browsertest.New(map[string]*browsertest.Page{base: page(links(job(1)), "")})
	pacer := browser.NewPacer(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}, 1)

	d := New(client, testSite, pacer, logger.NewNop())
	_, err := d.Discover(ctx, []string{"go"}, []string{"remote"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

const boardHTML = `<html><body><div id="mainbar"><div class="listResults">
%s
</div>%s</div></body></html>`

func TestDiscoverAgainstStaticHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rows []string
		nextLink := ""
		switch r.URL.Query().Get("pg") {
		case "":
			rows = []string{"/jobs/1/a?so=1", "/jobs/2/b"}
			nextLink = `<div class="s-pagination"><a rel="next" href="/jobs?q=go&l=remote&pg=2">next</a></div>`
		case "2":
			rows = []string{"/jobs/3/c", "/jobs/0/old"}
		}
		var sb strings.Builder
		for _, href := range rows {
			fmt.Fprintf(&sb, `<div class="-job"><h2><a href="%s">t</a></h2></div>`, href)
		}
		fmt.Fprintf(w, boardHTML, sb.String(), nextLink)
	}))
	defer srv.Close()

	site, err := scraper.Site{
		SearchURL: srv.URL + "/jobs?q={keyword}&l={location}",
		Selectors: scraper.Selectors{
			ListingLink: "#mainbar div.listResults > div h2 > a",
			NextPage:    `.s-pagination a[rel="next"]`,
		},
	}.WithOverrides("", nil)
	require.NoError(t, err)

	client := browser.NewStatic(browser.StaticOptions{})
	d := New(client, site, noSleep(), logger.NewNop())
	found, err := d.Discover(context.Background(), []string{"go"}, []string{"remote"}, []string{srv.URL + "/jobs/0/old"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/jobs/1/a", srv.URL + "/jobs/2/b", srv.URL + "/jobs/3/c"}, found)
}
