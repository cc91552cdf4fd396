package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightOptions configures the default driver.
type PlaywrightOptions struct {
	Headless    bool
	UserAgent   string
	CookiesPath string
	// TimeoutMs bounds navigation and element actions.
	TimeoutMs float64
}

// Playwright is a PageClient backed by a single Chromium tab.
type Playwright struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	mu      sync.Mutex
	dialogs int
}

// NewPlaywright launches Chromium and opens one page. Cookies are loaded
// into the context when a cookies path is given.
func NewPlaywright(opts PlaywrightOptions) (*Playwright, error) {
	if opts.TimeoutMs <= 0 {
		opts.TimeoutMs = 30000
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		if err != nil {
			browser.Close()
			pw.Stop()
			return nil, err
		}
		pwCookies := make([]playwright.OptionalCookie, len(cookies))
		for i, c := range cookies {
			pwCookies[i] = c.ToPlaywright()
		}
		if err := bctx.AddCookies(pwCookies); err != nil {
			browser.Close()
			pw.Stop()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(opts.TimeoutMs)
	page.SetDefaultNavigationTimeout(opts.TimeoutMs)

	p := &Playwright{pw: pw, browser: browser, context: bctx, page: page}

	//playwright dismisses dialogs without a handler, so accept them here
	//and let AcceptDialog report what happened
	page.OnDialog(func(d playwright.Dialog) {
		if err := d.Accept(); err == nil {
			p.mu.Lock()
			p.dialogs++
			p.mu.Unlock()
		}
	})
	return p, nil
}

// guard runs fn and closes the page if ctx is cancelled meanwhile, which
// aborts any playwright call still waiting on it.
func (p *Playwright) guard(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = p.page.Close() })
	defer stop()
	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (p *Playwright) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.dialogs = 0
	p.mu.Unlock()

	err := p.guard(ctx, func() error {
		_, err := p.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Playwright) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var locs []playwright.Locator
	err := p.guard(ctx, func() error {
		var err error
		locs, err = p.page.Locator(selector).All()
		return err
	})
	if err != nil {
		return nil, err
	}
	els := make([]Element, len(locs))
	for i, l := range locs {
		els[i] = pwElement{p: p, loc: l}
	}
	return els, nil
}

func (p *Playwright) AcceptDialog(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	accepted := p.dialogs > 0
	p.dialogs = 0
	return accepted, nil
}

func (p *Playwright) Screenshot(ctx context.Context, path string) error {
	return p.guard(ctx, func() error {
		_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		})
		return err
	})
}

// HumanScroll scrolls down half a viewport at a time, then back up a little.
func (p *Playwright) HumanScroll(ctx context.Context, pacer *Pacer) error {
	for i := 0; i < scrollSteps; i++ {
		err := p.guard(ctx, func() error {
			_, err := p.page.Evaluate("window.scrollBy(0, window.innerHeight / 2)")
			return err
		})
		if err != nil {
			return err
		}
		if err := pacer.Jitter(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
			return err
		}
	}
	return p.guard(ctx, func() error {
		_, err := p.page.Evaluate("px => window.scrollBy(0, -px)", scrollBackPx)
		return err
	})
}

// MouseJiggle moves the pointer to a few random spots in the viewport.
func (p *Playwright) MouseJiggle(ctx context.Context, pacer *Pacer) error {
	vp := p.page.ViewportSize()
	if vp == nil {
		return nil
	}
	for i := 0; i < jiggleMoves; i++ {
		x, y := pacer.Intn(vp.Width), pacer.Intn(vp.Height)
		if err := p.guard(ctx, func() error {
			return p.page.Mouse().Move(float64(x), float64(y))
		}); err != nil {
			return err
		}
		if err := pacer.Jitter(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// PDF loads html into the page and prints it as an A4 document.
func (p *Playwright) PDF(ctx context.Context, html string) ([]byte, error) {
	var out []byte
	err := p.guard(ctx, func() error {
		if err := p.page.SetContent(html, playwright.PageSetContentOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
		}); err != nil {
			return fmt.Errorf("could not set page content: %w", err)
		}
		var err error
		out, err = p.page.PDF(playwright.PagePdfOptions{
			Format:          playwright.String("A4"),
			PrintBackground: playwright.Bool(true),
			Margin: &playwright.Margin{
				Top:    playwright.String("12mm"),
				Bottom: playwright.String("12mm"),
				Left:   playwright.String("10mm"),
				Right:  playwright.String("10mm"),
			},
		})
		if err != nil {
			return fmt.Errorf("could not generate PDF: %w", err)
		}
		return nil
	})
	return out, err
}

// Close shuts the browser down and stops the driver.
func (p *Playwright) Close() error {
	var firstErr error
	if err := p.browser.Close(); err != nil {
		firstErr = err
	}
	if err := p.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type pwElement struct {
	p   *Playwright
	loc playwright.Locator
}

func (e pwElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.p.guard(ctx, func() error {
		var err error
		text, err = e.loc.TextContent()
		return err
	})
	return text, err
}

func (e pwElement) Attribute(ctx context.Context, name string) (string, error) {
	var value string
	err := e.p.guard(ctx, func() error {
		var err error
		value, err = e.loc.GetAttribute(name)
		return err
	})
	return value, err
}

func (e pwElement) Click(ctx context.Context) error {
	return e.p.guard(ctx, func() error { return e.loc.Click() })
}

func (e pwElement) Clear(ctx context.Context) error {
	return e.p.guard(ctx, func() error { return e.loc.Clear() })
}

func (e pwElement) Type(ctx context.Context, text string) error {
	return e.p.guard(ctx, func() error { return e.loc.PressSequentially(text) })
}

func (e pwElement) Upload(ctx context.Context, path string) error {
	return e.p.guard(ctx, func() error { return e.loc.SetInputFiles(path) })
}

func (e pwElement) SetValue(ctx context.Context, value string) error {
	return e.p.guard(ctx, func() error {
		_, err := e.loc.Evaluate("(el, value) => { el.value = value }", value)
		return err
	})
}
