package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Static fetches pages over plain HTTP and queries them with goquery. It
// serves discovery on boards that render results server-side; every
// interaction returns ErrUnsupported.
type Static struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	doc       *goquery.Document
}

// StaticOptions configures the HTTP driver.
type StaticOptions struct {
	UserAgent string
	// Interval is the minimum gap between two requests.
	Interval time.Duration
	Client   *http.Client
}

func NewStatic(opts StaticOptions) *Static {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Static{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
	}
}

func (s *Static) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("navigate to %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	s.doc = doc
	return nil
}

func (s *Static) FindAll(_ context.Context, selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	var els []Element
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		els = append(els, staticElement{sel: sel})
	})
	return els, nil
}

func (s *Static) AcceptDialog(_ context.Context) (bool, error) { return false, nil }

func (s *Static) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e staticElement) Text(_ context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e staticElement) Attribute(_ context.Context, name string) (string, error) {
	v, _ := e.sel.Attr(name)
	return v, nil
}

func (staticElement) Click(context.Context) error            { return ErrUnsupported }
func (staticElement) Clear(context.Context) error            { return ErrUnsupported }
func (staticElement) Type(context.Context, string) error     { return ErrUnsupported }
func (staticElement) Upload(context.Context, string) error   { return ErrUnsupported }
func (staticElement) SetValue(context.Context, string) error { return ErrUnsupported }
