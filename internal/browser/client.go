// Package browser abstracts the page automation the bot needs behind
// PageClient so crawling and applying can run against a real browser,
// a static HTML fetcher or an in-memory fake.
package browser

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound is returned when a selector matches nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrUnsupported is returned by drivers that cannot perform an action.
	ErrUnsupported = errors.New("operation not supported by driver")
)

// PageClient drives a single browser tab.
type PageClient interface {
	// Navigate loads url and waits for the DOM to be ready.
	Navigate(ctx context.Context, url string) error
	// FindAll returns every element matching selector in document order.
	// No match is an empty slice, not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// AcceptDialog accepts a pending confirmation dialog. It reports false
	// when no dialog appeared.
	AcceptDialog(ctx context.Context) (bool, error)
	Close() error
}

// Element is one node returned by FindAll.
type Element interface {
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value, or "" when it is absent.
	Attribute(ctx context.Context, name string) (string, error)
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	Type(ctx context.Context, text string) error
	// Upload sets the file of an <input type=file>.
	Upload(ctx context.Context, path string) error
	// SetValue assigns the value property through script, bypassing
	// key events. Used for large text areas.
	SetValue(ctx context.Context, value string) error
}

// Screenshotter is implemented by drivers able to capture the page.
type Screenshotter interface {
	Screenshot(ctx context.Context, path string) error
}

// First returns the first element matching selector.
func First(ctx context.Context, c PageClient, selector string) (Element, error) {
	els, err := c.FindAll(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", selector, ErrElementNotFound)
	}
	return els[0], nil
}
