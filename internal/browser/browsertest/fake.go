// Package browsertest provides a scripted in-memory browser.PageClient.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"go-jobsbot-automation/internal/browser"
)

// Page is one scripted document.
type Page struct {
	// Elements maps a selector to what FindAll returns for it.
	Elements map[string][]*Element
	// Dialog makes AcceptDialog report an accepted dialog.
	Dialog bool
}

// Element is a scripted node. Err, when set, fails every interaction.
type Element struct {
	Label   string
	Content string
	Attrs   map[string]string
	Err     error

	client *Client
}

// Client is a fake PageClient. Actions records every interaction as
// "<verb> <label>[ <arg>]".
type Client struct {
	Pages map[string]*Page
	// NavigateErr maps a URL to the error Navigate returns for it.
	NavigateErr map[string]error

	mu      sync.Mutex
	current *Page
	Visited []string
	Actions []string
	Closed  bool
	Shots   []string
	// Humanized lists the URL loaded at each Humanize call.
	Humanized []string
}

// New returns a client serving pages.
func New(pages map[string]*Page) *Client {
	return &Client{Pages: pages, NavigateErr: map[string]error{}}
}

// Link is a shorthand for an element with an href.
func Link(href string) *Element {
	return &Element{Label: href, Attrs: map[string]string{"href": href}}
}

// Field is a shorthand for a labelled form element.
func Field(label string) *Element {
	return &Element{Label: label, Attrs: map[string]string{}}
}

func (c *Client) record(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Actions = append(c.Actions, fmt.Sprintf(format, args...))
}

func (c *Client) Navigate(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Visited = append(c.Visited, url)
	if err := c.NavigateErr[url]; err != nil {
		return err
	}
	p, ok := c.Pages[url]
	if !ok {
		return fmt.Errorf("no page scripted for %s", url)
	}
	c.current = p
	return nil
}

func (c *Client) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	found := c.current.Elements[selector]
	els := make([]browser.Element, len(found))
	for i, e := range found {
		e.client = c
		els[i] = e
	}
	return els, nil
}

func (c *Client) AcceptDialog(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Dialog {
		c.Actions = append(c.Actions, "accept dialog")
		return true, nil
	}
	return false, nil
}

func (c *Client) Screenshot(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Shots = append(c.Shots, path)
	return nil
}

func (c *Client) HumanScroll(context.Context, *browser.Pacer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.Visited); n > 0 {
		c.Humanized = append(c.Humanized, c.Visited[n-1])
	}
	return nil
}

func (c *Client) MouseJiggle(context.Context, *browser.Pacer) error { return nil }

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

func (e *Element) Text(context.Context) (string, error) {
	return e.Content, e.Err
}

func (e *Element) Attribute(_ context.Context, name string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Attrs[name], nil
}

func (e *Element) act(verb, arg string) error {
	if e.Err != nil {
		return e.Err
	}
	if arg == "" {
		e.client.record("%s %s", verb, e.Label)
	} else {
		e.client.record("%s %s %s", verb, e.Label, arg)
	}
	return nil
}

func (e *Element) Click(context.Context) error                 { return e.act("click", "") }
func (e *Element) Clear(context.Context) error                 { return e.act("clear", "") }
func (e *Element) Type(_ context.Context, text string) error   { return e.act("type", text) }
func (e *Element) Upload(_ context.Context, path string) error { return e.act("upload", path) }
func (e *Element) SetValue(_ context.Context, v string) error  { return e.act("set", v) }
