package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpOptions configures the chromedp driver.
type ChromedpOptions struct {
	Headless  bool
	UserAgent string
}

// Chromedp is a PageClient talking to Chrome over the DevTools protocol.
type Chromedp struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	dialogs int
}

// NewChromedp starts a Chrome instance bound to parent.
func NewChromedp(parent context.Context, opts ChromedpOptions) (*Chromedp, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	c := &Chromedp{
		ctx: ctx,
		cancel: func() {
			ctxCancel()
			allocCancel()
		},
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err == nil {
					c.mu.Lock()
					c.dialogs++
					c.mu.Unlock()
				}
			}()
		}
	})

	//first Run launches the browser
	if err := chromedp.Run(ctx); err != nil {
		c.cancel()
		return nil, fmt.Errorf("could not start chrome: %w", err)
	}
	return c, nil
}

// run executes actions on the tab, honouring cancellation of ctx as well.
func (c *Chromedp) run(ctx context.Context, actions ...chromedp.Action) error {
	stop := context.AfterFunc(ctx, c.cancel)
	defer stop()
	return chromedp.Run(c.ctx, actions...)
}

func (c *Chromedp) Navigate(ctx context.Context, url string) error {
	c.mu.Lock()
	c.dialogs = 0
	c.mu.Unlock()

	if err := c.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (c *Chromedp) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	els := make([]Element, len(nodes))
	for i, n := range nodes {
		els[i] = cdpElement{c: c, node: n}
	}
	return els, nil
}

func (c *Chromedp) AcceptDialog(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	accepted := c.dialogs > 0
	c.dialogs = 0
	return accepted, nil
}

func (c *Chromedp) Close() error {
	c.cancel()
	return nil
}

// HumanScroll scrolls down half a viewport at a time, then back up a little.
func (c *Chromedp) HumanScroll(ctx context.Context, pacer *Pacer) error {
	for i := 0; i < scrollSteps; i++ {
		if err := c.run(ctx, chromedp.Evaluate("window.scrollBy(0, window.innerHeight / 2)", nil)); err != nil {
			return err
		}
		if err := pacer.Jitter(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
			return err
		}
	}
	return c.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, -%d)", scrollBackPx), nil))
}

// MouseJiggle moves the pointer to a few random spots in the viewport.
func (c *Chromedp) MouseJiggle(ctx context.Context, pacer *Pacer) error {
	var size []int
	if err := c.run(ctx, chromedp.Evaluate("[window.innerWidth, window.innerHeight]", &size)); err != nil {
		return err
	}
	if len(size) != 2 {
		return nil
	}
	for i := 0; i < jiggleMoves; i++ {
		x, y := pacer.Intn(size[0]), pacer.Intn(size[1])
		if err := c.run(ctx, chromedp.MouseEvent(input.MouseMoved, float64(x), float64(y))); err != nil {
			return err
		}
		if err := pacer.Jitter(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

type cdpElement struct {
	c    *Chromedp
	node *cdp.Node
}

func (e cdpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e cdpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.c.run(ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, err
}

func (e cdpElement) Attribute(_ context.Context, name string) (string, error) {
	return e.node.AttributeValue(name), nil
}

func (e cdpElement) Click(ctx context.Context) error {
	return e.c.run(ctx, chromedp.MouseClickNode(e.node))
}

func (e cdpElement) Clear(ctx context.Context) error {
	return e.c.run(ctx, chromedp.Clear(e.ids(), chromedp.ByNodeID))
}

func (e cdpElement) Type(ctx context.Context, text string) error {
	return e.c.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e cdpElement) Upload(ctx context.Context, path string) error {
	return e.c.run(ctx, chromedp.SetUploadFiles(e.ids(), []string{path}, chromedp.ByNodeID))
}

func (e cdpElement) SetValue(ctx context.Context, value string) error {
	return e.c.run(ctx, chromedp.SetJavascriptAttribute(e.ids(), "value", value, chromedp.ByNodeID))
}
