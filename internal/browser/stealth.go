package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the real SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer spaces out page actions the way a person would.
type Pacer struct {
	sleep SleepFunc
	mu    sync.Mutex
	rnd   *rand.Rand
}

// NewPacer returns a pacer. A nil sleep uses ContextSleep.
func NewPacer(sleep SleepFunc, seed int64) *Pacer {
	if sleep == nil {
		sleep = ContextSleep
	}
	return &Pacer{sleep: sleep, rnd: rand.New(rand.NewSource(seed))}
}

// Pause waits a fixed duration.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

// RandomDelay waits a whole number of seconds drawn uniformly from [min, max].
func (p *Pacer) RandomDelay(ctx context.Context, min, max time.Duration) error {
	return p.sleep(ctx, p.Between(min, max))
}

// Between draws a duration in [min, max] with one-second granularity.
func (p *Pacer) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64((max - min) / time.Second)
	p.mu.Lock()
	n := p.rnd.Int63n(span + 1)
	p.mu.Unlock()
	return min + time.Duration(n)*time.Second
}

// Jitter waits a duration drawn uniformly from [min, max] with millisecond
// granularity. Used between small page gestures.
func (p *Pacer) Jitter(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		span := int64((max - min) / time.Millisecond)
		d += time.Duration(p.Intn(int(span)+1)) * time.Millisecond
	}
	return p.sleep(ctx, d)
}

// Intn returns a random int in [0, n). It returns 0 when n <= 0.
func (p *Pacer) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

// Humanizer is implemented by drivers that can act like a person reading the
// page: scrolling through it and moving the mouse.
type Humanizer interface {
	HumanScroll(ctx context.Context, pacer *Pacer) error
	MouseJiggle(ctx context.Context, pacer *Pacer) error
}

// Humanize scrolls and jiggles the mouse when c supports it. Drivers without
// a real page do nothing.
func Humanize(ctx context.Context, c PageClient, pacer *Pacer) error {
	h, ok := c.(Humanizer)
	if !ok {
		return nil
	}
	if err := h.HumanScroll(ctx, pacer); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if err := h.MouseJiggle(ctx, pacer); err != nil {
		return fmt.Errorf("mouse: %w", err)
	}
	return nil
}

const (
	scrollSteps  = 5
	scrollBackPx = 200
	jiggleMoves  = 3
)
