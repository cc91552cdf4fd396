package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBetweenStaysInRange(t *testing.T) {
	p := NewPacer(nil, 1)
	for i := 0; i < 500; i++ {
		d := p.Between(50*time.Second, 80*time.Second)
		assert.GreaterOrEqual(t, d, 50*time.Second)
		assert.LessOrEqual(t, d, 80*time.Second)
		assert.Zero(t, d%time.Second)
	}
	assert.Equal(t, 3*time.Second, p.Between(3*time.Second, time.Second))
}

func TestPacerUsesSleepFunc(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}, 7)

	assert.NoError(t, p.Pause(context.Background(), 2*time.Second))
	assert.NoError(t, p.RandomDelay(context.Background(), 10*time.Second, 40*time.Second))

	assert.Len(t, slept, 2)
	assert.Equal(t, 2*time.Second, slept[0])
	assert.True(t, slept[1] >= 10*time.Second && slept[1] <= 40*time.Second)
}

func TestContextSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := ContextSleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestJitterStaysInRange(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}, 3)

	for i := 0; i < 200; i++ {
		assert.NoError(t, p.Jitter(context.Background(), 500*time.Millisecond, 1500*time.Millisecond))
	}
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
	assert.Zero(t, p.Intn(0))
}

type gestures struct {
	Static
	calls []string
	err   error
}

func (g *gestures) HumanScroll(context.Context, *Pacer) error {
	g.calls = append(g.calls, "scroll")
	return g.err
}

func (g *gestures) MouseJiggle(context.Context, *Pacer) error {
	g.calls = append(g.calls, "jiggle")
	return nil
}

func TestHumanize(t *testing.T) {
	p := NewPacer(nil, 1)

	g := &gestures{}
	assert.NoError(t, Humanize(context.Background(), g, p))
	assert.Equal(t, []string{"scroll", "jiggle"}, g.calls)

	failing := &gestures{err: errors.New("detached")}
	assert.ErrorContains(t, Humanize(context.Background(), failing, p), "scroll: detached")
	assert.Equal(t, []string{"scroll"}, failing.calls)

	assert.NoError(t, Humanize(context.Background(), NewStatic(StaticOptions{}), p))
}
