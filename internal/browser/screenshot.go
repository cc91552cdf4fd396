package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotDebugger saves a full-page capture when an attempt fails, so a
// layout change on the board can be diagnosed after the run.
type ScreenshotDebugger struct {
	outputDir string
	now       func() time.Time
}

// NewScreenshotDebugger returns nil when dir is empty; a nil debugger
// captures nothing.
func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	return &ScreenshotDebugger{outputDir: dir, now: time.Now}
}

// Capture stores a screenshot named after name and returns its path. It
// returns "" without error when the driver cannot take screenshots.
func (s *ScreenshotDebugger) Capture(ctx context.Context, client PageClient, name string) (string, error) {
	if s == nil {
		return "", nil
	}
	shooter, ok := client.(Screenshotter)
	if !ok {
		return "", nil
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.png", name, s.now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.outputDir, filename)
	if err := shooter.Screenshot(ctx, path); err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}
	return path, nil
}
