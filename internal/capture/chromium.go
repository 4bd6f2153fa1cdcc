package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters for the booklet print proof: US Letter at
// 96 dpi.
const (
	DefaultWidth      = 816
	DefaultHeight     = 1056
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based booklet proof.
type Options struct {
	// HTMLPath is the rendered booklet file, e.g. "output/booklet.html".
	HTMLPath string

	// OutputPath is where the PNG proof will be written, e.g.
	// "output/booklet.png".
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation.
	Timeout time.Duration
}

// BookletPNG launches a headless Chromium instance via chromedp, opens the
// written booklet over file://, and captures a full-page PNG proof at the
// requested resolution.
func BookletPNG(parentCtx context.Context, opts Options) error {
	if opts.HTMLPath == "" {
		return fmt.Errorf("capture: HTMLPath is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	abs, err := filepath.Abs(opts.HTMLPath)
	if err != nil {
		return fmt.Errorf("capture: resolve %s: %w", opts.HTMLPath, err)
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate("file://" + abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay to allow webfont/final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	return nil
}
