package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the extracted text length below which a page is treated as
// JavaScript-rendered and worth a headless render
const MinContentLength = 500

// BrowserOptions bounds a headless render
type BrowserOptions struct {
	// Timeout covers the whole render
	Timeout time.Duration
	// Hydrate is how long to wait for the platform's description container after load
	Hydrate time.Duration
}

// DefaultBrowserOptions returns the render bounds used by job ingestion
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{Timeout: 30 * time.Second, Hydrate: 5 * time.Second}
}

// ShouldUseBrowser reports whether extracted text is too short to be a job description
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Render loads url in headless Chrome and returns the rendered HTML. On known job boards
// it waits for the description container to appear; a board that never shows it still
// yields whatever rendered. Requires Chrome or Chromium on the host.
func Render(ctx context.Context, url string, opts BrowserOptions, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	defaults := DefaultBrowserOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.Hydrate <= 0 {
		opts.Hydrate = defaults.Hydrate
	}

	platform := DetectPlatform(url)
	log.Debug("starting headless browser", zap.String("url", url), zap.String("platform", string(platform)))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, opts.Timeout)
	defer cancelTimeout()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return "", fmt.Errorf("browser navigation failed: %w", err)
	}

	if sel := hydrationSelector(platform); sel != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, opts.Hydrate)
		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
			log.Debug("description container did not appear", zap.String("selector", sel), zap.Error(err))
		}
		cancelWait()
	} else {
		// unknown boards give no signal; allow one hydration window
		if err := chromedp.Run(tabCtx, chromedp.Sleep(opts.Hydrate)); err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	log.Debug("browser rendered page", zap.Int("bytes", len(html)))
	return html, nil
}

// hydrationSelector is the first board-specific content selector, or "" for unknown boards
func hydrationSelector(platform Platform) string {
	if platform == PlatformUnknown {
		return ""
	}
	return PlatformContentSelectors(platform)[0]
}
