package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"otodom-scraper/utils"
)

const (
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	pageLoadTimeout = 60 * time.Second
)

// Options configures the Chrome process.
type Options struct {
	Headless      bool
	ChromeBin     string
	ActionTimeout time.Duration
}

// Chrome is a single browser tab driven through chromedp. Selectors are
// resolved with chromedp.BySearch, so XPath expressions work directly.
type Chrome struct {
	ctx           context.Context
	cancel        context.CancelFunc
	cancelAlloc   context.CancelFunc
	actionTimeout time.Duration
	logger        *utils.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewChrome launches the browser and opens one tab.
func NewChrome(parent context.Context, opts Options, logger *utils.Logger) (*Chrome, error) {
	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = FindChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)

	// Suppress chromedp log noise
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	actionTimeout := opts.ActionTimeout
	if actionTimeout <= 0 {
		actionTimeout = 10 * time.Second
	}

	return &Chrome{
		ctx:           ctx,
		cancel:        cancel,
		cancelAlloc:   cancelAlloc,
		actionTimeout: actionTimeout,
		logger:        logger,
	}, nil
}

// Navigate loads url and waits for the load event.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := c.scoped(ctx, pageLoadTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

// WaitInteractable waits until sel is visible and not disabled.
func (c *Chrome) WaitInteractable(ctx context.Context, sel string, timeout time.Duration) error {
	runCtx, cancel := c.scoped(ctx, timeout)
	defer cancel()

	return chromedp.Run(runCtx,
		chromedp.WaitVisible(sel, chromedp.BySearch),
		chromedp.WaitEnabled(sel, chromedp.BySearch),
	)
}

// Disabled reports whether sel carries a disabled or aria-disabled="true"
// attribute.
func (c *Chrome) Disabled(ctx context.Context, sel string) (bool, error) {
	runCtx, cancel := c.scoped(ctx, c.actionTimeout)
	defer cancel()

	var disabled, ariaDisabled string
	var hasDisabled, hasAria bool
	err := chromedp.Run(runCtx,
		chromedp.AttributeValue(sel, "disabled", &disabled, &hasDisabled, chromedp.BySearch),
		chromedp.AttributeValue(sel, "aria-disabled", &ariaDisabled, &hasAria, chromedp.BySearch),
	)
	if err != nil {
		return false, fmt.Errorf("browser: read attributes: %w", err)
	}
	return hasDisabled || (hasAria && ariaDisabled == "true"), nil
}

// Click clicks the first node matching sel.
func (c *Chrome) Click(ctx context.Context, sel string) error {
	runCtx, cancel := c.scoped(ctx, c.actionTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Click(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

// HTML returns the outer HTML of the current document.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := c.scoped(ctx, c.actionTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: outer html: %w", err)
	}
	return html, nil
}

// Close shuts the browser down. Later calls return the first result.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = chromedp.Cancel(c.ctx)
		c.cancel()
		c.cancelAlloc()
		c.logger.Debug("[browser] Session closed")
	})
	return c.closeErr
}

// scoped derives a context from the tab context that also ends when the
// caller's ctx does. The tab itself survives the returned cancel.
func (c *Chrome) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(c.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(c.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// FindChromeBinary locates Chrome/Chromium binary.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
