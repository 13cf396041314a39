package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser is a single-page browser session.
//
// Implementations load pages, wait for elements and hand back the rendered
// HTML. WaitReady must return an error matching ErrWaitTimeout when the
// selector does not appear within timeout.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	Close() error
}

// BrowserFactory opens a new Browser session.
type BrowserFactory func(ctx context.Context) (Browser, error)

// ChromeOptions configures a ChromeBrowser.
type ChromeOptions struct {
	// Headless runs Chrome without a window.
	Headless bool

	// ExecPath overrides the Chrome binary. Empty uses the default lookup.
	ExecPath string

	// UserAgent overrides the browser User-Agent. Empty keeps Chrome's.
	UserAgent string
}

// ChromeBrowser drives a local Chrome through the DevTools protocol.
//
// Example usage:
//
//	b, err := NewChromeBrowser(ctx, ChromeOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	err = b.Navigate(ctx, "https://doyoutrackid.com/archive?month=10&year=2024")
type ChromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

var _ Browser = (*ChromeBrowser)(nil)

// NewChromeBrowser launches Chrome and opens one tab.
func NewChromeBrowser(parent context.Context, opts ChromeOptions) (*ChromeBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(parent), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &ChromeBrowser{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

// ChromeFactory returns a BrowserFactory producing ChromeBrowsers.
func ChromeFactory(opts ChromeOptions) BrowserFactory {
	return func(ctx context.Context) (Browser, error) {
		return NewChromeBrowser(ctx, opts)
	}
}

// Navigate loads url in the tab.
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, 0, chromedp.Navigate(url))
}

// WaitReady blocks until selector matches an element or timeout expires.
func (b *ChromeBrowser) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	err := b.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return ErrWaitTimeout
	}
	return err
}

// HTML returns the outer HTML of the current document.
func (b *ChromeBrowser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab and the browser process down.
func (b *ChromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// run executes actions on the tab, bounded by timeout when positive and
// cancelled together with ctx.
func (b *ChromeBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(b.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(b.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
