// Package rod provides browser-based implementations of sitebrief.Fetcher
// using Chrome automation. Two variants exist: a plain rendered fetch with a
// fixed post-load settle delay, and an SPA-tuned fetch that additionally
// waits for the DOM to stop mutating before reading the HTML.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/sitebrief"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is the default timeout for rendered fetches. Longer
// than the HTTP strategy's timeout because a full browser navigation is
// expected to be slow.
const DefaultFetchTimeout = 30 * time.Second

// DefaultSettleDelay is the fixed delay after load before reading HTML,
// giving late scripts a chance to populate content.
const DefaultSettleDelay = 2 * time.Second

// domStableWindow is the quiet period WaitDOMStable requires before the
// SPA variant considers rendering finished.
const domStableWindow = 300 * time.Millisecond

// Ensure Fetcher implements sitebrief.Fetcher at compile time.
var _ sitebrief.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager     *BrowserManager
	timeout     time.Duration
	settleDelay time.Duration
	waitStable  bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch timeout.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleDelay sets the fixed post-load delay before reading HTML.
// Defaults to DefaultSettleDelay (2s).
func WithSettleDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settleDelay = d
	}
}

// WithWaitStable makes the fetcher wait for the DOM to stop mutating after
// the settle delay. Tuned for single-page applications that render after
// the load event.
func WithWaitStable() Option {
	return func(f *Fetcher) {
		f.waitStable = true
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	return NewFetcherWithManager(manager, opts...), nil
}

// NewFetcherWithManager creates a Fetcher on an existing BrowserManager.
// Multiple fetcher variants may share one manager; Close closes the manager
// and is safe to call from each of them.
func NewFetcherWithManager(manager *BrowserManager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager:     manager,
		timeout:     DefaultFetchTimeout,
		settleDelay: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to the URL and returns the rendered HTML. The page is
// closed on every exit path, including timeout and cancellation.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	// Bind the page to the fetch context so cancellation interrupts all
	// subsequent browser operations.
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}

	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if f.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.settleDelay):
		}
	}

	if f.waitStable {
		if err := f.waitDOMStable(page); err != nil {
			return "", err
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.IncrementPageCount()

	return html, nil
}

// waitDOMStable waits until the DOM has not mutated for domStableWindow.
func (f *Fetcher) waitDOMStable(page *rod.Page) error {
	return page.WaitDOMStable(domStableWindow, 0)
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
