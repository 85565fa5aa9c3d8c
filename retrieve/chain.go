// Package retrieve implements the ordered fallback chain of retrieval
// strategies. Strategies are tried strictly in priority order, cheapest
// first, and the chain returns the first one that produces non-empty
// content. Strategy failures are swallowed and recorded, never fatal to the
// chain; only "all strategies exhausted" is surfaced.
package retrieve

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/sitebrief"
)

// Strategy is one concrete retrieval method tried by the chain.
type Strategy struct {
	// Name tags successful results so callers know which method won.
	Name sitebrief.StrategyName

	// Fetcher performs the actual retrieval.
	Fetcher sitebrief.Fetcher

	// Timeout bounds this strategy's attempt. Zero means the caller's
	// context deadline alone applies.
	Timeout time.Duration

	// RetryDelays, if non-nil, enables backoff retries within this
	// strategy for transient failures.
	RetryDelays []time.Duration
}

// Chain holds an ordered list of retrieval strategies.
type Chain struct {
	strategies []Strategy
}

// NewChain creates a Chain that tries the given strategies in order.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Retrieve runs the chain for the URL. The URL is guard-checked first;
// rejected URLs produce a Rejected result without any network call.
// Parallelizing strategies is deliberately not supported: it would violate
// the prefer-cheapest-working-strategy contract.
func (c *Chain) Retrieve(ctx context.Context, rawURL string) *sitebrief.RetrievalResult {
	if err := ValidateTarget(rawURL); err != nil {
		return &sitebrief.RetrievalResult{
			Status: sitebrief.RetrievalRejected,
			Err:    sitebrief.ErrorMessage(err),
		}
	}

	var lastErr string
	for _, s := range c.strategies {
		// Stop immediately if the caller's deadline has passed; the
		// remaining strategies would only burn resources.
		if err := ctx.Err(); err != nil {
			return &sitebrief.RetrievalResult{
				Status: sitebrief.RetrievalFailed,
				Err:    err.Error(),
			}
		}

		content, err := c.attempt(ctx, s, rawURL)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		if strings.TrimSpace(content) == "" {
			lastErr = "empty content from strategy " + string(s.Name)
			continue
		}

		return &sitebrief.RetrievalResult{
			Status:       sitebrief.RetrievalSuccess,
			StrategyUsed: s.Name,
			RawContent:   content,
			ContentHash:  sitebrief.ContentHash(content),
		}
	}

	if lastErr == "" {
		lastErr = "no retrieval strategies configured"
	}
	return &sitebrief.RetrievalResult{
		Status: sitebrief.RetrievalFailed,
		Err:    lastErr,
	}
}

// attempt runs one strategy with its timeout, retrying transient failures
// on the strategy's backoff schedule. Terminal errors end the strategy
// immediately so the chain can fall through.
func (c *Chain) attempt(ctx context.Context, s Strategy, rawURL string) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		content, err := s.Fetcher.Fetch(ctx, rawURL)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt >= len(s.RetryDelays) || !retryable(err) {
			return "", lastErr
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.RetryDelays[attempt]):
		}
	}
}
