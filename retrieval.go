package sitebrief

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// RetrievalStatus describes the outcome of a retrieval chain invocation.
type RetrievalStatus string

// RetrievalStatus values.
const (
	// RetrievalSuccess indicates one of the strategies returned content.
	RetrievalSuccess RetrievalStatus = "success"

	// RetrievalFailed indicates every strategy was tried and none
	// produced content.
	RetrievalFailed RetrievalStatus = "failed"

	// RetrievalRejected indicates the URL was refused by scheme/host
	// checks before any network call was made.
	RetrievalRejected RetrievalStatus = "rejected"
)

// StrategyName identifies a retrieval strategy within the chain.
type StrategyName string

// Well-known strategy names, in default priority order.
const (
	StrategyHTTP        StrategyName = "http"
	StrategyRendered    StrategyName = "rendered"
	StrategyRenderedSPA StrategyName = "rendered-spa"
)

// RetrievalResult is the immutable outcome of one retrieval chain
// invocation. RawContent is empty unless Status is RetrievalSuccess.
type RetrievalResult struct {
	Status       RetrievalStatus
	StrategyUsed StrategyName
	RawContent   string
	ContentHash  string
	Err          string
}

// Retrieved returns true if the result carries usable content.
func (r *RetrievalResult) Retrieved() bool {
	return r.Status == RetrievalSuccess && r.RawContent != ""
}

// ContentHash computes a stable fingerprint of retrieved content using
// xxhash. Used for result tagging and as a cache key.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Retriever runs a full retrieval chain invocation for a URL. The result is
// data, not control flow: strategy failures are recovered inside the chain
// and only the terminal outcome is reported.
type Retriever interface {
	Retrieve(ctx context.Context, url string) *RetrievalResult
}

// Fetcher retrieves HTML from URLs. Implementations may use plain HTTP or
// browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL and returns the HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases underlying resources (browser sessions, pools).
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
