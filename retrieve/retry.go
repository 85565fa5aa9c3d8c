package retrieve

import (
	"time"

	"github.com/fwojciec/sitebrief"
)

// DefaultRetryDelays returns the backoff schedule for transient failures
// within a single strategy: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// retryable reports whether a strategy error is worth another attempt on
// the same strategy. Terminal errors (a malformed request, a missing page,
// a rejected target) will keep failing identically; the chain is better off
// moving straight to the next strategy.
func retryable(err error) bool {
	switch sitebrief.ErrorCode(err) {
	case sitebrief.EINVALID, sitebrief.ENOTFOUND, sitebrief.EREJECTED:
		return false
	}
	return true
}
