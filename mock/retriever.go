package mock

import (
	"context"

	"github.com/fwojciec/sitebrief"
)

var _ sitebrief.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of sitebrief.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, url string) *sitebrief.RetrievalResult
}

func (r *Retriever) Retrieve(ctx context.Context, url string) *sitebrief.RetrievalResult {
	return r.RetrieveFn(ctx, url)
}
