package mock

import (
	"context"

	"github.com/fwojciec/sitebrief"
)

var _ sitebrief.Inferencer = (*Inferencer)(nil)

// Inferencer is a mock implementation of sitebrief.Inferencer.
type Inferencer struct {
	GenerateFn func(ctx context.Context, systemFraming, prompt string) (string, error)
}

func (i *Inferencer) Generate(ctx context.Context, systemFraming, prompt string) (string, error) {
	return i.GenerateFn(ctx, systemFraming, prompt)
}

var _ sitebrief.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of sitebrief.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
