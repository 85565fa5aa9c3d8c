package sitebrief

import "context"

// Inferencer is the boundary to the external inference service. It receives
// a system framing and a prompt and returns free-form text that may or may
// not contain a well-formed JSON payload; callers must locate and validate
// any structured content themselves. No schema is enforced on the wire.
type Inferencer interface {
	Generate(ctx context.Context, systemFraming, prompt string) (string, error)
}

// TokenCounter counts inference tokens in text. Used to bound prompt size.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
