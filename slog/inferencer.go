package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitebrief"
)

// Ensure LoggingInferencer implements sitebrief.Inferencer.
var _ sitebrief.Inferencer = (*LoggingInferencer)(nil)

// LoggingInferencer wraps an Inferencer with debug logging. Prompt and
// response bodies are not logged, only sizes and timing.
type LoggingInferencer struct {
	next   sitebrief.Inferencer
	logger *slog.Logger
}

// NewLoggingInferencer creates a new LoggingInferencer.
func NewLoggingInferencer(next sitebrief.Inferencer, logger *slog.Logger) *LoggingInferencer {
	return &LoggingInferencer{next: next, logger: logger}
}

// Generate delegates to the wrapped inferencer and logs the operation.
func (i *LoggingInferencer) Generate(ctx context.Context, systemFraming, prompt string) (response string, err error) {
	defer func(begin time.Time) {
		i.logger.Info("inference",
			"prompt_bytes", len(prompt),
			"response_bytes", len(response),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Generate(ctx, systemFraming, prompt)
}
