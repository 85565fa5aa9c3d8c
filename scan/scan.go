// Package scan orchestrates the full pipeline for a URL: retrieval through
// the strategy chain, structured content parsing, deterministic palette
// extraction, semantic field extraction against the inference service, and
// validation. Failures inside a stage are recovered locally where the
// pipeline allows it; only terminal outcomes reach the returned Brief.
package scan

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/bloom"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Scanner wires the pipeline stages together. Retriever, Parser, Inferencer
// and Validator are required; the rest are optional refinements.
type Scanner struct {
	Retriever  sitebrief.Retriever
	Parser     sitebrief.ContentParser
	Inferencer sitebrief.Inferencer
	Validator  *sitebrief.Validator

	// Extractor and Converter, when both set, produce a Markdown rendering
	// of the main content for inference prompts.
	Extractor sitebrief.Extractor
	Converter sitebrief.Converter

	// TokenCounter, when set, bounds the Markdown context by token count.
	TokenCounter sitebrief.TokenCounter

	// RateLimiter, when set, throttles scans per domain.
	RateLimiter *DomainLimiter

	// Strategies overrides the default prompt strategy order.
	Strategies []PromptStrategy

	// AttemptTimeout bounds each inference attempt.
	AttemptTimeout time.Duration

	// Concurrency caps parallel scans in ScanBatch. Defaults to 4.
	Concurrency int
}

// promptTokenBudget caps the Markdown context folded into prompts. Parsed
// buckets (headings, navigation, blocks) are bounded separately and always
// included.
const promptTokenBudget = 8000

// Bloom filter sizing for batch URL deduplication.
const (
	dedupeExpectedURLs      = 10000
	dedupeFalsePositiveRate = 0.01
)

// Scan runs the full pipeline for one URL and always returns a Brief:
// failure is data, not control flow. A failed Brief never carries a Record;
// it does carry the palette when retrieval succeeded, since the palette is
// derived deterministically from the raw content.
func (s *Scanner) Scan(ctx context.Context, rawURL string) *sitebrief.Brief {
	if s.RateLimiter != nil {
		if host := hostOf(rawURL); host != "" {
			if err := s.RateLimiter.Wait(ctx, host); err != nil {
				return failedBrief(rawURL, sitebrief.EUNAVAILABLE, err.Error(), nil)
			}
		}
	}

	result := s.Retriever.Retrieve(ctx, rawURL)
	switch result.Status {
	case sitebrief.RetrievalRejected:
		return failedBrief(rawURL, sitebrief.EREJECTED, result.Err, nil)
	case sitebrief.RetrievalFailed:
		return failedBrief(rawURL, sitebrief.EUNAVAILABLE, result.Err, nil)
	}

	palette := sitebrief.ExtractPalette(sitebrief.HarvestColorTokens(result.RawContent))

	content, err := s.Parser.Parse(result.RawContent)
	if err != nil {
		return failedBrief(rawURL, sitebrief.ErrorCode(err), sitebrief.ErrorMessage(err), palette)
	}
	if content.Empty() {
		return failedBrief(rawURL, sitebrief.EINVALID, "no extractable content", palette)
	}

	pc := &PromptContext{
		URL:      rawURL,
		Content:  content,
		Markdown: s.markdownContext(ctx, result.RawContent),
	}

	extractor := &FieldExtractor{
		Inferencer:     s.Inferencer,
		Validator:      s.Validator,
		Strategies:     s.Strategies,
		AttemptTimeout: s.AttemptTimeout,
	}
	extraction, err := extractor.Extract(ctx, pc)
	if err != nil {
		return failedBrief(rawURL, sitebrief.ErrorCode(err), sitebrief.ErrorMessage(err), palette)
	}

	return &sitebrief.Brief{
		ID:             uuid.New().String(),
		URL:            rawURL,
		Status:         sitebrief.ScanSuccess,
		Record:         extraction.Record,
		Palette:        palette,
		QualityScore:   extraction.Report.QualityScore,
		QualityGrade:   extraction.Report.QualityGrade,
		StrategyUsed:   result.StrategyUsed,
		PromptStrategy: extraction.Strategy,
	}
}

// markdownContext renders the page's main content as Markdown for prompt
// context. Every failure here degrades to an empty context rather than
// failing the scan; the parsed buckets alone are often enough.
func (s *Scanner) markdownContext(ctx context.Context, rawHTML string) string {
	if s.Extractor == nil || s.Converter == nil {
		return ""
	}

	main, err := s.Extractor.Extract(rawHTML)
	if err != nil || main == nil || main.ContentHTML == "" {
		return ""
	}
	markdown, err := s.Converter.Convert(main.ContentHTML)
	if err != nil {
		return ""
	}

	if s.TokenCounter == nil {
		return markdown
	}
	for {
		tokens, err := s.TokenCounter.CountTokens(ctx, markdown)
		if err != nil || tokens <= promptTokenBudget {
			return markdown
		}
		if len(markdown) < 2 {
			return markdown
		}
		markdown = markdown[:len(markdown)/2]
	}
}

// ProgressEvent reports progress during a batch scan.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     string
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch scan progress.
type ProgressFunc func(event ProgressEvent)

// ScanBatch scans many URLs concurrently and returns one Brief per unique
// URL, in input order. Duplicate URLs are dropped via a Bloom filter before
// any work is dispatched; a false positive only skips a URL, which is an
// acceptable trade for constant-memory dedupe on large batches. Every URL
// yields a Brief; a failing URL never aborts the batch.
func (s *Scanner) ScanBatch(ctx context.Context, urls []string, progress ProgressFunc) []*sitebrief.Brief {
	seen := bloom.NewFilter(dedupeExpectedURLs, dedupeFalsePositiveRate)
	var unique []string
	for _, u := range urls {
		if seen.TestAndAdd(u) {
			continue
		}
		unique = append(unique, u)
	}

	total := len(unique)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	briefs := make([]*sitebrief.Brief, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range unique {
		g.Go(func() error {
			brief := s.Scan(gctx, u)
			briefs[i] = brief

			done := int(completed.Add(1))
			if progress == nil {
				return nil
			}
			if brief.Status == sitebrief.ScanFailed {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: done,
					Total:     total,
					URL:       u,
					Error:     brief.Error,
				})
			} else {
				progress(ProgressEvent{
					Type:      ProgressCompleted,
					Completed: done,
					Total:     total,
					URL:       u,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}
	return briefs
}

// ScanMerged scans several pages of the same site and merges the accepted
// records into one Brief. Pages that fail are skipped; if every page fails,
// the returned Brief is a failure carrying the last error. The palette is
// the union of per-page palettes in first-seen order, capped at the usual
// palette size.
func (s *Scanner) ScanMerged(ctx context.Context, urls []string) *sitebrief.Brief {
	if len(urls) == 0 {
		return failedBrief("", sitebrief.EINVALID, "no URLs to scan", nil)
	}

	var records []*sitebrief.ExtractionRecord
	var palette sitebrief.ColorPalette
	var strategyUsed sitebrief.StrategyName
	var promptStrategy string
	var lastCode, lastErr string

	seen := make(map[string]bool)
	for _, u := range urls {
		brief := s.Scan(ctx, u)
		if brief.Status != sitebrief.ScanSuccess {
			lastCode, lastErr = brief.ErrorCode, brief.Error
			continue
		}
		records = append(records, brief.Record)
		if strategyUsed == "" {
			strategyUsed = brief.StrategyUsed
			promptStrategy = brief.PromptStrategy
		}
		for _, color := range brief.Palette {
			if len(palette) >= sitebrief.MaxPaletteColors {
				break
			}
			if !seen[color] {
				seen[color] = true
				palette = append(palette, color)
			}
		}
	}

	if len(records) == 0 {
		if lastErr == "" {
			lastCode, lastErr = sitebrief.EUNAVAILABLE, "no pages could be scanned"
		}
		return failedBrief(urls[0], lastCode, lastErr, nil)
	}

	merged := sitebrief.Merge(records)
	score := s.Validator.QualityScore(merged)

	return &sitebrief.Brief{
		ID:             uuid.New().String(),
		URL:            urls[0],
		Status:         sitebrief.ScanSuccess,
		Record:         merged,
		Palette:        palette,
		QualityScore:   score,
		QualityGrade:   sitebrief.GradeForScore(score),
		StrategyUsed:   strategyUsed,
		PromptStrategy: promptStrategy,
	}
}

func failedBrief(url, code, message string, palette sitebrief.ColorPalette) *sitebrief.Brief {
	return &sitebrief.Brief{
		ID:        uuid.New().String(),
		URL:       url,
		Status:    sitebrief.ScanFailed,
		Palette:   palette,
		ErrorCode: code,
		Error:     message,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
