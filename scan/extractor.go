package scan

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/sitebrief"
)

// Extraction is the outcome of a successful semantic extraction: the
// accepted record, its validation report, and which attempt produced it.
type Extraction struct {
	Record   *sitebrief.ExtractionRecord
	Report   sitebrief.ValidationReport
	Strategy string
	Attempts int
}

// FieldExtractor turns parsed page content into a validated extraction
// record by asking the inference service with each prompt strategy in turn.
// The first candidate that passes validation wins; remaining strategies are
// not consulted. A malformed response is treated the same as a candidate
// that fails validation, so one bad completion never aborts the run.
type FieldExtractor struct {
	Inferencer sitebrief.Inferencer
	Validator  *sitebrief.Validator

	// Strategies overrides DefaultStrategies when non-nil.
	Strategies []PromptStrategy

	// AttemptTimeout bounds each inference call. Zero means the caller's
	// context deadline alone applies.
	AttemptTimeout time.Duration
}

// Extract runs the strategy loop. On exhaustion it returns an EEXHAUSTED
// error carrying the last attempt's failure; the caller decides how to
// surface that.
func (e *FieldExtractor) Extract(ctx context.Context, pc *PromptContext) (*Extraction, error) {
	strategies := e.Strategies
	if strategies == nil {
		strategies = DefaultStrategies()
	}

	var lastIssue string
	attempts := 0

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempts++

		record, issue := e.attempt(ctx, strategy, pc)
		if record != nil {
			report := e.Validator.Validate(record, pc.Content)
			if report.IsValid {
				return &Extraction{
					Record:   record,
					Report:   report,
					Strategy: strategy.Name,
					Attempts: attempts,
				}, nil
			}
			issue = strings.Join(report.Issues, "; ")
		}
		lastIssue = strategy.Name + ": " + issue
	}

	if lastIssue == "" {
		lastIssue = "no prompt strategies configured"
	}
	return nil, sitebrief.Errorf(sitebrief.EEXHAUSTED, "all %d prompt strategies failed, last: %s", attempts, lastIssue)
}

// attempt runs one strategy and returns a candidate record, or nil with the
// reason no candidate could be produced.
func (e *FieldExtractor) attempt(ctx context.Context, strategy PromptStrategy, pc *PromptContext) (*sitebrief.ExtractionRecord, string) {
	if e.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.AttemptTimeout)
		defer cancel()
	}

	output, err := e.Inferencer.Generate(ctx, strategy.SystemFraming, strategy.Build(pc))
	if err != nil {
		return nil, "inference failed: " + err.Error()
	}

	payload, ok := FirstJSONObject(output)
	if !ok {
		return nil, "no JSON object in model output"
	}

	var record sitebrief.ExtractionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, "malformed JSON payload: " + err.Error()
	}

	normalizeRecord(&record, pc.URL)
	return &record, ""
}

// normalizeRecord trims whitespace, drops blank list entries and fills the
// website URL from the scanned URL when the model left it out.
func normalizeRecord(r *sitebrief.ExtractionRecord, url string) {
	r.EntityName = strings.TrimSpace(r.EntityName)
	r.PositioningStatement = strings.TrimSpace(r.PositioningStatement)
	r.TargetAudience = strings.TrimSpace(r.TargetAudience)
	r.WebsiteURL = strings.TrimSpace(r.WebsiteURL)
	r.KeyMessages = trimList(r.KeyMessages)
	r.PersonalityTraits = trimList(r.PersonalityTraits)
	if r.WebsiteURL == "" {
		r.WebsiteURL = url
	}
}

func trimList(in []string) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
