package scan_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/mock"
	"github.com/fwojciec/sitebrief/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acmeContent is parsed content for a fictional robotics company, rich
// enough to pass source cross-checking.
func acmeContent() *sitebrief.ParsedContent {
	c := sitebrief.NewParsedContent()
	c.Headings[1] = []string{"Acme Robotics"}
	c.Headings[2] = []string{"Warehouse automation that scales", "Built for operations teams"}
	c.MetaTags["title"] = "Acme Robotics — Automate Everything"
	c.MainContentBlocks = []string{
		"Acme Robotics builds autonomous picking robots for mid-size warehouses.",
		"Operations teams deploy our fleet in days, not months.",
	}
	c.VisibleText = "Acme Robotics builds autonomous picking robots for mid-size warehouses. " +
		"Warehouse automation that scales. Operations teams deploy our fleet in days, not months."
	return c
}

const acmeResponse = `{
  "entityName": "Acme Robotics",
  "positioningStatement": "Acme Robotics builds autonomous picking robots for mid-size warehouses.",
  "keyMessages": ["Warehouse automation that scales", "Deploy our fleet in days, not months"],
  "targetAudience": "Operations teams at mid-size warehouses",
  "personalityTraits": ["practical", "confident"],
  "confidenceScores": {"entityName": 0.95, "overall": 0.85}
}`

func TestFieldExtractor_FirstStrategyWins(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				calls.Add(1)
				return "Sure! Here is the brief:\n" + acmeResponse, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	extraction, err := extractor.Extract(context.Background(), pc)
	require.NoError(t, err)

	assert.Equal(t, "Acme Robotics", extraction.Record.EntityName)
	assert.Equal(t, "detailed", extraction.Strategy)
	assert.Equal(t, 1, extraction.Attempts)
	assert.Equal(t, int64(1), calls.Load(), "later strategies must not run after an accepted record")
	assert.True(t, extraction.Report.IsValid)
}

func TestFieldExtractor_FallsThroughToLaterStrategy(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				if calls.Add(1) == 1 {
					return "no JSON at all, sorry", nil
				}
				return acmeResponse, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	extraction, err := extractor.Extract(context.Background(), pc)
	require.NoError(t, err)

	assert.Equal(t, "simplified", extraction.Strategy)
	assert.Equal(t, 2, extraction.Attempts)
}

func TestFieldExtractor_MalformedJSONIsNonFatal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				if calls.Add(1) == 1 {
					return `{"entityName": truncated`, nil
				}
				return acmeResponse, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	extraction, err := extractor.Extract(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, 2, extraction.Attempts)
}

func TestFieldExtractor_Exhaustion(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				calls.Add(1)
				return `{"entityName": ""}`, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	extraction, err := extractor.Extract(context.Background(), pc)
	require.Error(t, err)
	assert.Nil(t, extraction)
	assert.Equal(t, sitebrief.EEXHAUSTED, sitebrief.ErrorCode(err))
	assert.Equal(t, int64(3), calls.Load(), "every strategy must be tried before giving up")
}

func TestFieldExtractor_PlaceholderRecordRejected(t *testing.T) {
	t.Parallel()

	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				return `{
					"entityName": "Your Company Name",
					"positioningStatement": "Lorem ipsum dolor sit amet consectetur.",
					"confidenceScores": {"overall": 0.9}
				}`, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	_, err := extractor.Extract(context.Background(), pc)
	require.Error(t, err)
	assert.Equal(t, sitebrief.EEXHAUSTED, sitebrief.ErrorCode(err))
}

func TestFieldExtractor_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				t.Fatal("inferencer must not be called after cancellation")
				return "", nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	_, err := extractor.Extract(ctx, pc)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFieldExtractor_FillsWebsiteURL(t *testing.T) {
	t.Parallel()

	extractor := &scan.FieldExtractor{
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				return acmeResponse, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}

	pc := &scan.PromptContext{URL: "https://acme-robotics.example", Content: acmeContent()}
	extraction, err := extractor.Extract(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, "https://acme-robotics.example", extraction.Record.WebsiteURL)
}
