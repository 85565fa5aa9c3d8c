package scan_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitebrief"
	sbgoquery "github.com/fwojciec/sitebrief/goquery"
	"github.com/fwojciec/sitebrief/mock"
	"github.com/fwojciec/sitebrief/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acmePage is a complete marketing page for a fictional robotics company,
// with brand colors in a style block.
const acmePage = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Robotics — Automate Everything</title>
	<meta name="description" content="Autonomous picking robots for mid-size warehouses.">
	<style>
		.hero { background: #1a2b3c; color: #e8491d; }
		.cta { background: #1a2b3c; border-color: #2ecc71; }
		body { background: #ffffff; color: #000000; }
	</style>
</head>
<body>
	<nav><a href="/products">Products</a><a href="/pricing">Pricing</a><a href="/about">About</a></nav>
	<h1>Acme Robotics</h1>
	<main>
		<h2>Warehouse automation that scales</h2>
		<p>Acme Robotics builds autonomous picking robots for mid-size warehouses, cutting fulfillment costs without a forklift replacement project.</p>
		<h2>Built for operations teams</h2>
		<p>Operations teams deploy our fleet in days, not months, with no custom integration work required up front.</p>
	</main>
</body>
</html>`

const acmeBriefResponse = `{
  "entityName": "Acme Robotics",
  "positioningStatement": "Acme Robotics builds autonomous picking robots for mid-size warehouses, cutting fulfillment costs.",
  "keyMessages": ["Warehouse automation that scales", "Deploy our fleet in days, not months"],
  "targetAudience": "Operations teams at mid-size warehouses",
  "personalityTraits": ["practical", "confident"],
  "confidenceScores": {"entityName": 0.95, "positioningStatement": 0.85, "overall": 0.85}
}`

func successRetriever(content string, strategy sitebrief.StrategyName) *mock.Retriever {
	return &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			return &sitebrief.RetrievalResult{
				Status:       sitebrief.RetrievalSuccess,
				StrategyUsed: strategy,
				RawContent:   content,
				ContentHash:  sitebrief.ContentHash(content),
			}
		},
	}
}

func acmeScanner(retriever sitebrief.Retriever) *scan.Scanner {
	return &scan.Scanner{
		Retriever: retriever,
		Parser:    sbgoquery.NewParser(),
		Inferencer: &mock.Inferencer{
			GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
				return acmeBriefResponse, nil
			},
		},
		Validator: sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
	}
}

func TestScanner_Scan_Success(t *testing.T) {
	t.Parallel()

	scanner := acmeScanner(successRetriever(acmePage, sitebrief.StrategyHTTP))
	brief := scanner.Scan(context.Background(), "https://acme-robotics.example")

	require.Equal(t, sitebrief.ScanSuccess, brief.Status)
	require.NotNil(t, brief.Record)
	assert.NotEmpty(t, brief.ID)
	assert.Equal(t, "https://acme-robotics.example", brief.URL)
	assert.Equal(t, "Acme Robotics", brief.Record.EntityName)
	assert.Equal(t, sitebrief.StrategyHTTP, brief.StrategyUsed)
	assert.Equal(t, "detailed", brief.PromptStrategy)
	assert.Greater(t, brief.QualityScore, 0.5)
	assert.Empty(t, brief.Error)

	// Few enough distinct brand colors survive filtering that they pass
	// through in first-seen order; near-white and near-black page colors
	// are filtered out.
	require.NotEmpty(t, brief.Palette)
	assert.Equal(t, "#1a2b3c", brief.Palette[0])
	assert.Contains(t, brief.Palette, "#e8491d")
	assert.Contains(t, brief.Palette, "#2ecc71")
	assert.NotContains(t, brief.Palette, "#ffffff")
	assert.NotContains(t, brief.Palette, "#000000")
}

func TestScanner_Scan_DeterministicPalette(t *testing.T) {
	t.Parallel()

	scanner := acmeScanner(successRetriever(acmePage, sitebrief.StrategyHTTP))

	first := scanner.Scan(context.Background(), "https://acme-robotics.example")
	second := scanner.Scan(context.Background(), "https://acme-robotics.example")
	assert.Equal(t, first.Palette, second.Palette)
}

func TestScanner_Scan_RetrievalFailed(t *testing.T) {
	t.Parallel()

	retriever := &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			return &sitebrief.RetrievalResult{
				Status: sitebrief.RetrievalFailed,
				Err:    "context deadline exceeded",
			}
		},
	}
	scanner := acmeScanner(retriever)

	brief := scanner.Scan(context.Background(), "https://unreachable.example")
	require.Equal(t, sitebrief.ScanFailed, brief.Status)
	assert.Nil(t, brief.Record, "a failed brief must not carry a record")
	assert.Equal(t, sitebrief.EUNAVAILABLE, brief.ErrorCode)
	assert.Contains(t, brief.Error, "deadline")
}

func TestScanner_Scan_RejectedURL(t *testing.T) {
	t.Parallel()

	retriever := &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			return &sitebrief.RetrievalResult{
				Status: sitebrief.RetrievalRejected,
				Err:    "URL resolves to a private address",
			}
		},
	}
	scanner := acmeScanner(retriever)

	brief := scanner.Scan(context.Background(), "http://localhost/admin")
	require.Equal(t, sitebrief.ScanFailed, brief.Status)
	assert.Nil(t, brief.Record)
	assert.Equal(t, sitebrief.EREJECTED, brief.ErrorCode)
}

func TestScanner_Scan_ExhaustedStrategiesKeepPalette(t *testing.T) {
	t.Parallel()

	scanner := acmeScanner(successRetriever(acmePage, sitebrief.StrategyRendered))
	scanner.Inferencer = &mock.Inferencer{
		GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
			return "nothing useful", nil
		},
	}

	brief := scanner.Scan(context.Background(), "https://acme-robotics.example")
	require.Equal(t, sitebrief.ScanFailed, brief.Status)
	assert.Nil(t, brief.Record)
	assert.Equal(t, sitebrief.EEXHAUSTED, brief.ErrorCode)
	assert.NotEmpty(t, brief.Palette, "palette is deterministic and survives semantic failure")
}

func TestScanner_Scan_EmptyContent(t *testing.T) {
	t.Parallel()

	scanner := acmeScanner(successRetriever("<html><body></body></html>", sitebrief.StrategyHTTP))

	brief := scanner.Scan(context.Background(), "https://blank.example")
	require.Equal(t, sitebrief.ScanFailed, brief.Status)
	assert.Equal(t, sitebrief.EINVALID, brief.ErrorCode)
}

func TestScanner_Scan_MarkdownContextInPrompt(t *testing.T) {
	t.Parallel()

	var sawMarkdown atomic.Bool
	scanner := acmeScanner(successRetriever(acmePage, sitebrief.StrategyHTTP))
	scanner.Extractor = &mock.Extractor{
		ExtractFn: func(rawHTML string) (*sitebrief.MainContent, error) {
			return &sitebrief.MainContent{Title: "Acme Robotics", ContentHTML: "<p>fleet details</p>"}, nil
		},
	}
	scanner.Converter = &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return "fleet details as markdown", nil
		},
	}
	scanner.Inferencer = &mock.Inferencer{
		GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
			if strings.Contains(prompt, "fleet details as markdown") {
				sawMarkdown.Store(true)
			}
			return acmeBriefResponse, nil
		},
	}

	brief := scanner.Scan(context.Background(), "https://acme-robotics.example")
	require.Equal(t, sitebrief.ScanSuccess, brief.Status)
	assert.True(t, sawMarkdown.Load())
}

func TestScanner_ScanBatch(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	retriever := &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			fetches.Add(1)
			if strings.Contains(url, "down") {
				return &sitebrief.RetrievalResult{
					Status: sitebrief.RetrievalFailed,
					Err:    "connection refused",
				}
			}
			return &sitebrief.RetrievalResult{
				Status:       sitebrief.RetrievalSuccess,
				StrategyUsed: sitebrief.StrategyHTTP,
				RawContent:   acmePage,
				ContentHash:  sitebrief.ContentHash(acmePage),
			}
		},
	}
	scanner := acmeScanner(retriever)
	scanner.Concurrency = 2

	urls := []string{
		"https://acme-robotics.example",
		"https://down.example",
		"https://acme-robotics.example", // duplicate, must be skipped
		"https://acme-two.example",
	}

	// Started and Finished fire from the calling goroutine, so collecting
	// just those two avoids racing with per-URL events from workers.
	var events []scan.ProgressEvent
	progress := func(e scan.ProgressEvent) {
		switch e.Type {
		case scan.ProgressStarted, scan.ProgressFinished:
			events = append(events, e)
		}
	}

	briefs := scanner.ScanBatch(context.Background(), urls, progress)

	require.Len(t, briefs, 3, "duplicate URL must be deduplicated")
	assert.Equal(t, int64(3), fetches.Load())

	byURL := make(map[string]*sitebrief.Brief)
	for _, b := range briefs {
		byURL[b.URL] = b
	}
	assert.Equal(t, sitebrief.ScanSuccess, byURL["https://acme-robotics.example"].Status)
	assert.Equal(t, sitebrief.ScanFailed, byURL["https://down.example"].Status)
	assert.Equal(t, sitebrief.ScanSuccess, byURL["https://acme-two.example"].Status)

	require.Len(t, events, 2)
	assert.Equal(t, 3, events[0].Total)
}

func TestScanner_ScanBatch_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	scanner := acmeScanner(successRetriever(acmePage, sitebrief.StrategyHTTP))
	scanner.Concurrency = 4

	urls := []string{
		"https://a.example",
		"https://b.example",
		"https://c.example",
	}
	briefs := scanner.ScanBatch(context.Background(), urls, nil)

	require.Len(t, briefs, 3)
	for i, b := range briefs {
		assert.Equal(t, urls[i], b.URL)
	}
}

func TestScanner_ScanMerged(t *testing.T) {
	t.Parallel()

	responses := map[string]string{
		"https://acme-robotics.example": acmeBriefResponse,
		"https://acme-robotics.example/about": `{
			"entityName": "Acme Robotics",
			"positioningStatement": "Acme builds robots.",
			"keyMessages": ["Warehouse automation that scales", "No custom integration work required"],
			"personalityTraits": ["practical", "rigorous"],
			"confidenceScores": {"overall": 0.7}
		}`,
	}

	var currentURL atomic.Value
	retriever := &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			currentURL.Store(url)
			return &sitebrief.RetrievalResult{
				Status:       sitebrief.RetrievalSuccess,
				StrategyUsed: sitebrief.StrategyHTTP,
				RawContent:   acmePage,
				ContentHash:  sitebrief.ContentHash(acmePage),
			}
		},
	}
	scanner := acmeScanner(retriever)
	scanner.Inferencer = &mock.Inferencer{
		GenerateFn: func(ctx context.Context, systemFraming, prompt string) (string, error) {
			return responses[currentURL.Load().(string)], nil
		},
	}

	brief := scanner.ScanMerged(context.Background(), []string{
		"https://acme-robotics.example",
		"https://acme-robotics.example/about",
	})

	require.Equal(t, sitebrief.ScanSuccess, brief.Status)
	require.NotNil(t, brief.Record)
	assert.Equal(t, "Acme Robotics", brief.Record.EntityName)
	// Union keeps first-seen order and drops the shared message's duplicate.
	assert.Equal(t, []string{
		"Warehouse automation that scales",
		"Deploy our fleet in days, not months",
		"No custom integration work required",
	}, brief.Record.KeyMessages)
	assert.ElementsMatch(t, []string{"practical", "confident", "rigorous"}, brief.Record.PersonalityTraits)
	assert.Equal(t, "https://acme-robotics.example", brief.URL)
}

func TestScanner_ScanMerged_AllPagesFail(t *testing.T) {
	t.Parallel()

	retriever := &mock.Retriever{
		RetrieveFn: func(ctx context.Context, url string) *sitebrief.RetrievalResult {
			return &sitebrief.RetrievalResult{
				Status: sitebrief.RetrievalFailed,
				Err:    "connection refused",
			}
		},
	}
	scanner := acmeScanner(retriever)

	brief := scanner.ScanMerged(context.Background(), []string{"https://down.example"})
	require.Equal(t, sitebrief.ScanFailed, brief.Status)
	assert.Nil(t, brief.Record)
	assert.Equal(t, sitebrief.EUNAVAILABLE, brief.ErrorCode)
}

func TestDomainLimiter_ThrottlesSameDomain(t *testing.T) {
	t.Parallel()

	limiter := scan.NewDomainLimiter(20) // 50ms between requests

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), "acme.example"))
	require.NoError(t, limiter.Wait(context.Background(), "acme.example"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDomainLimiter_DomainsIndependent(t *testing.T) {
	t.Parallel()

	limiter := scan.NewDomainLimiter(1)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), "a.example"))
	require.NoError(t, limiter.Wait(context.Background(), "b.example"))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDomainLimiter_ContextCancellation(t *testing.T) {
	t.Parallel()

	limiter := scan.NewDomainLimiter(0.1)
	require.NoError(t, limiter.Wait(context.Background(), "slow.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx, "slow.example"))
}
