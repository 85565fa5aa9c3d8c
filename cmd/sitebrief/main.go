package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/gemini"
	sbgoquery "github.com/fwojciec/sitebrief/goquery"
	sbhttp "github.com/fwojciec/sitebrief/http"
	"github.com/fwojciec/sitebrief/htmltomarkdown"
	"github.com/fwojciec/sitebrief/readability"
	"github.com/fwojciec/sitebrief/retrieve"
	"github.com/fwojciec/sitebrief/rod"
	"github.com/fwojciec/sitebrief/scan"
	sbslog "github.com/fwojciec/sitebrief/slog"
	"github.com/fwojciec/sitebrief/sqlite"
	"github.com/fwojciec/sitebrief/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Service for end-to-end testing.
	BriefService sitebrief.BriefService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitebrief"),
		kong.Description("Extract structured brand briefs from websites"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitebrief --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(stderr, "Hint: Set SITEBRIEF_DB to use a different database path")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.BriefService = sqlite.NewBriefService(m.DB)
	deps.Briefs = m.BriefService

	// Scanning commands need the full pipeline wired up.
	if cmd == "scan" || cmd == "batch" {
		useCache := cli.Scan.Cache || cli.Batch.Cache
		scanner, cleanup, err := m.buildScanner(ctx, cli, useCache, stderr)
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Scanner = scanner
	}

	return kongCtx.Run(deps)
}

// cacheTTL bounds how long cached pages are served before refetching.
const cacheTTL = 24 * time.Hour

// tokenizerModel is used for token counting.
const tokenizerModel = "gemini-2.5-flash"

// buildScanner wires the retrieval chain, parser, inference service and
// validator into a Scanner. The returned cleanup closes the fetchers.
func (m *Main) buildScanner(ctx context.Context, cli *CLI, useCache bool, stderr io.Writer) (*scan.Scanner, func(), error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	timeout := cli.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var closers []func() error
	wrap := func(f sitebrief.Fetcher, name string) sitebrief.Fetcher {
		closers = append(closers, f.Close)
		if useCache {
			f = sqlite.NewCachingFetcher(m.DB, f, cacheTTL)
		}
		if logger != nil {
			f = sbslog.NewLoggingFetcher(f, name, logger)
		}
		return f
	}

	strategies := []retrieve.Strategy{{
		Name:        sitebrief.StrategyHTTP,
		Fetcher:     wrap(sbhttp.NewFetcher(sbhttp.WithTimeout(timeout)), string(sitebrief.StrategyHTTP)),
		Timeout:     timeout,
		RetryDelays: retrieve.DefaultRetryDelays(),
	}}

	if !cli.NoRender {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --no-render")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}

		renderTimeout := 3 * timeout
		rendered := rod.NewFetcherWithManager(manager, rod.WithFetchTimeout(renderTimeout))
		spa := rod.NewFetcherWithManager(manager, rod.WithFetchTimeout(renderTimeout), rod.WithWaitStable())

		strategies = append(strategies,
			retrieve.Strategy{
				Name:    sitebrief.StrategyRendered,
				Fetcher: wrap(rendered, string(sitebrief.StrategyRendered)),
				Timeout: renderTimeout,
			},
			retrieve.Strategy{
				Name:    sitebrief.StrategyRenderedSPA,
				Fetcher: wrap(spa, string(sitebrief.StrategyRenderedSPA)),
				Timeout: renderTimeout,
			},
		)
	}

	var inferencer sitebrief.Inferencer = gemini.NewInferencer(client)
	if logger != nil {
		inferencer = sbslog.NewLoggingInferencer(inferencer, logger)
	}

	// Token counting is an optimization; scanning works without it.
	var tokenCounter sitebrief.TokenCounter
	if tc, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
		tokenCounter = tc
	}

	scanner := &scan.Scanner{
		Retriever:    retrieve.NewChain(strategies...),
		Parser:       sbgoquery.NewParser(sbgoquery.WithFallback(readability.NewExtractor())),
		Inferencer:   inferencer,
		Validator:    sitebrief.NewValidator(sitebrief.DefaultValidatorConfig()),
		Extractor:    trafilatura.NewExtractor(),
		Converter:    htmltomarkdown.NewConverter(),
		TokenCounter: tokenCounter,
		RateLimiter:  scan.NewDomainLimiter(1.0),
		Concurrency:  cli.Batch.Concurrency,
	}

	cleanup := func() {
		// Fetchers may share one browser manager; Close is idempotent.
		for _, close := range closers {
			_ = close()
		}
	}
	return scanner, cleanup, nil
}

func defaultDBPath() string {
	if path := os.Getenv("SITEBRIEF_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitebrief.db"
	}
	dir := filepath.Join(home, ".sitebrief")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitebrief.db")
}
