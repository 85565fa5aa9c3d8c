package sitebrief

import "encoding/json"

// ParsedContent is a web page decomposed into semantic buckets. All
// collections are order-preserving and never nil; absent data is an empty
// collection or string. Deduplication is left to downstream consumers.
type ParsedContent struct {
	// Headings maps heading level (1-6) to the headings found at that
	// level, in document order. Levels are never collapsed.
	Headings map[int][]string

	// NavigationLabels holds short link labels found under navigation
	// containers, in document order.
	NavigationLabels []string

	// MainContentBlocks holds visible text blocks from the main content
	// area, each truncated to a per-block cap.
	MainContentBlocks []string

	// MetaTags maps meta name/property to content. The page title is
	// stored under "title".
	MetaTags map[string]string

	// StructuredData holds raw JSON-LD payloads that parsed as valid
	// JSON. Malformed blobs are skipped during extraction.
	StructuredData []json.RawMessage

	// VisibleText is the page's visible text collapsed to single spaces,
	// used for source cross-checking during validation.
	VisibleText string
}

// NewParsedContent returns a ParsedContent with all collections initialized.
func NewParsedContent() *ParsedContent {
	return &ParsedContent{
		Headings:          make(map[int][]string),
		NavigationLabels:  []string{},
		MainContentBlocks: []string{},
		MetaTags:          make(map[string]string),
		StructuredData:    []json.RawMessage{},
	}
}

// Empty returns true if no headings, blocks, meta tags or visible text were
// extracted.
func (p *ParsedContent) Empty() bool {
	return len(p.Headings) == 0 &&
		len(p.MainContentBlocks) == 0 &&
		len(p.MetaTags) == 0 &&
		p.VisibleText == ""
}

// AllHeadings returns headings across all levels, level 1 first, preserving
// document order within each level.
func (p *ParsedContent) AllHeadings() []string {
	var out []string
	for level := 1; level <= 6; level++ {
		out = append(out, p.Headings[level]...)
	}
	return out
}

// ContentParser turns raw markup into a ParsedContent.
type ContentParser interface {
	// Parse extracts semantic buckets from raw HTML. It never returns a
	// nil ParsedContent alongside a nil error.
	Parse(rawHTML string) (*ParsedContent, error)
}

// MainContent holds boilerplate-free main content extracted from a page.
type MainContent struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML, with navigation,
	// footers, sidebars and ads removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// Used both as the parser's relaxed fallback and to build compact prompt
// context for the inference service.
type Extractor interface {
	Extract(rawHTML string) (*MainContent, error)
}

// Converter converts HTML content into Markdown. Used to compress page
// content for inference prompts while keeping structure.
type Converter interface {
	Convert(html string) (string, error)
}
