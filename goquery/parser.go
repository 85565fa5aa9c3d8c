// Package goquery provides a CSS-selector based implementation of
// sitebrief.ContentParser. It decomposes raw HTML into the semantic buckets
// the semantic extractor feeds on: headings, navigation labels,
// main-content blocks, meta tags, and structured-data payloads.
package goquery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitebrief"
)

// Selection bounds. Navigation labels are kept short to exclude content
// blocks that happen to sit inside navigation containers; main-content
// blocks are truncated to cap downstream prompt size.
const (
	minNavLabelLen = 2
	maxNavLabelLen = 50

	minBlockLen = 50
	maxBlockLen = 2000

	// relaxed bounds used by the fallback pass
	minFallbackBlockLen = 25

	// maxFallbackBlocks stops the fallback pass before it degenerates
	// into an unbounded scan of the whole document.
	maxFallbackBlocks = 3
)

// navSelector matches anchor-like elements under navigation-ish containers.
const navSelector = "nav a, header a, [role='navigation'] a, .nav a, .navbar a, .menu a"

// blockSelector matches likely main-content elements.
const blockSelector = "main p, main li, article p, article li, section p, .content p, #content p"

// Ensure Parser implements sitebrief.ContentParser at compile time.
var _ sitebrief.ContentParser = (*Parser)(nil)

// Parser turns raw markup into a sitebrief.ParsedContent.
type Parser struct {
	fallback sitebrief.Extractor
}

// Option configures a Parser.
type Option func(*Parser)

// WithFallback sets the extractor used when neither the primary nor the
// relaxed selector pass finds any content blocks.
func WithFallback(e sitebrief.Extractor) Option {
	return func(p *Parser) {
		p.fallback = e
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts semantic buckets from raw HTML. Collections are
// order-preserving and never nil; a malformed structured-data blob is
// skipped, never fatal.
func (p *Parser) Parse(rawHTML string) (*sitebrief.ParsedContent, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sitebrief.Errorf(sitebrief.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sitebrief.Errorf(sitebrief.EINVALID, "failed to parse HTML: %v", err)
	}

	content := sitebrief.NewParsedContent()

	// Structured data must be read before non-content markup is stripped.
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" || !json.Valid([]byte(raw)) {
			return
		}
		content.StructuredData = append(content.StructuredData, json.RawMessage(raw))
	})

	// Meta tags are in head, unaffected by the strip below.
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		content.MetaTags["title"] = title
	}
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("name")
		if !ok {
			key, ok = sel.Attr("property")
		}
		if !ok || key == "" {
			return
		}
		if value, ok := sel.Attr("content"); ok && value != "" {
			content.MetaTags[key] = value
		}
	})

	// Strip non-content markup before any text extraction.
	doc.Find("script, style, noscript, template").Remove()

	// Headings, each level walked independently.
	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, sel *goquery.Selection) {
			if text := collapse(sel.Text()); text != "" {
				content.Headings[level] = append(content.Headings[level], text)
			}
		})
	}

	// Navigation labels.
	doc.Find(navSelector).Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		if n := len(text); n >= minNavLabelLen && n <= maxNavLabelLen {
			content.NavigationLabels = append(content.NavigationLabels, text)
		}
	})

	// Main-content blocks.
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		if len(text) < minBlockLen {
			return
		}
		content.MainContentBlocks = append(content.MainContentBlocks, truncate(text, maxBlockLen))
	})

	content.VisibleText = collapse(doc.Find("body").Text())

	// Fallback pass: when the primary selectors find neither headings nor
	// content blocks, relax the match criteria instead of returning an
	// empty result.
	if len(content.Headings) == 0 && len(content.MainContentBlocks) == 0 {
		p.fallbackPass(doc, rawHTML, content)
	}

	return content, nil
}

// fallbackPass collects up to maxFallbackBlocks candidate strings from
// broader element types with softer length bounds, consulting the
// configured MainContentExtractor if the relaxed selectors also come up
// empty.
func (p *Parser) fallbackPass(doc *goquery.Document, rawHTML string, content *sitebrief.ParsedContent) {
	doc.Find("p, div, td, blockquote").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		// Skip container divs whose text is just their children's.
		if sel.Is("div") && sel.ChildrenFiltered("p, div").Length() > 0 {
			return true
		}
		text := collapse(sel.Text())
		if len(text) < minFallbackBlockLen {
			return true
		}
		content.MainContentBlocks = append(content.MainContentBlocks, truncate(text, maxBlockLen))
		return len(content.MainContentBlocks) < maxFallbackBlocks
	})

	if len(content.MainContentBlocks) > 0 || p.fallback == nil {
		return
	}

	main, err := p.fallback.Extract(rawHTML)
	if err != nil || main == nil {
		return
	}
	inner, err := goquery.NewDocumentFromReader(strings.NewReader(main.ContentHTML))
	if err != nil {
		return
	}
	inner.Find("p, div, li, blockquote").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		// Skip container divs whose text is just their children's.
		if sel.Is("div") && sel.ChildrenFiltered("p, div, li").Length() > 0 {
			return true
		}
		text := collapse(sel.Text())
		if len(text) < minFallbackBlockLen {
			return true
		}
		content.MainContentBlocks = append(content.MainContentBlocks, truncate(text, maxBlockLen))
		return len(content.MainContentBlocks) < maxFallbackBlocks
	})
	if len(content.MainContentBlocks) == 0 {
		if text := collapse(inner.Text()); len(text) >= minFallbackBlockLen {
			content.MainContentBlocks = append(content.MainContentBlocks, truncate(text, maxBlockLen))
		}
	}
	if content.VisibleText == "" {
		content.VisibleText = collapse(inner.Text())
	}
	if title := collapse(main.Title); title != "" && content.MetaTags["title"] == "" {
		content.MetaTags["title"] = title
	}
}

// collapse trims and collapses all whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s at max bytes, avoiding a cut inside a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
