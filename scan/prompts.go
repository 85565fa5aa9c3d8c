package scan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/sitebrief"
)

// PromptContext carries everything a prompt strategy may draw on when
// composing its prompt: the scanned URL, the parsed page buckets, and an
// optional Markdown rendering of the main content.
type PromptContext struct {
	URL      string
	Content  *sitebrief.ParsedContent
	Markdown string
}

// PromptStrategy is one way of asking the inference service for a brand
// brief. Strategies are tried in order until one yields a record that
// passes validation.
type PromptStrategy struct {
	// Name tags accepted records with the strategy that produced them.
	Name string

	// SystemFraming sets the model's role for this strategy.
	SystemFraming string

	// Build composes the prompt from the page context.
	Build func(pc *PromptContext) string
}

// Limits applied when folding page content into a prompt.
const (
	maxPromptHeadings = 30
	maxPromptNav      = 25
	maxPromptBlocks   = 40
	maxPromptMarkdown = 12000
)

const analystFraming = "You are a brand strategy analyst. You study company websites " +
	"and produce factual briefs grounded strictly in what the site says. " +
	"You never invent facts that are not supported by the page content."

// recordSchema is the JSON shape every strategy asks for. Field names match
// the wire format of the extraction record exactly.
const recordSchema = `{
  "entityName": "the company or organization name",
  "positioningStatement": "one or two sentences describing what they do and for whom",
  "keyMessages": ["up to five key messages, each a short sentence"],
  "targetAudience": "who the offering is for",
  "personalityTraits": ["up to five adjectives describing the brand voice"],
  "websiteUrl": "the canonical website URL",
  "confidenceScores": {
    "entityName": 0.0,
    "positioningStatement": 0.0,
    "keyMessages": 0.0,
    "targetAudience": 0.0,
    "personalityTraits": 0.0,
    "overall": 0.0
  }
}`

// DefaultStrategies returns the ordered prompt strategies: detailed first,
// then simplified, then guided. Order matters: the richest prompt gets the
// first shot, the later ones trade nuance for robustness on pages where the
// model struggles to follow long instructions.
func DefaultStrategies() []PromptStrategy {
	return []PromptStrategy{
		{
			Name:          "detailed",
			SystemFraming: analystFraming,
			Build:         buildDetailedPrompt,
		},
		{
			Name:          "simplified",
			SystemFraming: analystFraming,
			Build:         buildSimplifiedPrompt,
		},
		{
			Name:          "guided",
			SystemFraming: analystFraming,
			Build:         buildGuidedPrompt,
		},
	}
}

func buildDetailedPrompt(pc *PromptContext) string {
	var b strings.Builder
	b.WriteString("Analyze the website content below and extract a brand brief.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use only information present in the content. Leave a field empty if the content does not support it.\n")
	b.WriteString("- positioningStatement must paraphrase the site's own framing, not generic marketing language.\n")
	b.WriteString("- keyMessages must each be traceable to a heading or content block.\n")
	b.WriteString("- Score each confidence between 0.0 and 1.0; \"overall\" reflects the record as a whole.\n\n")
	b.WriteString("Respond with a single JSON object in exactly this shape:\n")
	b.WriteString(recordSchema)
	b.WriteString("\n\n")
	writePageContext(&b, pc, true)
	return b.String()
}

func buildSimplifiedPrompt(pc *PromptContext) string {
	var b strings.Builder
	b.WriteString("Read the website content below. Return one JSON object describing the brand:\n")
	b.WriteString(recordSchema)
	b.WriteString("\n\nOnly state what the content supports. Empty string or empty list when unsure.\n\n")
	writePageContext(&b, pc, false)
	return b.String()
}

func buildGuidedPrompt(pc *PromptContext) string {
	var b strings.Builder
	b.WriteString("Work through the website content below step by step:\n")
	b.WriteString("1. Find the organization's name. It usually appears in the title, the top heading, or structured data.\n")
	b.WriteString("2. Summarize what they offer and for whom in one or two sentences.\n")
	b.WriteString("3. List the claims the page repeats or emphasizes.\n")
	b.WriteString("4. Describe who the page is written for.\n")
	b.WriteString("5. Pick adjectives matching the page's tone.\n\n")
	b.WriteString("Then answer with a single JSON object:\n")
	b.WriteString(recordSchema)
	b.WriteString("\n\n")
	writePageContext(&b, pc, false)
	return b.String()
}

// writePageContext folds the parsed page into the prompt. The full variant
// includes structured data and meta tags; the compact one sticks to
// headings, navigation and content blocks.
func writePageContext(b *strings.Builder, pc *PromptContext, full bool) {
	b.WriteString("URL: " + pc.URL + "\n")

	c := pc.Content
	if c == nil {
		return
	}

	if title := c.MetaTags["title"]; title != "" {
		b.WriteString("Title: " + title + "\n")
	}
	if desc := c.MetaTags["description"]; desc != "" {
		b.WriteString("Description: " + desc + "\n")
	}

	if headings := c.AllHeadings(); len(headings) > 0 {
		b.WriteString("\nHeadings:\n")
		for _, h := range capStrings(headings, maxPromptHeadings) {
			b.WriteString("- " + h + "\n")
		}
	}

	if len(c.NavigationLabels) > 0 {
		b.WriteString("\nNavigation: " + strings.Join(capStrings(c.NavigationLabels, maxPromptNav), " | ") + "\n")
	}

	if full {
		if len(c.StructuredData) > 0 {
			b.WriteString("\nStructured data:\n")
			for _, sd := range c.StructuredData {
				b.WriteString(string(sd) + "\n")
			}
		}
		// Sorted so the same page always yields the same prompt text.
		names := make([]string, 0, len(c.MetaTags))
		for name := range c.MetaTags {
			if name == "title" || name == "description" {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "Meta %s: %s\n", name, c.MetaTags[name])
		}
	}

	if len(c.MainContentBlocks) > 0 {
		b.WriteString("\nContent:\n")
		for _, block := range capStrings(c.MainContentBlocks, maxPromptBlocks) {
			b.WriteString(block + "\n")
		}
	}

	if pc.Markdown != "" {
		md := pc.Markdown
		if len(md) > maxPromptMarkdown {
			md = md[:maxPromptMarkdown]
		}
		b.WriteString("\nMain content (markdown):\n" + md + "\n")
	}
}

func capStrings(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
