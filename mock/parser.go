package mock

import "github.com/fwojciec/sitebrief"

var _ sitebrief.ContentParser = (*ContentParser)(nil)

// ContentParser is a mock implementation of sitebrief.ContentParser.
type ContentParser struct {
	ParseFn func(rawHTML string) (*sitebrief.ParsedContent, error)
}

func (p *ContentParser) Parse(rawHTML string) (*sitebrief.ParsedContent, error) {
	return p.ParseFn(rawHTML)
}

var _ sitebrief.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of sitebrief.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML string) (*sitebrief.MainContent, error)
}

func (e *Extractor) Extract(rawHTML string) (*sitebrief.MainContent, error) {
	return e.ExtractFn(rawHTML)
}

var _ sitebrief.Converter = (*Converter)(nil)

// Converter is a mock implementation of sitebrief.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
