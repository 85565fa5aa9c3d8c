// Package readability provides a sitebrief.Extractor backed by
// go-readability, the Go port of Mozilla's Readability algorithm.
package readability

import (
	"strings"

	"github.com/fwojciec/sitebrief"
	readability "github.com/go-shiori/go-readability"
)

// Ensure Extractor implements sitebrief.Extractor at compile time.
var _ sitebrief.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*sitebrief.MainContent, error) {
	if rawHTML == "" {
		return nil, sitebrief.Errorf(sitebrief.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &sitebrief.MainContent{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
