// Package gemini implements the inference service boundary using Google
// Gemini. The service returns free-form text; locating and validating any
// structured payload in it is the caller's job.
package gemini

import (
	"context"

	"github.com/fwojciec/sitebrief"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// temperature is kept low: the extractor wants faithful extraction, not
// creative writing.
const temperature = float32(0.2)

// Ensure Inferencer implements sitebrief.Inferencer at compile time.
var _ sitebrief.Inferencer = (*Inferencer)(nil)

// Inferencer implements sitebrief.Inferencer using Google Gemini.
type Inferencer struct {
	client *genai.Client
}

// NewInferencer creates a new Inferencer.
func NewInferencer(client *genai.Client) *Inferencer {
	return &Inferencer{client: client}
}

// Generate sends the system framing and prompt to Gemini and returns the
// raw response text.
func (i *Inferencer) Generate(ctx context.Context, systemFraming, prompt string) (string, error) {
	if prompt == "" {
		return "", sitebrief.Errorf(sitebrief.EINVALID, "prompt required")
	}

	config := BuildConfig(systemFraming)

	result, err := i.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", sitebrief.Errorf(sitebrief.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(systemFraming string) *genai.GenerateContentConfig {
	temp := temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if systemFraming != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemFraming}},
		}
	}
	return config
}
