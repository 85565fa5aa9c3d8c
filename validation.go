package sitebrief

import (
	"fmt"
	"regexp"
	"strings"
)

// QualityGrade is a letter grade derived from a quality score.
type QualityGrade string

// QualityGrade values.
const (
	GradeA QualityGrade = "A"
	GradeB QualityGrade = "B"
	GradeC QualityGrade = "C"
	GradeD QualityGrade = "D"
	GradeF QualityGrade = "F"
)

// ValidationReport is the result of validating an ExtractionRecord. It is
// derived purely from the record (and optionally the source content) and is
// recomputable at any time.
type ValidationReport struct {
	IsValid      bool
	Issues       []string
	QualityScore float64
	QualityGrade QualityGrade
}

// LengthBounds describes the plausible length range for a string field,
// plus the ideal length used by quality scoring.
type LengthBounds struct {
	Min   int
	Max   int
	Ideal int
}

// ValidatorConfig holds the validation thresholds. The numeric cutoffs are
// empirically tuned heuristics, so they are configuration rather than
// constants baked into the rules.
type ValidatorConfig struct {
	// MinOverallConfidence gates final acceptance of a record.
	MinOverallConfidence float64

	// SourceOverlapRatio is the fraction of a message's content words
	// that must appear in the source text during cross-checking.
	SourceOverlapRatio float64

	// FieldBounds maps field name to its plausible length range.
	FieldBounds map[string]LengthBounds

	// PlaceholderPatterns match template/non-real content. Any match
	// invalidates the containing field.
	PlaceholderPatterns []*regexp.Regexp
}

// DefaultValidatorConfig returns the default validation thresholds.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinOverallConfidence: 0.5,
		SourceOverlapRatio:   0.5,
		FieldBounds: map[string]LengthBounds{
			FieldEntityName:  {Min: 2, Max: 100, Ideal: 20},
			FieldPositioning: {Min: 20, Max: 500, Ideal: 150},
			FieldAudience:    {Min: 10, Max: 300, Ideal: 80},
		},
		PlaceholderPatterns: defaultPlaceholderPatterns(),
	}
}

func defaultPlaceholderPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)lorem\s+ipsum`),
		regexp.MustCompile(`(?i)\bcoming\s+soon\b`),
		regexp.MustCompile(`(?i)\bunder\s+construction\b`),
		regexp.MustCompile(`(?i)\btbd\b`),
		regexp.MustCompile(`(?i)\bto\s+be\s+determined\b`),
		regexp.MustCompile(`(?i)\byour\s+(company|brand|business)(\s+name)?\b`),
		regexp.MustCompile(`(?i)\binsert\s+\w+\s+here\b`),
		regexp.MustCompile(`(?i)\bexample\.(com|org|net)\b`),
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`\{\{[^}]*\}\}`),
	}
}

// Validator judges candidate records for placeholder text, length bounds
// and cross-reference against source content. Validate is a pure function:
// the same inputs always produce the same report.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a Validator with the given configuration.
func NewValidator(config ValidatorConfig) *Validator {
	return &Validator{config: config}
}

// Validate checks the record against the configured rules. If source is
// non-nil its visible text is used to cross-check extracted values against
// the page, catching hallucinated content from the inference service.
func (v *Validator) Validate(record *ExtractionRecord, source *ParsedContent) ValidationReport {
	report := ValidationReport{}
	if record == nil {
		report.Issues = append(report.Issues, "no record")
		report.QualityGrade = GradeF
		return report
	}

	var sourceText string
	if source != nil {
		sourceText = strings.ToLower(source.VisibleText + " " + strings.Join(source.AllHeadings(), " "))
	}

	valid := true

	// Scalar string fields: blank check, placeholder scan, length bounds.
	// The slice keeps issue order stable so identical inputs always
	// produce identical reports.
	scalars := []struct {
		field string
		value string
	}{
		{FieldEntityName, record.EntityName},
		{FieldPositioning, record.PositioningStatement},
		{FieldAudience, record.TargetAudience},
	}
	for _, s := range scalars {
		field, value := s.field, s.value
		if value == "" {
			continue
		}
		if strings.TrimSpace(value) == "" {
			report.Issues = append(report.Issues, fmt.Sprintf("%s: whitespace-only value", field))
			valid = false
			continue
		}
		if pattern := v.matchPlaceholder(value); pattern != "" {
			report.Issues = append(report.Issues, fmt.Sprintf("%s: placeholder content (%s)", field, pattern))
			valid = false
		}
		if bounds, ok := v.config.FieldBounds[field]; ok {
			if n := len(value); n < bounds.Min || n > bounds.Max {
				report.Issues = append(report.Issues, fmt.Sprintf("%s: length %d outside [%d,%d]", field, n, bounds.Min, bounds.Max))
			}
		}
	}

	// List fields: placeholder scan per element.
	for i, msg := range record.KeyMessages {
		if strings.TrimSpace(msg) == "" {
			report.Issues = append(report.Issues, fmt.Sprintf("%s[%d]: whitespace-only value", FieldKeyMessages, i))
			valid = false
			continue
		}
		if pattern := v.matchPlaceholder(msg); pattern != "" {
			report.Issues = append(report.Issues, fmt.Sprintf("%s[%d]: placeholder content (%s)", FieldKeyMessages, i, pattern))
			valid = false
		}
	}
	for i, trait := range record.PersonalityTraits {
		if pattern := v.matchPlaceholder(trait); pattern != "" {
			report.Issues = append(report.Issues, fmt.Sprintf("%s[%d]: placeholder content (%s)", FieldTraits, i, pattern))
			valid = false
		}
	}

	// Source cross-check. The entity name must appear in the source, and
	// each message must share enough content words with it.
	supportedMessages := len(record.KeyMessages)
	if sourceText != "" {
		if record.EntityName != "" && !v.nameInSource(record.EntityName, sourceText) {
			report.Issues = append(report.Issues, fmt.Sprintf("%s: not found in source content", FieldEntityName))
			valid = false
		}
		supportedMessages = 0
		for i, msg := range record.KeyMessages {
			if v.overlapRatio(msg, sourceText) >= v.config.SourceOverlapRatio {
				supportedMessages++
			} else {
				report.Issues = append(report.Issues, fmt.Sprintf("%s[%d]: insufficient source overlap", FieldKeyMessages, i))
			}
		}
	}

	// Acceptance gates: overall confidence, a non-empty entity name, and
	// at least one substantive field beyond the name.
	if record.OverallConfidence() < v.config.MinOverallConfidence {
		report.Issues = append(report.Issues, fmt.Sprintf("%s: confidence %.2f below %.2f", FieldOverall, record.OverallConfidence(), v.config.MinOverallConfidence))
		valid = false
	}
	if strings.TrimSpace(record.EntityName) == "" {
		report.Issues = append(report.Issues, fmt.Sprintf("%s: required", FieldEntityName))
		valid = false
	}
	if strings.TrimSpace(record.PositioningStatement) == "" &&
		strings.TrimSpace(record.TargetAudience) == "" &&
		supportedMessages == 0 {
		report.Issues = append(report.Issues, "record has a name but no positioning, messages, or audience")
		valid = false
	}

	report.IsValid = valid
	report.QualityScore = v.QualityScore(record)
	report.QualityGrade = GradeForScore(report.QualityScore)
	return report
}

// matchPlaceholder returns the pattern that matched, or "" if the value is
// clean.
func (v *Validator) matchPlaceholder(value string) string {
	for _, re := range v.config.PlaceholderPatterns {
		if re.MatchString(value) {
			return re.String()
		}
	}
	return ""
}

// nameInSource reports whether the entity name appears in the source text,
// either as an exact substring or via significant word overlap.
func (v *Validator) nameInSource(name, sourceText string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(sourceText, lower) {
		return true
	}
	words := contentWords(lower)
	if len(words) == 0 {
		return false
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(sourceText, w) {
			matched++
		}
	}
	return float64(matched)/float64(len(words)) >= v.config.SourceOverlapRatio
}

// overlapRatio returns the fraction of the text's content words that appear
// in the source.
func (v *Validator) overlapRatio(text, sourceText string) float64 {
	words := contentWords(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(sourceText, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// contentWords returns lowercase words of four or more characters, which
// carry most of the signal for overlap checks.
func contentWords(text string) []string {
	var out []string
	for _, w := range wordRe.FindAllString(text, -1) {
		if len(w) >= 4 {
			out = append(out, w)
		}
	}
	return out
}
