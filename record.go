package sitebrief

// Field names used in confidence maps and validation issues.
const (
	FieldEntityName  = "entityName"
	FieldPositioning = "positioningStatement"
	FieldKeyMessages = "keyMessages"
	FieldAudience    = "targetAudience"
	FieldTraits      = "personalityTraits"
	FieldWebsiteURL  = "websiteUrl"
	FieldOverall     = "overall"
)

// ExtractionRecord is a candidate brand brief produced by one prompt
// strategy attempt, or by merging several attempts. Records are never
// mutated after construction; merge and clone produce new values.
type ExtractionRecord struct {
	EntityName           string             `json:"entityName,omitempty"`
	PositioningStatement string             `json:"positioningStatement,omitempty"`
	KeyMessages          []string           `json:"keyMessages,omitempty"`
	TargetAudience       string             `json:"targetAudience,omitempty"`
	PersonalityTraits    []string           `json:"personalityTraits,omitempty"`
	WebsiteURL           string             `json:"websiteUrl,omitempty"`
	ConfidenceScores     map[string]float64 `json:"confidenceScores,omitempty"`
}

// OverallConfidence returns the record's overall confidence score, or zero
// if the inference service did not report one.
func (r *ExtractionRecord) OverallConfidence() float64 {
	if r.ConfidenceScores == nil {
		return 0
	}
	return r.ConfidenceScores[FieldOverall]
}

// Clone returns a deep copy of the record.
func (r *ExtractionRecord) Clone() *ExtractionRecord {
	out := *r
	if r.KeyMessages != nil {
		out.KeyMessages = append([]string(nil), r.KeyMessages...)
	}
	if r.PersonalityTraits != nil {
		out.PersonalityTraits = append([]string(nil), r.PersonalityTraits...)
	}
	if r.ConfidenceScores != nil {
		out.ConfidenceScores = make(map[string]float64, len(r.ConfidenceScores))
		for k, v := range r.ConfidenceScores {
			out.ConfidenceScores[k] = v
		}
	}
	return &out
}
