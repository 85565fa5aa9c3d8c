package sitebrief

import "math"

// Ideal list sizes for richness scoring.
const (
	idealMessageCount = 3
	idealTraitCount   = 3
)

// QualityScore computes a [0,1] measure of how complete and well-formed the
// record is. It never fails: unknown or missing fields simply contribute
// zero to their term.
//
// The score combines field completeness (fraction of expected fields
// present) with per-field quality (length closeness to the ideal midpoint
// for strings, richness for lists). Per-field quality is normalized by the
// expected field count, so adding a non-empty value can only raise the
// score.
func (v *Validator) QualityScore(record *ExtractionRecord) float64 {
	if record == nil {
		return 0
	}

	type scored struct {
		present bool
		quality float64
	}

	fields := []scored{
		{record.EntityName != "", v.lengthQuality(FieldEntityName, record.EntityName)},
		{record.PositioningStatement != "", v.lengthQuality(FieldPositioning, record.PositioningStatement)},
		{len(record.KeyMessages) > 0, richness(len(record.KeyMessages), idealMessageCount)},
		{record.TargetAudience != "", v.lengthQuality(FieldAudience, record.TargetAudience)},
		{len(record.PersonalityTraits) > 0, richness(len(record.PersonalityTraits), idealTraitCount)},
	}

	var present, quality float64
	for _, f := range fields {
		if f.present {
			present++
			quality += f.quality
		}
	}

	n := float64(len(fields))
	score := 0.4*(present/n) + 0.6*(quality/n)
	return clamp01(score)
}

// GradeForScore maps a quality score to a letter grade.
func GradeForScore(score float64) QualityGrade {
	switch {
	case score >= 0.9:
		return GradeA
	case score >= 0.8:
		return GradeB
	case score >= 0.7:
		return GradeC
	case score >= 0.6:
		return GradeD
	default:
		return GradeF
	}
}

// lengthQuality scores a string by how close its length is to the field's
// ideal midpoint. Fields without configured bounds score 1 when present.
func (v *Validator) lengthQuality(field, value string) float64 {
	if value == "" {
		return 0
	}
	bounds, ok := v.config.FieldBounds[field]
	if !ok || bounds.Ideal <= 0 {
		return 1
	}
	distance := math.Abs(float64(len(value))-float64(bounds.Ideal)) / float64(bounds.Ideal)
	return clamp01(1 - distance/2)
}

// richness scores a list by how close it is to the ideal element count,
// monotonically non-decreasing in the element count.
func richness(count, ideal int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= ideal {
		return 1
	}
	return float64(count) / float64(ideal)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
