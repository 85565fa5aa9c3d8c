package sitebrief

// Merge folds several validated records into one using per-field rules:
//
//   - entity name: consensus (most frequent exact value, ties broken by
//     first-seen order)
//   - positioning statement: longest string wins
//   - key messages, personality traits: union with de-duplication,
//     preserving first-seen order
//   - website URL: first non-empty wins
//   - confidence scores: per-key maximum across inputs
//
// Merging a single record is the identity function. Merging is stable with
// respect to the input order of equal-priority values.
func Merge(records []*ExtractionRecord) *ExtractionRecord {
	switch len(records) {
	case 0:
		return nil
	case 1:
		return records[0].Clone()
	}

	out := &ExtractionRecord{}

	var names []string
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.EntityName != "" {
			names = append(names, r.EntityName)
		}
		if len(r.PositioningStatement) > len(out.PositioningStatement) {
			out.PositioningStatement = r.PositioningStatement
		}
		out.KeyMessages = unionAppend(out.KeyMessages, r.KeyMessages)
		out.PersonalityTraits = unionAppend(out.PersonalityTraits, r.PersonalityTraits)
		if len(r.TargetAudience) > len(out.TargetAudience) {
			out.TargetAudience = r.TargetAudience
		}
		if out.WebsiteURL == "" && r.WebsiteURL != "" {
			out.WebsiteURL = r.WebsiteURL
		}
		for k, v := range r.ConfidenceScores {
			if out.ConfidenceScores == nil {
				out.ConfidenceScores = make(map[string]float64)
			}
			if v > out.ConfidenceScores[k] {
				out.ConfidenceScores[k] = v
			}
		}
	}
	out.EntityName = consensus(names)

	return out
}

// consensus returns the most frequent value, breaking ties by first-seen
// order.
func consensus(values []string) string {
	if len(values) == 0 {
		return ""
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := values[0]
	for _, v := range values {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// unionAppend appends items not already present, preserving order.
func unionAppend(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		dst = append(dst, v)
	}
	return dst
}
