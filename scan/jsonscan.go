package scan

// FirstJSONObject returns the first balanced top-level JSON object found in
// text, brace to brace. The inference service returns free-form text that
// often wraps its JSON in prose or code fences, so the payload has to be
// located by scanning rather than decoded directly. String literals and
// escape sequences are honored; braces inside strings do not affect depth.
func FirstJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
