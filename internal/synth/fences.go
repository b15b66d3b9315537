package synth

import "strings"

// stripFences removes a Markdown code fence wrapping, if present. Models
// often fence their output even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line together with its language tag.
		if nl := strings.Index(s, "\n"); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}

	return strings.TrimSpace(s)
}

// extractJSONArray returns the outermost [...] span of s, so surrounding
// prose from a chatty model does not break parsing. Returns s unchanged when
// no span is found.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
