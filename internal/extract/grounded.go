// Package extract mines retrieved chunks for typed signals used to ground
// test-case synthesis.
package extract

import (
	"strings"

	"qaforge/internal/domain"
)

// Category keyword lists. Membership is checked on the lowercased chunk text
// and the categories are non-exclusive: a chunk mentioning both "button" and
// "must" lands in both ui_elements and business_rules.
var (
	featureKeywords    = []string{"feature", "functionality", "capability"}
	ruleKeywords       = []string{"rule", "policy", "requirement", "must", "should"}
	uiKeywords         = []string{"button", "field", "input", "form", "dropdown", "checkbox"}
	workflowKeywords   = []string{"step", "process", "workflow", "procedure"}
	validationKeywords = []string{"validation", "error", "message", "warning", "check"}
)

// Grounded classifies the retrieved chunks into typed signal categories and
// collects the distinct source filenames in first-seen order. It is a pure
// function of its input.
func Grounded(results []domain.SearchResult) domain.GroundedInfo {
	var info domain.GroundedInfo
	seenSources := make(map[string]struct{})

	for _, result := range results {
		text := strings.ToLower(result.Text)
		source := result.Meta.Filename
		if source == "" {
			source = "Unknown"
		}

		entry := domain.SourcedText{Text: result.Text, Source: source}

		if containsAny(text, featureKeywords) {
			info.Features = append(info.Features, entry)
		}
		if containsAny(text, ruleKeywords) {
			info.BusinessRules = append(info.BusinessRules, entry)
		}
		if containsAny(text, uiKeywords) {
			info.UIElements = append(info.UIElements, entry)
		}
		if containsAny(text, workflowKeywords) {
			info.Workflows = append(info.Workflows, entry)
		}
		if containsAny(text, validationKeywords) {
			info.Validations = append(info.Validations, entry)
		}

		if _, seen := seenSources[source]; !seen {
			seenSources[source] = struct{}{}
			info.Sources = append(info.Sources, source)
		}
	}

	return info
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
