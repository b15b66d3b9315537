// Package synth derives structured test cases and automation scripts from
// retrieved text and the DOM catalog. Every generative path is paired with a
// deterministic template fallback of identical output shape: one generation
// failure must never block the user from getting grounded output.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"qaforge/internal/domain"
	"qaforge/internal/port"
)

// TestCaseSynthesizer turns a query plus grounded signals into an ordered
// list of test cases.
type TestCaseSynthesizer struct {
	generator port.Generator // nil means template-only
	maxTokens int
}

// NewTestCaseSynthesizer creates a synthesizer. A nil generator selects the
// deterministic template path unconditionally.
func NewTestCaseSynthesizer(generator port.Generator, maxTokens int) *TestCaseSynthesizer {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &TestCaseSynthesizer{generator: generator, maxTokens: maxTokens}
}

const testCaseSystemPrompt = `You are an expert QA automation engineer. Generate EXACTLY 2-3 structured test cases in valid JSON format.

CRITICAL: Your response must be ONLY a valid JSON array, no other text before or after.

GROUNDING RULES:
1. Only use information from the provided context documents
2. Reference the source document filename in the "Grounded_In" field
3. Generate both positive and negative test cases

REQUIRED JSON FORMAT (respond with ONLY this JSON, no explanation):
[
  {
    "Test_ID": "TC001",
    "Feature": "exact feature name from context",
    "Test_Scenario": "specific scenario description",
    "Steps": ["step 1", "step 2", "step 3"],
    "Expected_Result": "expected outcome",
    "Grounded_In": "filename.ext",
    "Type": "Positive",
    "Notes": "brief note"
  }
]

CRITICAL: Ensure all strings are properly quoted and escaped. No trailing commas.`

// Synthesize produces test cases for the query. When a generator is
// configured it is tried exactly once; any failure, empty result or
// malformed response falls back to the template path. Retries belong to the
// transport layer, not here.
func (s *TestCaseSynthesizer) Synthesize(
	ctx context.Context,
	query string,
	grounded domain.GroundedInfo,
	results []domain.SearchResult,
	catalog *domain.DomCatalog,
) []domain.TestCase {
	if s.generator != nil {
		cases, err := s.generate(ctx, query, results, catalog)
		if err == nil && len(cases) > 0 {
			return sanitizeGrounding(cases, grounded.Sources)
		}
		if err != nil {
			log.Printf("synth: test case generation failed, using templates: %v", err)
		}
	}

	return s.fromTemplates(query, grounded)
}

func (s *TestCaseSynthesizer) generate(
	ctx context.Context,
	query string,
	results []domain.SearchResult,
	catalog *domain.DomCatalog,
) ([]domain.TestCase, error) {
	var contextText strings.Builder
	for i, result := range results {
		if i == 5 {
			break
		}
		if i > 0 {
			contextText.WriteString("\n\n")
		}
		fmt.Fprintf(&contextText, "Source: %s\n%s", result.Meta.Filename, result.Text)
	}

	uiSummary := ""
	if catalog != nil && len(catalog.SelectorKeys) > 0 {
		keys := catalog.SelectorKeys
		if len(keys) > 10 {
			keys = keys[:10]
		}
		uiSummary = "Available UI elements: " + strings.Join(keys, ", ")
	}

	userPrompt := fmt.Sprintf(`Query: %s

Context Documents:
%s

%s

Generate test cases based on this query and context. Ensure strict grounding to the provided information.`,
		query, contextText.String(), uiSummary)

	response, err := s.generator.Generate(ctx, testCaseSystemPrompt, userPrompt, s.maxTokens)
	if err != nil {
		return nil, err
	}

	cleaned := extractJSONArray(stripFences(response))

	var cases []domain.TestCase
	if err := json.Unmarshal([]byte(cleaned), &cases); err != nil {
		return nil, fmt.Errorf("parsing generated test cases: %w", err)
	}
	return cases, nil
}

// sanitizeGrounding enforces the grounding invariant on generated output:
// a citation that names no actually retrieved source becomes the sentinel.
func sanitizeGrounding(cases []domain.TestCase, sources []string) []domain.TestCase {
	known := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		known[s] = struct{}{}
	}

	for i := range cases {
		if cases[i].GroundedIn == domain.NotSpecified {
			continue
		}
		if _, ok := known[cases[i].GroundedIn]; !ok {
			cases[i].GroundedIn = domain.NotSpecified
		}
	}
	return cases
}

// fromTemplates is the deterministic path. The query is matched against
// fixed keyword groups in a fixed order; every matching group appends its
// authored cases, so a query touching several domains yields their union.
func (s *TestCaseSynthesizer) fromTemplates(query string, grounded domain.GroundedInfo) []domain.TestCase {
	queryLower := strings.ToLower(query)
	var cases []domain.TestCase

	if strings.Contains(queryLower, "discount") || strings.Contains(queryLower, "coupon") {
		cases = append(cases, discountCases(grounded)...)
	}
	if strings.Contains(queryLower, "checkout") || strings.Contains(queryLower, "purchase") || strings.Contains(queryLower, "payment") {
		cases = append(cases, checkoutCases(grounded)...)
	}
	if strings.Contains(queryLower, "form") || strings.Contains(queryLower, "validation") {
		cases = append(cases, formCases(grounded)...)
	}
	if strings.Contains(queryLower, "login") || strings.Contains(queryLower, "authentication") {
		cases = append(cases, loginCases(grounded)...)
	}

	if len(cases) == 0 {
		cases = generalCases(grounded)
	}

	return cases
}

// groupSource picks the citation for a template group: the first source
// whose matching signal text mentions one of the group's terms, then the
// first retrieved source overall, then the sentinel. Never a fabricated
// name.
func groupSource(grounded domain.GroundedInfo, pools [][]domain.SourcedText, terms ...string) string {
	for _, pool := range pools {
		for _, item := range pool {
			text := strings.ToLower(item.Text)
			if len(terms) == 0 {
				return item.Source
			}
			for _, term := range terms {
				if strings.Contains(text, term) {
					return item.Source
				}
			}
		}
	}
	if len(grounded.Sources) > 0 {
		return grounded.Sources[0]
	}
	return domain.NotSpecified
}

func discountCases(grounded domain.GroundedInfo) []domain.TestCase {
	source := groupSource(grounded,
		[][]domain.SourcedText{grounded.Features, grounded.BusinessRules},
		"discount", "coupon")

	return []domain.TestCase{
		{
			TestID:       "TC001",
			Feature:      "Discount Code",
			TestScenario: "Apply valid discount code",
			Steps: []string{
				"1. Navigate to checkout page",
				"2. Enter valid discount code in coupon field",
				"3. Click Apply button",
				"4. Verify discount is applied to total",
			},
			ExpectedResult: "Discount should be applied and total price should be reduced",
			GroundedIn:     source,
			Type:           domain.TypePositive,
			Notes:          "Based on discount functionality requirements",
		},
		{
			TestID:       "TC002",
			Feature:      "Discount Code",
			TestScenario: "Apply invalid discount code",
			Steps: []string{
				"1. Navigate to checkout page",
				"2. Enter invalid discount code in coupon field",
				"3. Click Apply button",
				"4. Verify error message is displayed",
			},
			ExpectedResult: "Error message should be displayed: 'Invalid discount code'",
			GroundedIn:     source,
			Type:           domain.TypeNegative,
			Notes:          "Testing invalid input handling",
		},
	}
}

func checkoutCases(grounded domain.GroundedInfo) []domain.TestCase {
	source := groupSource(grounded,
		[][]domain.SourcedText{grounded.Features, grounded.Workflows},
		"checkout", "payment")

	return []domain.TestCase{
		{
			TestID:       "TC003",
			Feature:      "Checkout Process",
			TestScenario: "Complete checkout with valid information",
			Steps: []string{
				"1. Fill in billing information",
				"2. Select payment method",
				"3. Enter payment details",
				"4. Click Place Order button",
			},
			ExpectedResult: "Order should be processed successfully",
			GroundedIn:     source,
			Type:           domain.TypePositive,
			Notes:          "End-to-end checkout workflow",
		},
	}
}

func formCases(grounded domain.GroundedInfo) []domain.TestCase {
	source := groupSource(grounded,
		[][]domain.SourcedText{grounded.Validations, grounded.BusinessRules})

	return []domain.TestCase{
		{
			TestID:       "TC004",
			Feature:      "Form Validation",
			TestScenario: "Submit form with empty required fields",
			Steps: []string{
				"1. Navigate to form",
				"2. Leave required fields empty",
				"3. Click submit button",
				"4. Verify validation messages are displayed",
			},
			ExpectedResult: "Validation messages should be displayed for required fields",
			GroundedIn:     source,
			Type:           domain.TypeNegative,
			Notes:          "Required field validation testing",
		},
	}
}

func loginCases(grounded domain.GroundedInfo) []domain.TestCase {
	source := domain.NotSpecified
	if len(grounded.Sources) > 0 {
		source = grounded.Sources[0]
	}

	return []domain.TestCase{
		{
			TestID:       "TC005",
			Feature:      "User Authentication",
			TestScenario: "Login with valid credentials",
			Steps: []string{
				"1. Navigate to login page",
				"2. Enter valid username",
				"3. Enter valid password",
				"4. Click login button",
			},
			ExpectedResult: "User should be logged in and redirected to dashboard",
			GroundedIn:     source,
			Type:           domain.TypePositive,
			Notes:          "Standard login functionality",
		},
	}
}

// generalCases covers queries matching no keyword group: a summary case over
// the extracted features when any exist, otherwise a bare smoke test.
func generalCases(grounded domain.GroundedInfo) []domain.TestCase {
	if len(grounded.Features) > 0 {
		var summaries []string
		for i, feature := range grounded.Features {
			if i == 3 {
				break
			}
			text := feature.Text
			if len(text) > 100 {
				text = text[:100] + "..."
			}
			summaries = append(summaries, text)
		}

		source := domain.NotSpecified
		if len(grounded.Sources) > 0 {
			source = grounded.Sources[0]
		}

		return []domain.TestCase{
			{
				TestID:       "TC006",
				Feature:      "General Functionality",
				TestScenario: "Verify main functionality works as expected",
				Steps: []string{
					"1. Navigate to main page",
					"2. Interact with primary elements",
					"3. Verify expected behavior",
				},
				ExpectedResult: "Functionality should work as described in requirements",
				GroundedIn:     source,
				Type:           domain.TypePositive,
				Notes:          "Based on available features: " + strings.Join(summaries, ", "),
			},
		}
	}

	return []domain.TestCase{
		{
			TestID:       "TC007",
			Feature:      "Basic Functionality",
			TestScenario: "Verify page loads correctly",
			Steps: []string{
				"1. Navigate to application URL",
				"2. Verify page loads without errors",
				"3. Check for presence of key elements",
			},
			ExpectedResult: "Page should load successfully with all key elements visible",
			GroundedIn:     domain.NotSpecified,
			Type:           domain.TypePositive,
			Notes:          "Basic smoke test - no specific requirements found in documents",
		},
	}
}
