package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaforge/internal/adapter/llm"
	"qaforge/internal/domain"
)

func groundedFrom(source, text string) domain.GroundedInfo {
	return domain.GroundedInfo{
		Features: []domain.SourcedText{{Text: text, Source: source}},
		Sources:  []string{source},
	}
}

func TestTemplateDiscountCases(t *testing.T) {
	s := NewTestCaseSynthesizer(nil, 0)
	grounded := groundedFrom("requirements.md", "The discount feature reduces the total")

	cases := s.Synthesize(context.Background(), "discount code functionality", grounded, nil, nil)

	require.Len(t, cases, 2)
	assert.Equal(t, "TC001", cases[0].TestID)
	assert.Equal(t, domain.TypePositive, cases[0].Type)
	assert.Equal(t, "requirements.md", cases[0].GroundedIn)
	assert.Equal(t, "TC002", cases[1].TestID)
	assert.Equal(t, domain.TypeNegative, cases[1].Type)
	assert.Equal(t, "requirements.md", cases[1].GroundedIn)
}

func TestTemplateGroupUnion(t *testing.T) {
	s := NewTestCaseSynthesizer(nil, 0)
	grounded := groundedFrom("requirements.md", "discount and checkout features")

	cases := s.Synthesize(context.Background(), "discount codes during checkout", grounded, nil, nil)

	var ids []string
	for _, c := range cases {
		ids = append(ids, c.TestID)
	}
	assert.Equal(t, []string{"TC001", "TC002", "TC003"}, ids)
}

func TestTemplateFormAndLoginCases(t *testing.T) {
	s := NewTestCaseSynthesizer(nil, 0)

	cases := s.Synthesize(context.Background(), "form validation", domain.GroundedInfo{}, nil, nil)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC004", cases[0].TestID)
	assert.Equal(t, domain.NotSpecified, cases[0].GroundedIn)

	cases = s.Synthesize(context.Background(), "login flow", domain.GroundedInfo{}, nil, nil)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC005", cases[0].TestID)
}

func TestTemplateGeneralCases(t *testing.T) {
	s := NewTestCaseSynthesizer(nil, 0)

	// Features present: summary case.
	grounded := groundedFrom("overview.md", "The search feature supports fuzzy matching")
	cases := s.Synthesize(context.Background(), "search behavior", grounded, nil, nil)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC006", cases[0].TestID)
	assert.Equal(t, "overview.md", cases[0].GroundedIn)
	assert.Contains(t, cases[0].Notes, "fuzzy matching")

	// Nothing retrieved: smoke test with the sentinel.
	cases = s.Synthesize(context.Background(), "anything at all", domain.GroundedInfo{}, nil, nil)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC007", cases[0].TestID)
	assert.Equal(t, domain.NotSpecified, cases[0].GroundedIn)
}

func TestGroupSourcePrefersMatchingSignal(t *testing.T) {
	grounded := domain.GroundedInfo{
		Features: []domain.SourcedText{
			{Text: "shipping options overview", Source: "shipping.md"},
			{Text: "discount codes reduce totals", Source: "discounts.md"},
		},
		Sources: []string{"shipping.md", "discounts.md"},
	}

	s := NewTestCaseSynthesizer(nil, 0)
	cases := s.Synthesize(context.Background(), "discount behavior", grounded, nil, nil)

	require.NotEmpty(t, cases)
	assert.Equal(t, "discounts.md", cases[0].GroundedIn)
}

func TestGenerativePathParsesResponse(t *testing.T) {
	generator := &llm.Scripted{Responses: []string{"```json\n[\n  {\n    \"Test_ID\": \"TC010\",\n    \"Feature\": \"Discount Code\",\n    \"Test_Scenario\": \"Apply SAVE10\",\n    \"Steps\": [\"step 1\"],\n    \"Expected_Result\": \"10% off\",\n    \"Grounded_In\": \"requirements.md\",\n    \"Type\": \"Positive\",\n    \"Notes\": \"n\"\n  }\n]\n```"}}
	s := NewTestCaseSynthesizer(generator, 500)

	results := []domain.SearchResult{{
		Text: "discount context",
		Meta: domain.ChunkMeta{DocMeta: domain.DocMeta{Filename: "requirements.md"}},
	}}
	grounded := groundedFrom("requirements.md", "discount feature")

	cases := s.Synthesize(context.Background(), "discount", grounded, results, nil)

	require.Len(t, cases, 1)
	assert.Equal(t, "TC010", cases[0].TestID)
	assert.Equal(t, "requirements.md", cases[0].GroundedIn)

	require.Len(t, generator.Calls, 1)
	assert.Equal(t, 500, generator.Calls[0].MaxTokens)
	assert.Contains(t, generator.Calls[0].UserPrompt, "Source: requirements.md")
	assert.Contains(t, generator.Calls[0].UserPrompt, "discount context")
}

func TestGenerativeUnknownCitationIsSanitized(t *testing.T) {
	generator := &llm.Scripted{Responses: []string{`[{"Test_ID":"TC010","Feature":"F","Test_Scenario":"S","Steps":["s"],"Expected_Result":"E","Grounded_In":"fabricated.md","Type":"Positive","Notes":""}]`}}
	s := NewTestCaseSynthesizer(generator, 0)

	cases := s.Synthesize(context.Background(), "anything", groundedFrom("requirements.md", "feature"), nil, nil)

	require.Len(t, cases, 1)
	assert.Equal(t, domain.NotSpecified, cases[0].GroundedIn)
}

func TestGenerativeFailureFallsBackToTemplates(t *testing.T) {
	generator := &llm.Scripted{Err: errors.New("provider down")}
	s := NewTestCaseSynthesizer(generator, 0)

	cases := s.Synthesize(context.Background(), "discount code", groundedFrom("requirements.md", "discount feature"), nil, nil)

	// Exactly one attempt, then the template path.
	assert.Len(t, generator.Calls, 1)
	require.Len(t, cases, 2)
	assert.Equal(t, "TC001", cases[0].TestID)
}

func TestGenerativeMalformedResponseFallsBack(t *testing.T) {
	generator := &llm.Scripted{Responses: []string{"I cannot produce JSON today."}}
	s := NewTestCaseSynthesizer(generator, 0)

	cases := s.Synthesize(context.Background(), "discount code", groundedFrom("requirements.md", "discount feature"), nil, nil)

	require.NotEmpty(t, cases)
	assert.Equal(t, "TC001", cases[0].TestID)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, stripFences("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[{"a":1}]`, stripFences("[{\"a\":1}]"))
	assert.Equal(t, "text", stripFences("```\ntext\n```"))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[1,2]`, extractJSONArray(`Here you go: [1,2] hope that helps`))
	assert.Equal(t, `no array here`, extractJSONArray(`no array here`))
}
