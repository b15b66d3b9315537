package usecase

import (
	"context"

	"qaforge/internal/domain"
	"qaforge/internal/synth"
)

// GenerateUseCase orchestrates test case and script generation on top of
// retrieval and the session's DOM catalog.
type GenerateUseCase struct {
	retriever *RetrieveUseCase
	testCases *synth.TestCaseSynthesizer
	scripts   *synth.ScriptSynthesizer
	session   *Session
}

// NewGenerateUseCase creates a generate use case.
func NewGenerateUseCase(
	retriever *RetrieveUseCase,
	testCases *synth.TestCaseSynthesizer,
	scripts *synth.ScriptSynthesizer,
	session *Session,
) *GenerateUseCase {
	return &GenerateUseCase{
		retriever: retriever,
		testCases: testCases,
		scripts:   scripts,
		session:   session,
	}
}

// TestCaseReport is the full output of a test case generation run: the cases
// plus the retrieval evidence they were derived from.
type TestCaseReport struct {
	Query    string              `json:"query"`
	Cases    []domain.TestCase   `json:"test_cases"`
	Grounded domain.GroundedInfo `json:"grounded_info"`
	Sources  []string            `json:"sources"`
}

// TestCases retrieves context for the query and synthesizes test cases from
// it. Retrieval failure is the only hard error; generation failures degrade
// to templates inside the synthesizer.
func (u *GenerateUseCase) TestCases(ctx context.Context, query string) (*TestCaseReport, error) {
	results, grounded, err := u.retriever.Retrieve(query)
	if err != nil {
		return nil, err
	}

	catalog := u.session.Catalog()
	cases := u.testCases.Synthesize(ctx, query, grounded, results, &catalog)

	return &TestCaseReport{
		Query:    query,
		Cases:    cases,
		Grounded: grounded,
		Sources:  grounded.Sources,
	}, nil
}

// Script synthesizes an automation script for one test case. The retrieval
// query is the case's feature so the script prompt sees the most relevant
// documentation.
func (u *GenerateUseCase) Script(ctx context.Context, testCase domain.TestCase) (domain.ScriptArtifact, error) {
	results, _, err := u.retriever.Retrieve(testCase.Feature)
	if err != nil {
		return domain.ScriptArtifact{}, err
	}

	catalog := u.session.Catalog()
	return u.scripts.Synthesize(ctx, testCase, &catalog, results)
}
