package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"qaforge/internal/domain"
)

var (
	scriptInput  string
	scriptID     string
	scriptOutDir string
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Generate Selenium scripts for test cases",
	Long: `Generate Selenium automation scripts for test cases produced by the
testcases command. Requires an ingested checkout page: scripts only use
selectors that actually exist in its DOM catalog, and steps whose selector
cannot be resolved become marked TODO comments instead of guesses.

Examples:
  qaforge script -f cases.json                 # Scripts for every case
  qaforge script -f cases.json --id TC001      # One specific case
  qaforge script -f cases.json -o ./scripts    # Custom output directory`,
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptInput, "from", "f", "", "test case report or array JSON file (required)")
	scriptCmd.Flags().StringVar(&scriptID, "id", "", "generate only the case with this Test_ID")
	scriptCmd.Flags().StringVarP(&scriptOutDir, "output", "o", "./scripts", "output directory")
	scriptCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	cases, err := loadTestCases(scriptInput)
	if err != nil {
		return err
	}

	if scriptID != "" {
		cases = filterByID(cases, scriptID)
		if len(cases) == 0 {
			return fmt.Errorf("no test case with id %s in %s", scriptID, scriptInput)
		}
	}
	if len(cases) == 0 {
		return fmt.Errorf("no test cases in %s", scriptInput)
	}

	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := os.MkdirAll(scriptOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, testCase := range cases {
		artifact, err := app.generate.Script(cmd.Context(), testCase)
		if err != nil {
			if errors.Is(err, domain.ErrPreconditionMissing) {
				return fmt.Errorf("no checkout page has been ingested yet, run 'qaforge ingest' on a directory containing %s first: %w",
					app.cfg.Ingest.CheckoutPage, err)
			}
			return fmt.Errorf("script generation for %s failed: %w", testCase.TestID, err)
		}

		outPath := filepath.Join(scriptOutDir, artifact.Filename)
		if err := os.WriteFile(outPath, []byte(artifact.Source), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("Generated %s\n", outPath)
	}

	return nil
}

// loadTestCases accepts either a testcases-command report or a bare JSON
// array of test cases.
func loadTestCases(path string) ([]domain.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var report struct {
		Cases []domain.TestCase `json:"test_cases"`
	}
	if err := json.Unmarshal(data, &report); err == nil && len(report.Cases) > 0 {
		return report.Cases, nil
	}

	var cases []domain.TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%s is neither a test case report nor a test case array: %w", path, err)
	}
	return cases, nil
}

func filterByID(cases []domain.TestCase, id string) []domain.TestCase {
	var out []domain.TestCase
	for _, testCase := range cases {
		if testCase.TestID == id {
			out = append(out, testCase)
		}
	}
	return out
}
