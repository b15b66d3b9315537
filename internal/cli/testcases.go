package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	testcasesQuery  string
	testcasesOutput string
)

var testcasesCmd = &cobra.Command{
	Use:   "testcases",
	Short: "Generate grounded test cases for a query",
	Long: `Retrieve context for the query and generate structured test cases from
it. Each case cites the source document it was derived from in its
Grounded_In field, or "NOT SPECIFIED" when no retrieved source supports it.
Without a configured generation provider the deterministic template path is
used.

Examples:
  qaforge testcases -q "discount code functionality"
  qaforge testcases -q "checkout" -o cases.json`,
	RunE: runTestcases,
}

func init() {
	testcasesCmd.Flags().StringVarP(&testcasesQuery, "query", "q", "", "generation query (required)")
	testcasesCmd.Flags().StringVarP(&testcasesOutput, "output", "o", "", "write the report JSON to this file")
	testcasesCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(testcasesCmd)
}

func runTestcases(cmd *cobra.Command, args []string) error {
	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.generate.TestCases(cmd.Context(), testcasesQuery)
	if err != nil {
		return fmt.Errorf("test case generation failed: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if testcasesOutput != "" {
		if err := os.WriteFile(testcasesOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", testcasesOutput, err)
		}
		fmt.Printf("Generated %d test cases -> %s\n", len(report.Cases), testcasesOutput)
		return nil
	}

	fmt.Println(string(data))
	return nil
}
