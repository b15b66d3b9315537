package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryText   string
	queryTopK   int
	queryFilter []string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the index and show the grounded signals",
	Long: `Search the similarity index for a query and show the retrieved chunks
together with the grounded signal categories extracted from them.

Examples:
  qaforge query -q "discount code rules"
  qaforge query -q "checkout" -n 10 --filter file_type=markdown
  qaforge query -q "validation" --json`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top", "n", 0, "number of results (default from config)")
	queryCmd.Flags().StringArrayVar(&queryFilter, "filter", nil, "metadata filter key=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output JSON")
	queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	filter, err := parseFilter(queryFilter)
	if err != nil {
		return err
	}

	results, err := app.retrieve.Search(queryText, queryTopK, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s (chunk %d/%d)\n",
			i+1, result.Score, result.Meta.Filename,
			result.Meta.ChunkIndex+1, result.Meta.TotalChunks)
		text := result.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Printf("   %s\n\n", text)
	}

	return nil
}

func parseFilter(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}
