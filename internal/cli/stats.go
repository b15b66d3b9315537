package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every chunk from the index",
	RunE:  runClear,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Remove all chunks originating from the named file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.retrieve.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Collection: %s (%s)\n", stats.CollectionName, stats.Strategy)
	fmt.Printf("  Chunks:     %d\n", stats.TotalChunks)
	if len(stats.FileTypes) > 0 {
		fmt.Printf("  File types: %s\n", strings.Join(stats.FileTypes, ", "))
	}
	if len(stats.SampleFilenames) > 0 {
		names := stats.SampleFilenames
		if len(names) > 10 {
			names = names[:10]
		}
		fmt.Printf("  Files:      %s\n", strings.Join(names, ", "))
	}
	if app.session.HasCheckoutPage() {
		catalog := app.session.Catalog()
		fmt.Printf("  Checkout page: cataloged (%d selectors)\n", len(catalog.Selectors))
	} else {
		fmt.Printf("  Checkout page: not ingested\n")
	}

	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.retrieve.Clear(); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	fmt.Println("Index cleared.")
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.retrieve.DeleteBySource(args[0]); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", args[0], err)
	}
	fmt.Printf("Removed all chunks from %s\n", args[0])
	return nil
}
