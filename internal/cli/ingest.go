package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"qaforge/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documentation files into the similarity index",
	Long: `Ingest a file or directory of documentation into the similarity index.
Supported formats: .md, .txt, .pdf, .json, .html. A file matching the
configured checkout page name additionally feeds the DOM catalog used for
script generation. One failed file never aborts a directory batch.

Examples:
  qaforge ingest ./docs              # Ingest a directory
  qaforge ingest requirements.md     # Ingest a single file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	app, err := newApp(GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	if !info.IsDir() {
		result := app.ingest.IngestFile(path)
		if result.Err != nil {
			return fmt.Errorf("failed to ingest %s: %w", result.Filename, result.Err)
		}
		if err := saveCheckoutPage(app.cfg, app.session); err != nil {
			return fmt.Errorf("failed to save checkout page snapshot: %w", err)
		}
		fmt.Printf("Ingested %s: %d chunks\n", result.Filename, result.Chunks)
		return nil
	}

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	result, err := app.ingest.IngestDirectory(path, func(done, total int, fileResult usecase.FileResult) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := saveCheckoutPage(app.cfg, app.session); err != nil {
		return fmt.Errorf("failed to save checkout page snapshot: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files ingested: %d\n", result.FilesIngested)
	fmt.Printf("  Files failed:   %d\n", result.FilesFailed)
	fmt.Printf("  Chunks added:   %d\n", result.ChunksAdded)

	if result.FilesFailed > 0 {
		fmt.Printf("\nFailures:\n")
		for _, fileResult := range result.Files {
			if fileResult.Err != nil {
				fmt.Printf("  - %s: %v\n", fileResult.Filename, fileResult.Err)
			}
		}
	}

	if app.session.HasCheckoutPage() {
		catalog := app.session.Catalog()
		fmt.Printf("\nCheckout page cataloged: %d selectors, %d buttons, %d inputs\n",
			len(catalog.Selectors), len(catalog.Buttons), len(catalog.Inputs))
	}

	return nil
}
