// Package cli implements the qaforge command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qaforge/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "qaforge",
	Short: "QAForge - Generate grounded test cases and Selenium scripts from project documentation",
	Long: `QAForge ingests project documentation (markdown, text, PDF, JSON, HTML),
indexes it for similarity search, and generates test cases and Selenium
automation scripts grounded in the retrieved content. Every generated test
case cites the source document it was derived from, or carries the sentinel
"NOT SPECIFIED" when no source supports it.

Example usage:
  qaforge ingest ./docs               # Ingest a documentation directory
  qaforge query -q "discount code"    # Inspect retrieval for a query
  qaforge testcases -q "checkout"     # Generate grounded test cases
  qaforge script -f cases.json        # Generate Selenium scripts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./qaforge.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetRootDir returns the resolved root directory.
func GetRootDir() string {
	return rootDir
}
