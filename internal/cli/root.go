package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/config"
)

var (
	verbose bool
	cfg     *config.Config
)

var (
	titleColor   = color.New(color.FgHiCyan, color.Bold)
	successColor = color.New(color.FgHiGreen)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "salsa-prep",
	Short: "salsa-prep - Prepare the salsa notes vault for the site build",
	Long: `salsa-prep converts the Obsidian vault of salsa notes into the content
set and search indexes the site build consumes.

The pipeline has four stages, each available as its own command:

  sync      Clone or update the notes repository
  check     Report whether the checkout has relevant changes
  import    Resolve links and normalize notes into the content directories
  generate  Build the JSON search indexes

Use 'salsa-prep run' to execute the full pipeline in order.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the token just stays unset.
		_ = godotenv.Load()
		cfg = config.Default()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
