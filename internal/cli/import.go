package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/importer"
)

var (
	importMovesOut    string
	importConceptsOut string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Resolve links and normalize notes into the content directories",
	Long: `Process every note in the checkout: resolve [[wiki-links]] and relation
fields to slugs, normalize frontmatter, and write one file per note named
by its slug. Broken references are warnings, never fatal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		imp, err := importer.New(cfg.DataDir, importMovesOut, importConceptsOut)
		if err != nil {
			return err
		}
		if err := imp.Run(); err != nil {
			return err
		}
		successColor.Println("Import complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importMovesOut, "moves-out", "", "Output directory for processed moves (required)")
	importCmd.Flags().StringVar(&importConceptsOut, "concepts-out", "", "Output directory for processed concepts (required)")
	_ = importCmd.MarkFlagRequired("moves-out")
	_ = importCmd.MarkFlagRequired("concepts-out")
}
