package cli

import (
	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/jsongen"
)

var generateForce bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the JSON search indexes",
	Long: `Walk the normalized content directories and write moves.json,
concepts.json, and the merged search.json. Generation is skipped when the
artifacts are newer than every content file; --force bypasses that check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := jsongen.New(cfg.JSONDir, cfg.ContentMoves, cfg.ContentConcepts)
		return g.Generate(generateForce)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Regenerate even if artifacts are up to date")
}
