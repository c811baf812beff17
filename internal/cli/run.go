package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/changes"
	"github.com/andrezz-b/salsa-prep/internal/importer"
	"github.com/andrezz-b/salsa-prep/internal/jsongen"
)

var (
	runMovesOut    string
	runConceptsOut string
	runForce       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: sync, check, import, generate",
	Long: `Run all pipeline stages in order. The import stage is skipped when the
checkout holds no relevant changes since the last imported commit; the
commit cache is updated only after a successful import.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runMovesOut, "moves-out", "", "Output directory for processed moves (required)")
	runCmd.Flags().StringVar(&runConceptsOut, "concepts-out", "", "Output directory for processed concepts (required)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Import and regenerate even without detected changes")
	_ = runCmd.MarkFlagRequired("moves-out")
	_ = runCmd.MarkFlagRequired("concepts-out")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	// Fail on bad configuration before any work begins.
	imp, err := importer.New(cfg.DataDir, runMovesOut, runConceptsOut)
	if err != nil {
		return err
	}

	start := time.Now()

	titleColor.Println("\n--- [1/4] Syncing data ---")
	if err := syncData(cfg); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	titleColor.Println("\n--- [2/4] Checking for changes ---")
	detector := changes.NewDetector(cfg)
	result := detector.Detect(cfg.Folders)
	VerboseLog("current commit: %s, changes: %v, update cache: %v",
		result.CurrentCommit, result.HasChanges, result.ShouldUpdateCache)

	titleColor.Println("\n--- [3/4] Importing content ---")
	if result.HasChanges || runForce {
		if err := imp.Run(); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		if result.ShouldUpdateCache {
			if err := detector.UpdateCache(result.CurrentCommit); err != nil {
				return fmt.Errorf("update commit cache: %w", err)
			}
		}
		successColor.Println("Import complete.")
	} else {
		dimColor.Println("No relevant changes, skipping import.")
		// The commit may have advanced irrelevantly; record it so future
		// diffs start from the newer baseline.
		if result.ShouldUpdateCache {
			if err := detector.UpdateCache(result.CurrentCommit); err != nil {
				return fmt.Errorf("update commit cache: %w", err)
			}
		}
	}

	titleColor.Println("\n--- [4/4] Generating search index ---")
	g := jsongen.New(cfg.JSONDir, runMovesOut, runConceptsOut)
	if err := g.Generate(runForce); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	successColor.Printf("\nBuild preparation complete in %.2fs\n", time.Since(start).Seconds())
	return nil
}
