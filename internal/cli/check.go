package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/changes"
)

var checkCmd = &cobra.Command{
	Use:   "check [folders...]",
	Short: "Report whether the checkout has relevant changes",
	Long: `Compare the checkout's current commit against the last imported one.

Pass folder names to only count changes under those folders; with no
arguments any commit difference counts. Prints CHANGED or NO_CHANGE.
The commit cache is never written by this command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result := changes.NewDetector(cfg).Detect(args)
		VerboseLog("current commit: %s (update cache: %v)", result.CurrentCommit, result.ShouldUpdateCache)
		if result.HasChanges {
			fmt.Println("CHANGED")
		} else {
			fmt.Println("NO_CHANGE")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
