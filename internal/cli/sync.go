package cli

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/andrezz-b/salsa-prep/internal/config"
	"github.com/andrezz-b/salsa-prep/internal/gitsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone or update the notes repository",
	Long: `Fetch the latest notes from the data repository.

An existing checkout is updated with a shallow fetch and hard reset; if
that fails the checkout is removed and re-cloned. Set ` + config.Default().TokenEnvVar + `
for token-based HTTPS access (CI); without it SSH is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncData(cfg)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func syncData(cfg *config.Config) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Syncing " + cfg.DataDir + "..."
	s.Start()
	err := gitsync.New(cfg).Sync()
	s.Stop()
	if err != nil {
		return err
	}
	successColor.Println("Data sync complete.")
	return nil
}
