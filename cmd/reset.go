package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the cache artifacts, keeping review decisions",
	Long: `Remove the rendered content, raw results, and metadata so the next refresh
starts from scratch. The review ledger is preserved: decisions survive a
reset so re-gathered findings stay reviewed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cacheDir, err := loadConfig()
		if err != nil {
			emitFailed(err.Error())
			return nil
		}

		if err := cache.Reset(cacheDir); err != nil {
			emitFailed(err.Error())
			return nil
		}
		emit(map[string]any{"status": "reset", "cache_dir": cacheDir})
		return nil
	},
}
