package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/gather"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/research"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/synth"
)

var (
	flagForce bool
	flagDays  int
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Gather research and refresh the cache if stale",
	Long: `Run the full research cycle: check staleness, gather each configured topic
via the research subprocess, synthesize a markdown digest, and write the
cache artifacts. A fresh cache is left untouched unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cacheDir, err := loadConfig()
		if err != nil {
			emitFailed(err.Error())
			return nil
		}

		status := research.Run(cmd.Context(), cfg, research.Options{
			CacheDir:    cacheDir,
			Force:       flagForce,
			Days:        flagDays,
			Gatherer:    gather.NewCommandGatherer(cfg.GatherCommand(), cfg.GatherTimeout()),
			Synthesizer: synth.NewCommandSynthesizer(cfg.SynthesizeCommand(), cfg.SynthesizeTimeout()),
		})
		emit(status)
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&flagForce, "force", false, "refresh even if the cache is fresh")
	refreshCmd.Flags().IntVar(&flagDays, "days", 0, "lookback window in days (1-365, default from config)")
}
