package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/review"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/tui"
)

var (
	flagAccept      []string
	flagReject      []string
	flagInteractive bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Record accept/reject decisions for findings",
	Long: `Apply review decisions to a batch of finding fingerprints. The last
recorded decision for a fingerprint wins; earlier ones are replaced.

With --interactive, open a terminal UI over the unreviewed findings and
record whatever was marked when the session is confirmed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cacheDir, err := loadConfig()
		if err != nil {
			emitFailed(err.Error())
			return nil
		}
		ledgerPath := cache.LedgerPath(cacheDir)

		accepted, rejected := flagAccept, flagReject
		if flagInteractive {
			status, findings := review.Unreviewed(cacheDir, cfg.FilterOptions())
			if status != review.StatusHasNew {
				emit(map[string]any{"status": string(status)})
				return nil
			}
			outcome, err := tui.Run(findings)
			if err != nil {
				emitFailed(err.Error())
				return nil
			}
			accepted, rejected = outcome.Accepted, outcome.Rejected
		}

		if len(accepted) == 0 && len(rejected) == 0 {
			emit(map[string]any{"status": "no_decisions"})
			return nil
		}

		now := time.Now()
		if err := review.RecordDecisions(ledgerPath, accepted, review.Accepted, now); err != nil {
			emitFailed(err.Error())
			return nil
		}
		if err := review.RecordDecisions(ledgerPath, rejected, review.Rejected, now); err != nil {
			emitFailed(err.Error())
			return nil
		}

		emit(map[string]any{
			"status":   "recorded",
			"accepted": len(accepted),
			"rejected": len(rejected),
		})
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringSliceVar(&flagAccept, "accept", nil, "fingerprints to mark accepted")
	reviewCmd.Flags().StringSliceVar(&flagReject, "reject", nil, "fingerprints to mark rejected")
	reviewCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "review findings in a terminal UI")
}
