package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/finding"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/review"
)

type extractResult struct {
	Status   review.ExtractStatus `json:"status"`
	Findings []finding.Finding    `json:"findings,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "List findings that have not been reviewed yet",
	Long: `Extract findings from the staged raw results, apply the quality filter and
fingerprint dedup, and subtract everything already in the review ledger.
Read-only: the ledger is never modified.

Status is one of: no_staged (no gathering run has completed), no_new
(nothing unreviewed), has_new (findings follow).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cacheDir, err := loadConfig()
		if err != nil {
			emitFailed(err.Error())
			return nil
		}

		status, findings := review.Unreviewed(cacheDir, cfg.FilterOptions())
		emit(extractResult{Status: status, Findings: findings})
		return nil
	},
}
