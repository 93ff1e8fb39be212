package review

import (
	"os"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/finding"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// ExtractStatus is the terminal state of an unreviewed-findings query.
type ExtractStatus string

const (
	// StatusNoStaged means no gathering run has ever completed: the
	// raw-results artifact does not exist.
	StatusNoStaged ExtractStatus = "no_staged"
	// StatusNoNew means raw results exist but every extracted finding
	// is already reviewed, or extraction yields nothing.
	StatusNoNew ExtractStatus = "no_new"
	// StatusHasNew means at least one extracted finding has no ledger
	// entry.
	StatusHasNew ExtractStatus = "has_new"
)

// Unreviewed extracts findings from the staged raw results and
// subtracts the review ledger. Read-only and idempotent: the ledger is
// never mutated. Corrupt raw results are treated the same as absent
// ones. Returned findings keep extraction order.
func Unreviewed(cacheDir string, opts finding.FilterOptions) (ExtractStatus, []finding.Finding) {
	data, err := os.ReadFile(cache.RawResultsPath(cacheDir))
	if err != nil {
		return StatusNoStaged, nil
	}
	reports, err := report.ParseList(data)
	if err != nil {
		return StatusNoStaged, nil
	}

	findings := finding.Extract(reports, opts)
	if len(findings) == 0 {
		return StatusNoNew, nil
	}

	reviewed := Load(cache.LedgerPath(cacheDir)).Fingerprints()
	var fresh []finding.Finding
	for _, f := range findings {
		if !reviewed[f.Fingerprint] {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return StatusNoNew, nil
	}
	return StatusHasNew, fresh
}
