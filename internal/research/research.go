// Package research orchestrates a single refresh cycle:
// staleness gate, per-topic gathering, synthesis, and the cache write.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/config"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/gather"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/logging"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/render"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/synth"
)

// Status is the single structured result of a refresh run. Failures are
// data: the process still exits zero so the calling hook is never
// blocked.
type Status struct {
	Status       string   `json:"status"` // refreshed | fresh | failed | no_cache
	Topics       int      `json:"topics,omitempty"`
	Succeeded    int      `json:"succeeded,omitempty"`
	IntervalDays int      `json:"interval_days,omitempty"`
	NextUpdate   string   `json:"next_update_after,omitempty"`
	Diagnostics  []string `json:"diagnostics,omitempty"`
}

const (
	StatusRefreshed = "refreshed"
	StatusFresh     = "fresh"
	StatusFailed    = "failed"
	StatusNoCache   = "no_cache"
)

// Options carries the per-run inputs. Gatherer and Synthesizer are
// injectable so tests run without real subprocesses.
type Options struct {
	CacheDir    string
	Force       bool
	Days        int // 0 means use the configured lookback
	Now         time.Time
	Gatherer    gather.Gatherer
	Synthesizer synth.Synthesizer
}

// Run performs one gather -> synthesize -> write cycle. It never
// returns an error: every failure mode is folded into the Status and
// its diagnostics list.
func Run(ctx context.Context, cfg *config.Config, opts Options) Status {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	days := opts.Days
	if days == 0 {
		days = cfg.GetLookbackDays()
	}
	if days < 1 || days > 365 {
		return Status{Status: StatusFailed, Diagnostics: []string{
			fmt.Sprintf("lookback days must be between 1 and 365, got %d", days),
		}}
	}
	if len(cfg.Topics) == 0 {
		return Status{Status: StatusFailed, Diagnostics: []string{"no topics configured"}}
	}

	if !opts.Force && cache.IsFresh(opts.CacheDir, now, cfg.GetMaxCacheAgeDays()) {
		logging.Debug("cache still fresh, skipping refresh", "dir", opts.CacheDir)
		return Status{Status: StatusFresh, Topics: len(cfg.Topics)}
	}

	var diagnostics []string

	results := gather.GatherAll(ctx, opts.Gatherer, cfg.Topics, days)
	reports := make([]*report.Report, 0, len(results))
	succeeded := 0
	for _, res := range results {
		if res.Err != nil {
			diagnostics = append(diagnostics, res.Err.Error())
			logging.Warn("topic failed", "topic", res.Topic, "err", res.Err)
			continue
		}
		reports = append(reports, res.Report)
		succeeded++
	}

	if succeeded == 0 {
		hadPrior := priorCacheExists(opts.CacheDir)
		md := cache.BuildBackoffMetadata(opts.CacheDir, cfg.Topics, now)
		if err := cache.WriteBackoffMetadata(opts.CacheDir, md); err != nil {
			diagnostics = append(diagnostics, err.Error())
		}
		status := StatusNoCache
		if hadPrior {
			status = StatusFailed
		}
		return Status{
			Status:      status,
			Topics:      len(cfg.Topics),
			NextUpdate:  md.NextUpdateAfter.Format(time.RFC3339),
			Diagnostics: diagnostics,
		}
	}

	content, err := opts.Synthesizer.Synthesize(ctx, reports, "topics: "+strings.Join(cfg.Topics, ", "))
	if err != nil {
		diagnostics = append(diagnostics, err.Error())
		logging.Warn("synthesis failed, using deterministic rendering", "err", err)
		content = render.Markdown(reports, now)
	}

	intervals := cfg.Intervals()
	md := cache.Metadata{
		LastUpdated:      now,
		TopicsResearched: cfg.Topics,
		NextUpdateAfter:  cache.NextDeadline(succeeded, len(cfg.Topics), intervals, now),
	}
	if err := cache.WriteFiles(opts.CacheDir, content, md, reports); err != nil {
		diagnostics = append(diagnostics, err.Error())
		return Status{Status: StatusFailed, Topics: len(cfg.Topics), Succeeded: succeeded, Diagnostics: diagnostics}
	}

	return Status{
		Status:       StatusRefreshed,
		Topics:       len(cfg.Topics),
		Succeeded:    succeeded,
		IntervalDays: cache.IntervalDays(succeeded, len(cfg.Topics), intervals),
		NextUpdate:   md.NextUpdateAfter.Format(time.RFC3339),
		Diagnostics:  diagnostics,
	}
}

func priorCacheExists(dir string) bool {
	_, err := cache.LoadMetadata(dir)
	return err == nil
}
