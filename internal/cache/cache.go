// Package cache persists the research artifacts for a cache directory
// and decides when they are stale. All state is flat files; every write
// is an atomic replace so no reader observes a partial file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// ContentPath returns the rendered-content artifact path.
func ContentPath(dir string) string { return filepath.Join(dir, ContentFile) }

// RawResultsPath returns the raw-results artifact path.
func RawResultsPath(dir string) string { return filepath.Join(dir, RawResultsFile) }

// MetadataPath returns the metadata artifact path.
func MetadataPath(dir string) string { return filepath.Join(dir, MetadataFile) }

// LedgerPath returns the review-ledger path.
func LedgerPath(dir string) string { return filepath.Join(dir, LedgerFile) }

// LoadMetadata reads and parses the metadata artifact. Missing or
// corrupt metadata is an error; callers decide whether that means
// "stale" or "no prior cache".
func LoadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(MetadataPath(dir))
	if err != nil {
		return nil, err
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	if md.LastUpdated.IsZero() || md.NextUpdateAfter.IsZero() {
		return nil, errors.New("metadata missing timestamps")
	}
	return &md, nil
}

// IsFresh reports whether the cached output is still valid at now.
// Fresh requires parseable metadata, a present content artifact, age
// within the max ceiling, and now before the computed refresh deadline.
// Every failure mode resolves to false: fail safe toward refreshing.
func IsFresh(dir string, now time.Time, maxAgeDays int) bool {
	md, err := LoadMetadata(dir)
	if err != nil {
		return false
	}
	// Metadata alone is not enough: a crash between writes can leave
	// metadata without content.
	if _, err := os.Stat(ContentPath(dir)); err != nil {
		return false
	}
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	if now.Sub(md.LastUpdated) > time.Duration(maxAgeDays)*24*time.Hour {
		return false
	}
	return now.Before(md.NextUpdateAfter)
}

// IntervalDays returns the refresh interval for a run in which
// successCount of totalTopics topic queries succeeded. At least half
// succeeding earns the full interval; below that the thin interval
// lets a partially failed topic set self-heal quickly.
func IntervalDays(successCount, totalTopics int, cfg Intervals) int {
	if cfg.RefreshIntervalDays <= 0 || cfg.ThinCacheIntervalDays <= 0 {
		def := DefaultIntervals()
		if cfg.RefreshIntervalDays <= 0 {
			cfg.RefreshIntervalDays = def.RefreshIntervalDays
		}
		if cfg.ThinCacheIntervalDays <= 0 {
			cfg.ThinCacheIntervalDays = def.ThinCacheIntervalDays
		}
	}
	if totalTopics <= 0 {
		return cfg.ThinCacheIntervalDays
	}
	if float64(successCount)/float64(totalTopics) >= 0.5 {
		return cfg.RefreshIntervalDays
	}
	return cfg.ThinCacheIntervalDays
}

// NextDeadline computes the next refresh deadline from the success
// ratio of the run that just completed.
func NextDeadline(successCount, totalTopics int, cfg Intervals, now time.Time) time.Time {
	days := IntervalDays(successCount, totalTopics, cfg)
	return now.Add(time.Duration(days) * 24 * time.Hour)
}

// BuildBackoffMetadata constructs the metadata written after a run in
// which every topic failed: retry in four hours, and keep the previous
// LastUpdated so a fully failed run cannot masquerade as a refresh when
// the age ceiling is evaluated later. With no prior metadata,
// LastUpdated falls back to now.
func BuildBackoffMetadata(dir string, topics []string, now time.Time) Metadata {
	md := Metadata{
		LastUpdated:      now,
		TopicsResearched: topics,
		NextUpdateAfter:  now.Add(backoffInterval),
	}
	if prev, err := LoadMetadata(dir); err == nil {
		md.LastUpdated = prev.LastUpdated
		if len(prev.TopicsResearched) > 0 {
			md.TopicsResearched = prev.TopicsResearched
		}
	}
	return md
}

// WriteFiles persists the three refresh artifacts: rendered content,
// then raw reports (nil entries dropped), then metadata. The order is a
// crash-safety invariant: a crash between writes leaves a cache the
// staleness evaluator classifies as not fresh, never as falsely fresh.
func WriteFiles(dir, content string, md Metadata, reports []*report.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	if err := writeFileAtomic(ContentPath(dir), []byte(content)); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	kept := make([]*report.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			kept = append(kept, r)
		}
	}
	raw, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding raw results: %w", err)
	}
	if err := writeFileAtomic(RawResultsPath(dir), append(raw, '\n')); err != nil {
		return fmt.Errorf("writing raw results: %w", err)
	}

	return WriteBackoffMetadata(dir, md)
}

// WriteBackoffMetadata writes only the metadata artifact, leaving any
// existing content untouched so a stale-but-present cache survives a
// failed refresh attempt.
func WriteBackoffMetadata(dir string, md Metadata) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := writeFileAtomic(MetadataPath(dir), append(data, '\n')); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Reset removes the content, raw-results, and metadata artifacts. The
// review ledger is deliberately left in place.
func Reset(dir string) error {
	for _, path := range []string{ContentPath(dir), RawResultsPath(dir), MetadataPath(dir)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory
// and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
