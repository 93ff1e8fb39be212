// Package finding normalizes raw research reports into a flat list of
// findings, with fingerprint identity, quality filtering, and dedup.
package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// Type identifies the source category a finding came from.
type Type string

const (
	TypeReddit Type = "reddit"
	TypeX      Type = "x"
	TypeWeb    Type = "web"
)

// Finding is the normalized unit of intelligence extracted from a raw
// report item. Identity is the fingerprint, derived solely from URL.
type Finding struct {
	Fingerprint string `json:"fingerprint"`
	Type        Type   `json:"type"`
	Topic       string `json:"topic"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Date        string `json:"date,omitempty"`
}

// Fingerprint returns the stable content-address for a URL: the full
// sha256 digest in lowercase hex. The same URL always yields the same
// fingerprint across refreshes.
func Fingerprint(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// FilterOptions holds the quality thresholds applied during extraction.
// A threshold of 0 disables that check.
type FilterOptions struct {
	MinScore         int
	MinSummaryLength int
}

// DefaultFilterOptions returns the standard quality thresholds.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{MinScore: 25, MinSummaryLength: 40}
}

// Passes reports whether an item meets both thresholds. Boundary values
// are inclusive: score == MinScore passes.
func (o FilterOptions) Passes(score int, summary string) bool {
	if o.MinScore > 0 && score < o.MinScore {
		return false
	}
	if o.MinSummaryLength > 0 && utf8.RuneCountInString(summary) < o.MinSummaryLength {
		return false
	}
	return true
}

// maxXTitleLen bounds the display text taken from an X post.
const maxXTitleLen = 120

// Extract flattens reports into findings: map each item to the uniform
// shape, drop items failing the quality filter, then dedup by
// fingerprint with first occurrence winning. Iteration respects report
// order and, within a report, reddit then x then web. Nil reports are
// skipped. An empty input yields an empty result.
func Extract(reports []*report.Report, opts FilterOptions) []Finding {
	var findings []Finding
	seen := make(map[string]bool)

	add := func(f Finding) {
		if !opts.Passes(f.Score, f.Summary) {
			return
		}
		if seen[f.Fingerprint] {
			return
		}
		seen[f.Fingerprint] = true
		findings = append(findings, f)
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		for _, p := range r.Reddit {
			add(Finding{
				Fingerprint: Fingerprint(p.URL),
				Type:        TypeReddit,
				Topic:       r.Topic,
				Title:       p.Title,
				Summary:     p.Relevance,
				URL:         p.URL,
				Score:       p.Score,
				Date:        p.Date,
			})
		}
		for _, p := range r.X {
			add(Finding{
				Fingerprint: Fingerprint(p.URL),
				Type:        TypeX,
				Topic:       r.Topic,
				Title:       truncate(p.Text, maxXTitleLen),
				Summary:     p.Relevance,
				URL:         p.URL,
				Score:       p.Score,
				Date:        p.Date,
			})
		}
		for _, w := range r.Web {
			add(Finding{
				Fingerprint: Fingerprint(w.URL),
				Type:        TypeWeb,
				Topic:       r.Topic,
				Title:       w.Title,
				Summary:     w.Relevance,
				URL:         w.URL,
				Score:       w.Score,
			})
		}
	}
	return findings
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
