package research

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/config"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

type fakeGatherer struct {
	fail map[string]bool // topics that should fail
}

func (g *fakeGatherer) Gather(ctx context.Context, topic string, days int) (*report.Report, error) {
	if g.fail[topic] {
		return nil, fmt.Errorf("topic %q: simulated failure", topic)
	}
	return &report.Report{
		Topic: topic,
		Reddit: []report.RedditPost{
			{Title: "T", URL: "https://reddit.com/" + topic, Score: 50, Relevance: strings.Repeat("relevant ", 6)},
		},
	}, nil
}

type fakeSynthesizer struct {
	fail   bool
	output string
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, reports []*report.Report, contextText string) (string, error) {
	if s.fail {
		return "", errors.New("simulated synthesis failure")
	}
	if s.output != "" {
		return s.output, nil
	}
	return "# synthesized\n", nil
}

func testConfig(topics ...string) *config.Config {
	return &config.Config{Topics: topics, LookbackDays: 7}
}

func runOpts(dir string, g *fakeGatherer, s *fakeSynthesizer) Options {
	return Options{CacheDir: dir, Gatherer: g, Synthesizer: s, Now: time.Now()}
}

func TestRunNoTopics(t *testing.T) {
	status := Run(context.Background(), testConfig(), runOpts(t.TempDir(), &fakeGatherer{}, &fakeSynthesizer{}))
	if status.Status != StatusFailed {
		t.Errorf("status = %q, want failed", status.Status)
	}
	if len(status.Diagnostics) == 0 {
		t.Error("expected a diagnostic for missing topics")
	}
}

func TestRunBadLookback(t *testing.T) {
	cfg := testConfig("a")
	opts := runOpts(t.TempDir(), &fakeGatherer{}, &fakeSynthesizer{})
	opts.Days = 999
	status := Run(context.Background(), cfg, opts)
	if status.Status != StatusFailed {
		t.Errorf("status = %q, want failed", status.Status)
	}
	// Config errors must not leave partial writes.
	if _, err := os.Stat(cache.MetadataPath(opts.CacheDir)); !os.IsNotExist(err) {
		t.Error("failed validation must not write metadata")
	}
}

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a", "b")
	status := Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{output: "# digest\n"}))

	if status.Status != StatusRefreshed {
		t.Fatalf("status = %q, want refreshed (diagnostics: %v)", status.Status, status.Diagnostics)
	}
	if status.Succeeded != 2 || status.Topics != 2 {
		t.Errorf("succeeded/topics = %d/%d, want 2/2", status.Succeeded, status.Topics)
	}
	if status.IntervalDays != 30 {
		t.Errorf("interval = %d, want full 30", status.IntervalDays)
	}

	content, err := os.ReadFile(cache.ContentPath(dir))
	if err != nil {
		t.Fatalf("reading content: %v", err)
	}
	if string(content) != "# digest\n" {
		t.Errorf("content = %q", content)
	}
	md, err := cache.LoadMetadata(dir)
	if err != nil {
		t.Fatalf("loading metadata: %v", err)
	}
	if !md.NextUpdateAfter.After(md.LastUpdated) {
		t.Error("next_update_after should be after last_updated")
	}
}

func TestRunSkipsFreshCache(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a")

	first := Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{}))
	if first.Status != StatusRefreshed {
		t.Fatalf("precondition: %q", first.Status)
	}

	second := Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{fail: map[string]bool{"a": true}}, &fakeSynthesizer{}))
	if second.Status != StatusFresh {
		t.Errorf("fresh cache should short-circuit, got %q", second.Status)
	}
}

func TestRunForceRefreshesFreshCache(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a")

	Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{}))

	opts := runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{})
	opts.Force = true
	status := Run(context.Background(), cfg, opts)
	if status.Status != StatusRefreshed {
		t.Errorf("force should bypass the staleness gate, got %q", status.Status)
	}
}

func TestRunThinInterval(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a", "b", "c", "d")
	g := &fakeGatherer{fail: map[string]bool{"b": true, "c": true, "d": true}}

	status := Run(context.Background(), cfg, runOpts(dir, g, &fakeSynthesizer{}))
	if status.Status != StatusRefreshed {
		t.Fatalf("status = %q, want refreshed", status.Status)
	}
	if status.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", status.Succeeded)
	}
	if status.IntervalDays != 7 {
		t.Errorf("interval = %d, want thin 7", status.IntervalDays)
	}
	if len(status.Diagnostics) != 3 {
		t.Errorf("expected 3 per-topic diagnostics, got %d", len(status.Diagnostics))
	}
}

func TestRunTotalFailureNoCache(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a", "b")
	g := &fakeGatherer{fail: map[string]bool{"a": true, "b": true}}

	status := Run(context.Background(), cfg, runOpts(dir, g, &fakeSynthesizer{}))
	if status.Status != StatusNoCache {
		t.Errorf("total failure with no prior cache = %q, want no_cache", status.Status)
	}

	md, err := cache.LoadMetadata(dir)
	if err != nil {
		t.Fatalf("backoff metadata should be written: %v", err)
	}
	if diff := md.NextUpdateAfter.Sub(md.LastUpdated) - 4*time.Hour; diff.Abs() > time.Second {
		t.Errorf("backoff deadline should be 4h out, off by %v", diff)
	}
	if _, err := os.Stat(cache.ContentPath(dir)); !os.IsNotExist(err) {
		t.Error("total failure must not write content")
	}
}

func TestRunTotalFailureWithPriorCache(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a")

	first := Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{}))
	if first.Status != StatusRefreshed {
		t.Fatalf("precondition: %q", first.Status)
	}
	priorMD, err := cache.LoadMetadata(dir)
	if err != nil {
		t.Fatalf("loading prior metadata: %v", err)
	}

	opts := runOpts(dir, &fakeGatherer{fail: map[string]bool{"a": true}}, &fakeSynthesizer{})
	opts.Force = true
	status := Run(context.Background(), cfg, opts)
	if status.Status != StatusFailed {
		t.Errorf("total failure with prior cache = %q, want failed", status.Status)
	}

	md, err := cache.LoadMetadata(dir)
	if err != nil {
		t.Fatalf("loading metadata: %v", err)
	}
	if !md.LastUpdated.Equal(priorMD.LastUpdated) {
		t.Errorf("backoff must preserve last_updated: got %v, want %v", md.LastUpdated, priorMD.LastUpdated)
	}
	if _, err := os.Stat(cache.ContentPath(dir)); err != nil {
		t.Error("prior content must survive a failed refresh")
	}
}

func TestRunSynthesisFallback(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("a")

	status := Run(context.Background(), cfg, runOpts(dir, &fakeGatherer{}, &fakeSynthesizer{fail: true}))
	if status.Status != StatusRefreshed {
		t.Fatalf("synthesis failure must not fail the run, got %q", status.Status)
	}
	if len(status.Diagnostics) != 1 {
		t.Errorf("expected a synthesis diagnostic, got %v", status.Diagnostics)
	}

	content, err := os.ReadFile(cache.ContentPath(dir))
	if err != nil {
		t.Fatalf("reading content: %v", err)
	}
	if !strings.Contains(string(content), "Community Intel Digest") {
		t.Errorf("expected deterministic fallback rendering, got:\n%s", content)
	}
}
