package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Topics) == 0 {
		t.Error("expected at least one default topic")
	}
	if cfg.GetLookbackDays() != 7 {
		t.Errorf("default lookback = %d, want 7", cfg.GetLookbackDays())
	}
	opts := cfg.FilterOptions()
	if opts.MinScore != 25 || opts.MinSummaryLength != 40 {
		t.Errorf("default filter options = %+v", opts)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
topics:
  - "only topic"
lookback_days: 14
min_score: 10
refresh_interval_days: 60
gather:
  command: my-research
  timeout: 90s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Topics) != 1 || cfg.Topics[0] != "only topic" {
		t.Errorf("topics = %v", cfg.Topics)
	}
	if cfg.GetLookbackDays() != 14 {
		t.Errorf("lookback = %d, want 14", cfg.GetLookbackDays())
	}
	if cfg.FilterOptions().MinScore != 10 {
		t.Errorf("min score = %d, want 10", cfg.FilterOptions().MinScore)
	}
	if cfg.Intervals().RefreshIntervalDays != 60 {
		t.Errorf("refresh interval = %d, want 60", cfg.Intervals().RefreshIntervalDays)
	}
	if cfg.GatherCommand() != "my-research" {
		t.Errorf("gather command = %q", cfg.GatherCommand())
	}
	if cfg.GatherTimeout() != 90*time.Second {
		t.Errorf("gather timeout = %v, want 90s", cfg.GatherTimeout())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if len(cfg.Topics) == 0 {
		t.Error("expected default topics")
	}
	// First run writes the defaults for next time.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults written to %s: %v", path, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{}, true},
		{"lookback too small", Config{LookbackDays: -1}, false},
		{"lookback too large", Config{LookbackDays: 400}, false},
		{"lookback at max", Config{LookbackDays: 365}, true},
		{"empty topic", Config{Topics: []string{"ok", ""}}, false},
		{"negative interval", Config{RefreshIntervalDays: -1}, false},
	}
	for _, tt := range tests {
		err := Validate(&tt.cfg)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestFilterOptionsNegativeDisables(t *testing.T) {
	cfg := &Config{MinScore: -1, MinSummaryLength: -1}
	opts := cfg.FilterOptions()
	if opts.MinScore != 0 || opts.MinSummaryLength != 0 {
		t.Errorf("negative thresholds should disable filtering, got %+v", opts)
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := &Config{
		Gather:     CommandConfig{Timeout: "bogus"},
		Synthesize: CommandConfig{},
	}
	if cfg.GatherTimeout() != 2*time.Minute {
		t.Errorf("invalid timeout should fall back to 2m, got %v", cfg.GatherTimeout())
	}
	if cfg.SynthesizeTimeout() != 5*time.Minute {
		t.Errorf("unset synthesis timeout should default to 5m, got %v", cfg.SynthesizeTimeout())
	}
}

func TestResolveCacheDirPrecedence(t *testing.T) {
	t.Setenv("INTEL_CACHE_DIR", "/tmp/from-env")

	cfg := &Config{CacheDir: "/tmp/from-config"}
	if got := cfg.ResolveCacheDir(); got != "/tmp/from-config" {
		t.Errorf("explicit config dir should win, got %q", got)
	}

	cfg = &Config{}
	if got := cfg.ResolveCacheDir(); got != "/tmp/from-env" {
		t.Errorf("env var should beat the xdg default, got %q", got)
	}
}
