package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/cache"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/finding"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// CommandConfig names an external subprocess and its timeout.
type CommandConfig struct {
	Command string `yaml:"command"`
	Timeout string `yaml:"timeout,omitempty"`
}

type Config struct {
	Topics                []string      `yaml:"topics"`
	LookbackDays          int           `yaml:"lookback_days,omitempty"`
	MinScore              int           `yaml:"min_score,omitempty"`
	MinSummaryLength      int           `yaml:"min_summary_length,omitempty"`
	RefreshIntervalDays   int           `yaml:"refresh_interval_days,omitempty"`
	ThinCacheIntervalDays int           `yaml:"thin_cache_interval_days,omitempty"`
	MaxCacheAgeDays       int           `yaml:"max_cache_age_days,omitempty"`
	CacheDir              string        `yaml:"cache_dir,omitempty"`
	Gather                CommandConfig `yaml:"gather"`
	Synthesize            CommandConfig `yaml:"synthesize"`
}

// Defaults mirrored in default_config.yaml.
const (
	defaultLookbackDays  = 7
	defaultGatherTimeout = 2 * time.Minute
	defaultSynthTimeout  = 5 * time.Minute
	defaultGatherCommand = "community-research"
	defaultSynthCommand  = "intel-synthesize"
)

// GetLookbackDays returns the lookback window, clamped defaults aside;
// values outside 1-365 are a validation error, not silently clamped.
func (c *Config) GetLookbackDays() int {
	if c.LookbackDays == 0 {
		return defaultLookbackDays
	}
	return c.LookbackDays
}

// FilterOptions returns the quality thresholds for extraction.
// Unset values take the standard defaults; explicit 0 would also read
// as unset, so disabling a filter requires a negative value.
func (c *Config) FilterOptions() finding.FilterOptions {
	opts := finding.DefaultFilterOptions()
	if c.MinScore != 0 {
		opts.MinScore = c.MinScore
	}
	if c.MinSummaryLength != 0 {
		opts.MinSummaryLength = c.MinSummaryLength
	}
	if opts.MinScore < 0 {
		opts.MinScore = 0
	}
	if opts.MinSummaryLength < 0 {
		opts.MinSummaryLength = 0
	}
	return opts
}

// Intervals returns the refresh deadline policy.
func (c *Config) Intervals() cache.Intervals {
	iv := cache.DefaultIntervals()
	if c.RefreshIntervalDays > 0 {
		iv.RefreshIntervalDays = c.RefreshIntervalDays
	}
	if c.ThinCacheIntervalDays > 0 {
		iv.ThinCacheIntervalDays = c.ThinCacheIntervalDays
	}
	return iv
}

// GetMaxCacheAgeDays returns the staleness ceiling.
func (c *Config) GetMaxCacheAgeDays() int {
	if c.MaxCacheAgeDays <= 0 {
		return cache.DefaultMaxAgeDays
	}
	return c.MaxCacheAgeDays
}

// GatherCommand returns the research subprocess name.
func (c *Config) GatherCommand() string {
	if c.Gather.Command == "" {
		return defaultGatherCommand
	}
	return c.Gather.Command
}

// SynthesizeCommand returns the synthesis subprocess name.
func (c *Config) SynthesizeCommand() string {
	if c.Synthesize.Command == "" {
		return defaultSynthCommand
	}
	return c.Synthesize.Command
}

// GatherTimeout returns the per-topic subprocess timeout.
func (c *Config) GatherTimeout() time.Duration {
	return parseTimeout(c.Gather.Timeout, defaultGatherTimeout)
}

// SynthesizeTimeout returns the synthesis subprocess timeout.
func (c *Config) SynthesizeTimeout() time.Duration {
	return parseTimeout(c.Synthesize.Timeout, defaultSynthTimeout)
}

func parseTimeout(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ResolveCacheDir returns the cache directory: explicit config value,
// INTEL_CACHE_DIR, or the XDG data home default.
func (c *Config) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if dir := os.Getenv("INTEL_CACHE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, "intel-cache")
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "intel-cache", "config.yaml")
}

// LoadEnv loads a .env file if one is present. Missing files are fine.
func LoadEnv() {
	_ = godotenv.Load()
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, falling back to the default path and,
// on first run, writing the embedded defaults there.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: persist defaults, but don't fail if we can't.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configuration a refresh run could not act on.
func Validate(cfg *Config) error {
	if days := cfg.GetLookbackDays(); days < 1 || days > 365 {
		return fmt.Errorf("lookback_days must be between 1 and 365, got %d", days)
	}
	for i, t := range cfg.Topics {
		if t == "" {
			return fmt.Errorf("topic %d: must not be empty", i)
		}
	}
	if cfg.RefreshIntervalDays < 0 {
		return fmt.Errorf("refresh_interval_days must not be negative")
	}
	if cfg.ThinCacheIntervalDays < 0 {
		return fmt.Errorf("thin_cache_interval_days must not be negative")
	}
	return nil
}
