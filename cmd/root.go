package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/config"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/logging"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagCacheDir string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "intel-cache",
	Short: "Cached community research with a review workflow",
	Long: `intel-cache maintains a local cache of community research (reddit, X, web)
gathered per topic by an external subprocess, synthesizes it into a markdown
digest, and tracks accept/reject review decisions for individual findings.

Every command prints a single JSON status line on stdout and exits zero;
failures are reported as data so automated callers are never blocked.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(flagVerbose)
		config.LoadEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "cache directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging on stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reviewCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("intel-cache %s (commit: %s, built: %s)\n", version, commit, date)
		if r := update.Check(context.Background(), version); r != nil {
			fmt.Printf("A newer version is available: %s\n", r.LatestVersion)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// loadConfig resolves config and the effective cache directory.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, "", err
	}
	dir := flagCacheDir
	if dir == "" {
		dir = cfg.ResolveCacheDir()
	}
	return cfg, dir, nil
}

// emit prints the single status line every command ends with.
func emit(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Printf(`{"status":"failed","diagnostics":["encoding status: %s"]}`+"\n", err)
		return
	}
	fmt.Println(string(data))
}

// emitFailed reports a fatal-to-the-run error as data, not an exit code.
func emitFailed(diagnostics ...string) {
	emit(map[string]any{"status": "failed", "diagnostics": diagnostics})
}
