package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"canopy/internal/cache"
	"canopy/internal/config"
	"canopy/internal/design"
	"canopy/internal/gitquery"
	"canopy/internal/hosts"
	"canopy/internal/model"
	"canopy/internal/slogutil"
	"canopy/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "canopy - branch topology and drift detection",
	Long: `canopy infers the parent/child structure of a repository's branches,
compares it against the designed tree, annotates each branch with
divergence and review state, and reports drift as advisory warnings.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("canopy version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository path (default: discovered from the working directory)")
}

func newContext() context.Context {
	return context.Background()
}

// mustGetRepoRoot resolves the repository root from --repo or the
// current directory, exiting when neither is inside a git repository.
func mustGetRepoRoot() string {
	start := repoFlag
	if start == "" {
		start = "."
	}
	root, err := gitquery.RepoRoot(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: not inside a git repository: %v\n", err)
		os.Exit(1)
	}
	return root
}

// mustLoadConfig loads and validates .canopy/config.json.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the configured logger. Log output goes to the
// configured file when set, otherwise to stderr so stdout stays clean
// for command output.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		logger, _, err := slogutil.NewFileLogger(cfg.Logging.File, level)
		if err == nil {
			return logger
		}
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file, logging to stderr: %v\n", err)
	}
	return slogutil.NewLogger(os.Stderr, level)
}

// environment bundles the per-repo inputs every command starts from.
type environment struct {
	RepoRoot string
	Config   *config.Config
	Hosts    *hosts.Config
	Design   *design.File
	Logger   *slog.Logger
}

func loadEnvironment() *environment {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	canopyDir := config.CanopyDir(repoRoot)
	hostCfg, err := hosts.Load(canopyDir)
	if err != nil {
		logger.Warn("hosts.toml unreadable, using defaults", "error", err)
		hostCfg = hosts.DefaultConfig()
	}
	designFile, err := design.Load(canopyDir)
	if err != nil {
		logger.Warn("design file unreadable, running without intent data", "error", err)
		designFile = nil
	}

	return &environment{
		RepoRoot: repoRoot,
		Config:   cfg,
		Hosts:    hostCfg,
		Design:   designFile,
		Logger:   logger,
	}
}

// cacheDir returns the directory holding the review cache.
func (env *environment) cacheDir() string {
	if env.Config.Cache.Dir != "" {
		return env.Config.Cache.Dir
	}
	return config.CanopyDir(env.RepoRoot)
}

// cachedReviews loads review items from the local cache. A missing or
// broken cache degrades to no review data rather than failing the run.
func (env *environment) cachedReviews() []model.ReviewItem {
	store, err := cache.Open(env.cacheDir(), env.Logger)
	if err != nil {
		env.Logger.Warn("review cache unavailable", "error", err)
		return nil
	}
	defer store.Close()

	items, err := store.List()
	if err != nil {
		env.Logger.Warn("review cache unreadable", "error", err)
		return nil
	}
	return items
}

// namingRule converts config patterns into the engine's naming rule.
func (env *environment) namingRule() *model.NamingRule {
	if len(env.Config.Naming.Patterns) == 0 {
		return nil
	}
	return &model.NamingRule{Patterns: env.Config.Naming.Patterns}
}
