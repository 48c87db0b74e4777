package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"canopy/internal/cache"
	"canopy/internal/gitquery"
	"canopy/internal/model"
	"canopy/internal/refresh"
	"canopy/internal/review"
)

var (
	refreshDryRun bool
	refreshAll    bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh cached review metadata",
	Long: `Select the branches most in need of fresh review data (active working
copies first, then by staleness and pending checks), fetch their review
items from the host, and update the local cache.`,
	Run: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshDryRun, "dry-run", false, "Print the selected branches without fetching")
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "Ignore budgets and refresh every cached branch")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) {
	env := loadEnvironment()
	ctx := newContext()
	repo := gitquery.NewCLI(env.RepoRoot)

	store, err := cache.Open(env.cacheDir(), env.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening review cache: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cached, err := store.List()
	if err != nil {
		env.Logger.Warn("review cache unreadable, treating all branches as stale", "error", err)
	}

	rc := refresh.Context{
		LocalBranches:  map[string]bool{},
		WorktreeOf:     map[string]bool{},
		ActiveWorktree: map[string]bool{},
		Now:            time.Now(),
	}
	branches, err := repo.ListBranches(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing branches: %v\n", err)
		os.Exit(1)
	}
	for _, b := range branches {
		rc.LocalBranches[b.Name] = true
	}
	copies, err := repo.WorkingCopies(ctx)
	if err != nil {
		env.Logger.Warn("worktree listing failed", "error", err)
	}
	for _, wc := range copies {
		rc.WorktreeOf[wc.Branch] = true
		if wc.ActiveWithin(rc.Now, gitquery.HeartbeatWindow) {
			rc.ActiveWorktree[wc.Branch] = true
		}
	}

	budgets := refresh.Budgets{
		MaxTotal: env.Config.Refresh.MaxTotal,
		OtherMax: env.Config.Refresh.OtherMax,
	}
	var selected []string
	if refreshAll {
		for name := range rc.LocalBranches {
			selected = append(selected, name)
		}
	} else {
		selected = refresh.SelectCandidates(cached, rc, budgets)
	}

	if len(selected) == 0 {
		fmt.Println("Nothing to refresh.")
		return
	}
	if refreshDryRun {
		fmt.Printf("Would refresh %d branch(es):\n", len(selected))
		for _, name := range selected {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	host := review.NewGitHub(env.RepoRoot, env.Hosts.BotPatterns)
	if env.Hosts.ReviewLimit > 0 {
		host.Limit = env.Hosts.ReviewLimit
	}
	items, err := host.ListItems(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching review items: %v\n", err)
		os.Exit(1)
	}

	wanted := make(map[string]bool, len(selected))
	for _, name := range selected {
		wanted[name] = true
	}
	var updates []model.ReviewItem
	for _, item := range items {
		if wanted[item.SourceBranch] {
			updates = append(updates, item)
		}
	}
	if err := store.PutAll(updates); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating cache: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Refreshed %d of %d selected branch(es)\n", len(updates), len(selected))
}
