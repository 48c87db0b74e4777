package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"canopy/internal/export"
	"canopy/internal/gitquery"
	"canopy/internal/model"
	"canopy/internal/topology"
)

var (
	snapshotOut    string
	snapshotFormat string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute the current branch topology",
	Long: `Resolve the default branch, infer every branch's parent, reconcile
against the designed tree, and print the resulting tree with divergence,
badges, and warnings.`,
	Run: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "",
		"Write the snapshot to a file (JSON; .zst compresses, - for stdout)")
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	env := loadEnvironment()
	ctx := newContext()

	snap := computeSnapshot(ctx, env)

	if snapshotOut != "" {
		if err := export.WriteFile(snap, snapshotOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		if snapshotOut != "-" {
			fmt.Printf("Snapshot written to %s\n", snapshotOut)
		}
		return
	}

	switch snapshotFormat {
	case "json":
		if err := export.WriteFile(snap, "-"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		printTree(snap)
		printWarnings(snap.Warnings)
	}
}

// computeSnapshot gathers all inputs from the repository, the review
// cache, and the .canopy sidecars, then runs one engine pass.
func computeSnapshot(ctx context.Context, env *environment) *topology.Snapshot {
	repo := gitquery.NewCLI(env.RepoRoot)
	engine := topology.NewEngine(repo, env.Logger)

	branches, err := repo.ListBranches(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing branches: %v\n", err)
		os.Exit(1)
	}
	copies, err := repo.WorkingCopies(ctx)
	if err != nil {
		env.Logger.Warn("worktree listing failed", "error", err)
	}

	in := topology.SnapshotInput{
		Branches:      branches,
		WorkingCopies: copies,
		ReviewItems:   env.cachedReviews(),
		HostDefault:   env.Hosts.DefaultBranch,
		NamingRule:    env.namingRule(),
	}
	if env.Design != nil {
		in.Designed = env.Design.Tree()
		in.SessionEdges = env.Design.Sessions
	}
	return engine.ComputeSnapshot(ctx, in)
}

// printTree renders the snapshot as an indented tree rooted at the
// default branch. Branches unreachable from the root (shared history
// only) are listed afterwards at top level.
func printTree(snap *topology.Snapshot) {
	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, e := range snap.Edges {
		children[e.Parent] = append(children[e.Parent], e.Child)
		hasParent[e.Child] = true
	}
	for _, kids := range children {
		sort.Strings(kids)
	}

	nodes := make(map[string]*model.Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodes[n.Branch] = n
	}

	var render func(name string, depth int)
	seen := make(map[string]bool)
	render = func(name string, depth int) {
		if seen[name] {
			return
		}
		seen[name] = true
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), describeNode(name, nodes[name], name == snap.DefaultBranch))
		for _, child := range children[name] {
			render(child, depth+1)
		}
	}

	render(snap.DefaultBranch, 0)
	var rest []string
	for _, n := range snap.Nodes {
		if !seen[n.Branch] && !hasParent[n.Branch] {
			rest = append(rest, n.Branch)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		render(name, 0)
	}
}

func describeNode(name string, n *model.Node, isDefault bool) string {
	var b strings.Builder
	b.WriteString(name)
	if isDefault {
		b.WriteString(" *")
	}
	if n == nil {
		return b.String()
	}
	if n.Parent != nil {
		fmt.Fprintf(&b, "  [+%d -%d]", n.Parent.Ahead, n.Parent.Behind)
	}
	if n.Upstream != nil {
		fmt.Fprintf(&b, "  {remote +%d -%d}", n.Upstream.Ahead, n.Upstream.Behind)
	}
	for _, badge := range n.Badges {
		fmt.Fprintf(&b, "  (%s)", badge)
	}
	return b.String()
}

func printWarnings(warnings []model.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println()
	for _, w := range warnings {
		fmt.Printf("%s %s: %s\n", strings.ToUpper(string(w.Severity)), w.Code, w.Message)
	}
}
