// Package gitquery abstracts the version-control queries the topology
// engine depends on. Production code uses the CLI implementation backed
// by the git binary; tests use the in-memory Mem fixture. The engine
// never shells out itself.
package gitquery

import (
	"context"
	"time"

	"canopy/internal/model"
)

// HeartbeatWindow is how recent a worktree liveness signal must be to
// count as active.
const HeartbeatWindow = 30 * time.Second

// Service answers repository questions for one local repo. All methods
// are read-only. Implementations must be safe for concurrent use; the
// engine fans out per-branch queries.
type Service interface {
	// ListBranches returns all local branch heads.
	ListBranches(ctx context.Context) ([]model.Branch, error)

	// DefaultRemoteBranch returns the branch the remote HEAD points at,
	// or "" when no remote default is configured.
	DefaultRemoteBranch(ctx context.Context) (string, error)

	// IsAncestor reports whether commit a is an ancestor of commit b.
	IsAncestor(ctx context.Context, a, b string) (bool, error)

	// MergeBase returns the most recent common ancestor of a and b, or
	// "" when the histories are unrelated.
	MergeBase(ctx context.Context, a, b string) (string, error)

	// CountCommits returns the number of commits reachable from head but
	// not from base.
	CountCommits(ctx context.Context, base, head string) (int, error)

	// Distance returns the symmetric divergence between base and head:
	// Ahead counts commits only on head, Behind commits only on base.
	Distance(ctx context.Context, base, head string) (model.Divergence, error)

	// WorkingCopies returns all worktrees with dirty state and liveness.
	WorkingCopies(ctx context.Context) ([]model.WorkingCopy, error)

	// BranchDescription returns the configured description for a branch,
	// or "" when none is set.
	BranchDescription(ctx context.Context, name string) (string, error)

	// UpstreamOf returns the remote tracking ref of a branch (for
	// example "origin/main"), or "" when the branch has no upstream.
	UpstreamOf(ctx context.Context, branch string) (string, error)
}
