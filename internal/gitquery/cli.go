package gitquery

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"canopy/internal/errors"
	"canopy/internal/model"
)

// heartbeatFile is the per-worktree liveness marker. An agent touches it
// while working; its mtime is the heartbeat and its contents the agent id.
const heartbeatFile = ".canopy-agent"

// CLI is the production Service backed by the git binary.
type CLI struct {
	RepoRoot string
}

// NewCLI creates a git-backed query service rooted at repoRoot.
func NewCLI(repoRoot string) *CLI {
	return &CLI{RepoRoot: repoRoot}
}

// RepoRoot finds the git repository root from the given directory.
func RepoRoot(startPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = startPath
	output, err := cmd.Output()
	if err != nil {
		return "", errors.New(errors.QueryFailed, "not a git repository", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func (c *CLI) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.RepoRoot
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// ListBranches returns all local branch heads via for-each-ref.
func (c *CLI) ListBranches(ctx context.Context) ([]model.Branch, error) {
	out, err := c.git(ctx, "for-each-ref", "refs/heads",
		"--format=%(refname:short)\t%(objectname)\t%(committerdate:iso-strict)")
	if err != nil {
		return nil, errors.New(errors.QueryFailed, "list branches", err)
	}
	if out == "" {
		return nil, nil
	}

	var branches []model.Branch
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			continue
		}
		when, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			when = time.Time{}
		}
		branches = append(branches, model.Branch{
			Name:       parts[0],
			CommitID:   parts[1],
			CommitTime: when,
		})
	}
	return branches, nil
}

// DefaultRemoteBranch resolves the remote symbolic HEAD, stripped of the
// remote prefix ("origin/main" becomes "main").
func (c *CLI) DefaultRemoteBranch(ctx context.Context) (string, error) {
	out, err := c.git(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err != nil {
		// No remote or no symbolic HEAD set; not an error for resolution.
		return "", nil
	}
	if _, after, ok := strings.Cut(out, "/"); ok {
		return after, nil
	}
	return out, nil
}

// IsAncestor reports whether a precedes b via merge-base --is-ancestor.
func (c *CLI) IsAncestor(ctx context.Context, a, b string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "merge-base", "--is-ancestor", a, b)
	cmd.Dir = c.RepoRoot
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, errors.New(errors.QueryFailed, "is-ancestor "+a+" "+b, err)
}

// MergeBase returns the common ancestor commit, or "" for unrelated
// histories.
func (c *CLI) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := c.git(ctx, "merge-base", a, b)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", errors.New(errors.QueryFailed, "merge-base "+a+" "+b, err)
	}
	return out, nil
}

// CountCommits counts commits in base..head.
func (c *CLI) CountCommits(ctx context.Context, base, head string) (int, error) {
	out, err := c.git(ctx, "rev-list", "--count", base+".."+head)
	if err != nil {
		return 0, errors.New(errors.QueryFailed, "rev-list --count "+base+".."+head, err)
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, errors.New(errors.QueryFailed, "parse rev-list count", err)
	}
	return n, nil
}

// Distance computes the symmetric divergence via rev-list --left-right.
func (c *CLI) Distance(ctx context.Context, base, head string) (model.Divergence, error) {
	out, err := c.git(ctx, "rev-list", "--left-right", "--count", base+"..."+head)
	if err != nil {
		return model.Divergence{}, errors.New(errors.QueryFailed, "rev-list "+base+"..."+head, err)
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return model.Divergence{}, errors.New(errors.QueryFailed, "unexpected rev-list output "+out, nil)
	}
	behind, err1 := strconv.Atoi(fields[0])
	ahead, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return model.Divergence{}, errors.New(errors.QueryFailed, "parse rev-list counts", nil)
	}
	return model.Divergence{Ahead: ahead, Behind: behind}, nil
}

// WorkingCopies parses git worktree list --porcelain and annotates each
// entry with dirty state and the heartbeat marker.
func (c *CLI) WorkingCopies(ctx context.Context) ([]model.WorkingCopy, error) {
	out, err := c.git(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.New(errors.QueryFailed, "worktree list", err)
	}

	var copies []model.WorkingCopy
	for _, block := range strings.Split(strings.TrimSpace(out), "\n\n") {
		wc := parseWorktreeBlock(strings.TrimSpace(block))
		if wc == nil {
			continue
		}
		wc.Dirty = c.isDirty(ctx, wc.Path)
		readHeartbeat(wc)
		copies = append(copies, *wc)
	}
	return copies, nil
}

func parseWorktreeBlock(block string) *model.WorkingCopy {
	var wc model.WorkingCopy
	detached := false
	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			wc.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			wc.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			detached = true
		}
	}
	if wc.Path == "" {
		return nil
	}
	if detached {
		wc.Branch = ""
	}
	return &wc
}

func (c *CLI) isDirty(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		// Unreadable worktree degrades to clean rather than failing the batch.
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

func readHeartbeat(wc *model.WorkingCopy) {
	marker := filepath.Join(wc.Path, heartbeatFile)
	info, err := os.Stat(marker)
	if err != nil {
		return
	}
	mtime := info.ModTime()
	wc.Heartbeat = &mtime
	if data, err := os.ReadFile(marker); err == nil {
		wc.AgentID = strings.TrimSpace(string(data))
	}
}

// BranchDescription reads branch.<name>.description from git config.
func (c *CLI) BranchDescription(ctx context.Context, name string) (string, error) {
	out, err := c.git(ctx, "config", "branch."+name+".description")
	if err != nil {
		// Unset description exits nonzero; treat as empty.
		return "", nil
	}
	return out, nil
}

// UpstreamOf resolves the remote tracking ref of a branch.
func (c *CLI) UpstreamOf(ctx context.Context, branch string) (string, error) {
	out, err := c.git(ctx, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return "", nil
	}
	return out, nil
}
