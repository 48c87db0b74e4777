package gitquery

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initTestRepo creates a throwaway git repository with an initial commit
// on main and returns its path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func commitFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(name+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".")
	gitIn(t, dir, "commit", "-m", "add "+name)
}

func TestCLIListBranches(t *testing.T) {
	dir := initTestRepo(t)
	gitIn(t, dir, "branch", "feature/login")

	svc := NewCLI(dir)
	branches, err := svc.ListBranches(context.Background())
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}

	names := make(map[string]bool)
	for _, b := range branches {
		names[b.Name] = true
		if b.CommitID == "" {
			t.Errorf("branch %s has empty commit id", b.Name)
		}
	}
	if !names["main"] || !names["feature/login"] {
		t.Errorf("branches = %v, want main and feature/login", names)
	}
}

func TestCLIMergeBaseAndDistance(t *testing.T) {
	dir := initTestRepo(t)
	gitIn(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "a.txt")
	commitFile(t, dir, "b.txt")
	gitIn(t, dir, "checkout", "main")
	commitFile(t, dir, "c.txt")

	svc := NewCLI(dir)
	ctx := context.Background()

	base, err := svc.MergeBase(ctx, "main", "feature")
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base == "" {
		t.Fatal("MergeBase returned empty for related branches")
	}

	d, err := svc.Distance(ctx, "main", "feature")
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if d.Ahead != 2 || d.Behind != 1 {
		t.Errorf("Distance = %+v, want ahead=2 behind=1", d)
	}

	n, err := svc.CountCommits(ctx, "main", "feature")
	if err != nil {
		t.Fatalf("CountCommits: %v", err)
	}
	if n != 2 {
		t.Errorf("CountCommits = %d, want 2", n)
	}

	ok, err := svc.IsAncestor(ctx, base, "feature")
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if !ok {
		t.Error("merge base should be an ancestor of feature")
	}
}

func TestCLIWorkingCopies(t *testing.T) {
	dir := initTestRepo(t)
	svc := NewCLI(dir)

	copies, err := svc.WorkingCopies(context.Background())
	if err != nil {
		t.Fatalf("WorkingCopies: %v", err)
	}
	if len(copies) != 1 {
		t.Fatalf("len(copies) = %d, want 1", len(copies))
	}
	if copies[0].Branch != "main" {
		t.Errorf("branch = %q, want main", copies[0].Branch)
	}
	if copies[0].Dirty {
		t.Error("fresh repo should not be dirty")
	}

	// Dirty the tree and confirm the flag flips.
	if err := os.WriteFile(filepath.Join(dir, "dirty.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	copies, err = svc.WorkingCopies(context.Background())
	if err != nil {
		t.Fatalf("WorkingCopies: %v", err)
	}
	if !copies[0].Dirty {
		t.Error("untracked file should mark the worktree dirty")
	}
}

func TestCLIHeartbeat(t *testing.T) {
	dir := initTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, heartbeatFile), []byte("agent-7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewCLI(dir)
	copies, err := svc.WorkingCopies(context.Background())
	if err != nil {
		t.Fatalf("WorkingCopies: %v", err)
	}
	if copies[0].Heartbeat == nil {
		t.Fatal("heartbeat marker should be picked up")
	}
	if copies[0].AgentID != "agent-7" {
		t.Errorf("AgentID = %q, want agent-7", copies[0].AgentID)
	}
}

func TestCLIBranchDescription(t *testing.T) {
	dir := initTestRepo(t)
	svc := NewCLI(dir)
	ctx := context.Background()

	desc, err := svc.BranchDescription(ctx, "main")
	if err != nil {
		t.Fatalf("BranchDescription: %v", err)
	}
	if desc != "" {
		t.Errorf("unset description = %q, want empty", desc)
	}

	gitIn(t, dir, "config", "branch.main.description", "integration trunk")
	desc, err = svc.BranchDescription(ctx, "main")
	if err != nil {
		t.Fatalf("BranchDescription: %v", err)
	}
	if desc != "integration trunk" {
		t.Errorf("description = %q, want %q", desc, "integration trunk")
	}
}

func TestCLINoRemote(t *testing.T) {
	dir := initTestRepo(t)
	svc := NewCLI(dir)
	ctx := context.Background()

	def, err := svc.DefaultRemoteBranch(ctx)
	if err != nil {
		t.Fatalf("DefaultRemoteBranch: %v", err)
	}
	if def != "" {
		t.Errorf("DefaultRemoteBranch = %q, want empty without a remote", def)
	}

	up, err := svc.UpstreamOf(ctx, "main")
	if err != nil {
		t.Fatalf("UpstreamOf: %v", err)
	}
	if up != "" {
		t.Errorf("UpstreamOf = %q, want empty without a remote", up)
	}
}
