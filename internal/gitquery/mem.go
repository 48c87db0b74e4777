package gitquery

import (
	"context"
	"strings"

	"canopy/internal/model"
)

// Commit is one node of the in-memory commit graph. Order is a
// monotonically increasing insertion counter used to break merge-base
// ties toward the most recent common ancestor.
type Commit struct {
	ID      string
	Parents []string
	Order   int
}

// Mem is an in-memory Service used as a test fixture. It models a full
// commit graph so ancestry queries behave like real git without a
// repository on disk. Zero-value maps are initialized by NewMem.
type Mem struct {
	Commits       map[string]Commit
	Heads         []model.Branch
	RemoteDefault string
	RemoteTips    map[string]string // upstream ref name -> commit id
	Worktrees     []model.WorkingCopy
	Upstreams     map[string]string // branch -> upstream ref name
	Descriptions  map[string]string
	Errs          map[string]error // query key -> injected failure

	order int
}

// NewMem creates an empty in-memory repository fixture.
func NewMem() *Mem {
	return &Mem{
		Commits:      make(map[string]Commit),
		RemoteTips:   make(map[string]string),
		Upstreams:    make(map[string]string),
		Descriptions: make(map[string]string),
		Errs:         make(map[string]error),
	}
}

// AddCommit records a commit with the given parents.
func (m *Mem) AddCommit(id string, parents ...string) *Mem {
	m.order++
	m.Commits[id] = Commit{ID: id, Parents: parents, Order: m.order}
	return m
}

// Chain records a linear run of commits, each parented on the previous.
// The first id is parented on base; pass "" for a root commit.
func (m *Mem) Chain(base string, ids ...string) *Mem {
	prev := base
	for _, id := range ids {
		if prev == "" {
			m.AddCommit(id)
		} else {
			m.AddCommit(id, prev)
		}
		prev = id
	}
	return m
}

// AddBranch points a branch head at tip.
func (m *Mem) AddBranch(name, tip string) *Mem {
	m.Heads = append(m.Heads, model.Branch{Name: name, CommitID: tip})
	return m
}

func (m *Mem) resolve(ref string) (string, bool) {
	for _, b := range m.Heads {
		if b.Name == ref {
			return b.CommitID, true
		}
	}
	if tip, ok := m.RemoteTips[ref]; ok {
		return tip, true
	}
	if _, ok := m.Commits[ref]; ok {
		return ref, true
	}
	return "", false
}

func (m *Mem) ancestors(id string) map[string]bool {
	seen := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		c, ok := m.Commits[cur]
		if !ok {
			continue
		}
		seen[cur] = true
		stack = append(stack, c.Parents...)
	}
	return seen
}

func key(parts ...string) string { return strings.Join(parts, ":") }

// ListBranches returns the fixture's branch heads.
func (m *Mem) ListBranches(ctx context.Context) ([]model.Branch, error) {
	if err := m.Errs["listBranches"]; err != nil {
		return nil, err
	}
	return m.Heads, nil
}

// DefaultRemoteBranch returns the configured remote default.
func (m *Mem) DefaultRemoteBranch(ctx context.Context) (string, error) {
	return m.RemoteDefault, nil
}

// IsAncestor reports graph reachability from b back to a.
func (m *Mem) IsAncestor(ctx context.Context, a, b string) (bool, error) {
	if err := m.Errs[key("isAncestor", a, b)]; err != nil {
		return false, err
	}
	ca, ok1 := m.resolve(a)
	cb, ok2 := m.resolve(b)
	if !ok1 || !ok2 {
		return false, nil
	}
	return m.ancestors(cb)[ca], nil
}

// MergeBase returns the highest-order common ancestor, or "" when the
// histories share nothing.
func (m *Mem) MergeBase(ctx context.Context, a, b string) (string, error) {
	if err := m.Errs[key("mergeBase", a, b)]; err != nil {
		return "", err
	}
	ca, ok1 := m.resolve(a)
	cb, ok2 := m.resolve(b)
	if !ok1 || !ok2 {
		return "", nil
	}
	ancA := m.ancestors(ca)
	best := ""
	bestOrder := -1
	for id := range m.ancestors(cb) {
		if !ancA[id] {
			continue
		}
		if c := m.Commits[id]; c.Order > bestOrder {
			best, bestOrder = id, c.Order
		}
	}
	return best, nil
}

// CountCommits counts commits reachable from head but not base.
func (m *Mem) CountCommits(ctx context.Context, base, head string) (int, error) {
	if err := m.Errs[key("count", base, head)]; err != nil {
		return 0, err
	}
	d, err := m.Distance(ctx, base, head)
	return d.Ahead, err
}

// Distance computes the symmetric set difference of the two histories.
func (m *Mem) Distance(ctx context.Context, base, head string) (model.Divergence, error) {
	if err := m.Errs[key("distance", base, head)]; err != nil {
		return model.Divergence{}, err
	}
	cb, ok1 := m.resolve(base)
	ch, ok2 := m.resolve(head)
	if !ok1 || !ok2 {
		return model.Divergence{}, nil
	}
	ancBase := m.ancestors(cb)
	ancHead := m.ancestors(ch)
	var d model.Divergence
	for id := range ancHead {
		if !ancBase[id] {
			d.Ahead++
		}
	}
	for id := range ancBase {
		if !ancHead[id] {
			d.Behind++
		}
	}
	return d, nil
}

// WorkingCopies returns the fixture's worktrees.
func (m *Mem) WorkingCopies(ctx context.Context) ([]model.WorkingCopy, error) {
	if err := m.Errs["workingCopies"]; err != nil {
		return nil, err
	}
	return m.Worktrees, nil
}

// BranchDescription returns the configured description, if any.
func (m *Mem) BranchDescription(ctx context.Context, name string) (string, error) {
	return m.Descriptions[name], nil
}

// UpstreamOf returns the configured tracking ref, if any.
func (m *Mem) UpstreamOf(ctx context.Context, branch string) (string, error) {
	if err := m.Errs[key("upstream", branch)]; err != nil {
		return "", err
	}
	return m.Upstreams[branch], nil
}
