package topology

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"canopy/internal/gitquery"
	"canopy/internal/model"
)

// Engine computes topology snapshots. It carries no state between
// passes; two calls with identical inputs produce identical node, edge
// and warning sets.
type Engine struct {
	repo   gitquery.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates an engine over the given repository query service.
func NewEngine(repo gitquery.Service, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger, now: time.Now}
}

// SnapshotInput is everything one pass consumes. Branches, working
// copies and review items are supplied by the caller so the engine
// stays a pure function of its inputs; RemoteDefault is queried from
// the repository service when left empty.
type SnapshotInput struct {
	Branches      []model.Branch
	WorkingCopies []model.WorkingCopy
	ReviewItems   []model.ReviewItem
	RemoteDefault string
	HostDefault   string
	Designed      *model.DesignedTree
	SessionEdges  []model.EdgeDecl
	NamingRule    *model.NamingRule
}

// Snapshot is the finished read-only result of one pass.
type Snapshot struct {
	ID            string          `json:"id"`
	ComputedAt    time.Time       `json:"computedAt"`
	DefaultBranch string          `json:"defaultBranch"`
	Nodes         []*model.Node   `json:"nodes"`
	Edges         []model.Edge    `json:"edges"`
	Warnings      []model.Warning `json:"warnings"`
}

// ComputeSnapshot runs the full pipeline: trunk resolution, parallel
// parent inference, edge reconciliation, parallel divergence annotation
// and warning computation. It never fails as a whole; per-branch query
// failures degrade that branch to safe defaults.
func (e *Engine) ComputeSnapshot(ctx context.Context, in SnapshotInput) *Snapshot {
	start := e.now()

	remoteDefault := in.RemoteDefault
	if remoteDefault == "" {
		if rd, err := e.repo.DefaultRemoteBranch(ctx); err == nil {
			remoteDefault = rd
		}
	}
	defaultBranch := ResolveDefault(in.Branches, remoteDefault, in.HostDefault)

	inferred := e.inferAll(ctx, in.Branches, defaultBranch)

	base := defaultBranch
	if in.Designed != nil && in.Designed.Base != "" {
		base = in.Designed.Base
	}
	edges := reconcileEdges(inferred, in.SessionEdges, in.Designed, base)

	nodes := make([]*model.Node, len(in.Branches))
	for i, b := range in.Branches {
		nodes[i] = buildNode(b.Name, in.WorkingCopies, in.ReviewItems, start)
	}

	annotateDivergence(ctx, e.repo, nodes, edges, defaultBranch)

	warnings := ComputeWarnings(nodes, inferred, defaultBranch, in.NamingRule, in.Designed)

	snap := &Snapshot{
		ID:            uuid.NewString(),
		ComputedAt:    start,
		DefaultBranch: defaultBranch,
		Nodes:         nodes,
		Edges:         edges,
		Warnings:      warnings,
	}
	if e.logger != nil {
		e.logger.Info("snapshot computed",
			"default", defaultBranch,
			"branches", len(nodes),
			"edges", len(edges),
			"warnings", len(warnings),
			"took", e.now().Sub(start))
	}
	return snap
}

// inferAll runs parent inference for every non-default branch
// concurrently. Each goroutine writes only its own slot; results are
// gathered after the fan-in so branch order stays stable.
func (e *Engine) inferAll(ctx context.Context, branches []model.Branch, defaultBranch string) []model.Edge {
	results := make([]*model.Edge, len(branches))
	var wg sync.WaitGroup
	for i, b := range branches {
		if b.Name == defaultBranch {
			continue
		}
		wg.Add(1)
		go func(slot int, name string) {
			defer wg.Done()
			inf := InferParent(ctx, e.repo, branches, defaultBranch, name)
			results[slot] = &model.Edge{
				Parent:     inf.Parent,
				Child:      name,
				Confidence: inf.Confidence,
			}
		}(i, b.Name)
	}
	wg.Wait()

	edges := make([]model.Edge, 0, len(branches))
	for _, r := range results {
		if r != nil {
			edges = append(edges, *r)
		}
	}
	return edges
}
