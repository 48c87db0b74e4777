package topology

import (
	"time"

	"canopy/internal/gitquery"
	"canopy/internal/model"
)

// buildNode creates the tree vertex for one branch, attaching its
// working copy and review item by branch-name lookup and deriving the
// badge set from their state.
func buildNode(branch string, copies []model.WorkingCopy, items []model.ReviewItem, now time.Time) *model.Node {
	node := &model.Node{Branch: branch}

	for i := range copies {
		if copies[i].Branch == branch {
			wc := copies[i]
			node.WorkingCopy = &wc
			break
		}
	}
	node.Review = pickReview(branch, items)

	if wc := node.WorkingCopy; wc != nil {
		if wc.Dirty {
			node.Badges = append(node.Badges, model.BadgeDirty)
		}
		if wc.ActiveWithin(now, gitquery.HeartbeatWindow) {
			node.Badges = append(node.Badges, model.BadgeActive)
		}
	}
	if r := node.Review; r != nil {
		if r.State == model.ReviewOpen {
			node.Badges = append(node.Badges, model.BadgeOpenReview)
		}
		if r.Draft {
			node.Badges = append(node.Badges, model.BadgeDraft)
		}
		switch r.Checks {
		case model.ChecksFailure:
			node.Badges = append(node.Badges, model.BadgeChecksFailing)
		case model.ChecksSuccess:
			node.Badges = append(node.Badges, model.BadgeChecksPassing)
		}
		switch r.Decision {
		case model.DecisionApproved:
			node.Badges = append(node.Badges, model.BadgeApproved)
		case model.DecisionChangesRequested:
			node.Badges = append(node.Badges, model.BadgeChangesRequested)
		}
	}
	return node
}

// pickReview chooses the review item for a branch, preferring an open
// one over merged or closed history.
func pickReview(branch string, items []model.ReviewItem) *model.ReviewItem {
	var fallback *model.ReviewItem
	for i := range items {
		if items[i].SourceBranch != branch {
			continue
		}
		if items[i].State == model.ReviewOpen {
			item := items[i]
			return &item
		}
		if fallback == nil {
			item := items[i]
			fallback = &item
		}
	}
	return fallback
}

// reconcileEdges layers declared intent over the inferred baseline.
// Precedence, lowest to highest: inferred edges, edges implied by
// confirmed planning sessions, edges from the designed tree. Each layer
// fully overwrites the matching child's edge from the layer below.
// Declared edges are never re-validated against git ancestry: intent may
// legitimately run ahead of history (a branch not created yet).
func reconcileEdges(inferred []model.Edge, sessionEdges []model.EdgeDecl, designed *model.DesignedTree, base string) []model.Edge {
	byChild := make(map[string]model.Edge, len(inferred))
	order := make([]string, 0, len(inferred))
	for _, e := range inferred {
		if _, seen := byChild[e.Child]; !seen {
			order = append(order, e.Child)
		}
		byChild[e.Child] = e
	}

	apply := func(decls []model.EdgeDecl) {
		for _, d := range decls {
			if d.Child == "" || d.Child == base {
				continue
			}
			parent := d.Parent
			if parent == "" {
				// Declared task without an explicit parent roots at the base
				// branch instead of dangling.
				parent = base
			}
			if _, seen := byChild[d.Child]; !seen {
				order = append(order, d.Child)
			}
			byChild[d.Child] = model.Edge{
				Parent:     parent,
				Child:      d.Child,
				Confidence: model.ConfidenceHigh,
				Designed:   true,
			}
		}
	}

	apply(sessionEdges)
	if designed != nil {
		apply(designed.Edges)
	}

	out := make([]model.Edge, 0, len(byChild))
	for _, child := range order {
		out = append(out, byChild[child])
	}
	return out
}
