package model

// Confidence grades how much trust to place in an inferred parent edge.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Badge is a derived UI tag on a tree node.
type Badge string

const (
	BadgeDirty            Badge = "dirty"
	BadgeActive           Badge = "active"
	BadgeOpenReview       Badge = "open-review"
	BadgeDraft            Badge = "draft"
	BadgeApproved         Badge = "approved"
	BadgeChangesRequested Badge = "changes-requested"
	BadgeChecksFailing    Badge = "ci-failing"
	BadgeChecksPassing    Badge = "ci-passing"
)

// Divergence is a symmetric commit distance between two refs.
type Divergence struct {
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
}

// IsZero reports whether both sides are in sync.
func (d Divergence) IsZero() bool { return d.Ahead == 0 && d.Behind == 0 }

// Node is one vertex of the reconstructed branch tree. Rebuilt on every
// pass; never persisted.
type Node struct {
	Branch      string       `json:"branch"`
	Badges      []Badge      `json:"badges,omitempty"`
	WorkingCopy *WorkingCopy `json:"workingCopy,omitempty"`
	Review      *ReviewItem  `json:"review,omitempty"`
	Parent      *Divergence  `json:"parent,omitempty"`
	Upstream    *Divergence  `json:"upstream,omitempty"`
}

// HasBadge reports whether the node carries the given badge.
func (n *Node) HasBadge(b Badge) bool {
	for _, have := range n.Badges {
		if have == b {
			return true
		}
	}
	return false
}

// Edge is one parent/child arc of the tree. At most one edge exists per
// child. Designed marks an edge sourced from explicit user intent rather
// than inference.
type Edge struct {
	Parent     string     `json:"parent"`
	Child      string     `json:"child"`
	Confidence Confidence `json:"confidence"`
	Designed   bool       `json:"designed,omitempty"`
}

// EdgeDecl is a declared parent/child pair before reconciliation, as
// read from a designed-tree file or a confirmed planning session.
type EdgeDecl struct {
	Parent string `json:"parent" toml:"parent" yaml:"parent"`
	Child  string `json:"child" toml:"child" yaml:"child"`
}

// DesignedTree is the user-authored intended topology, independent of
// git history.
type DesignedTree struct {
	Base  string     `json:"base,omitempty"`
	Edges []EdgeDecl `json:"edges,omitempty"`
}
