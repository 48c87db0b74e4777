package model

import "time"

// Branch is a single local branch head as reported by the repository
// query service. Branches are rebuilt on every inference pass and are
// never persisted.
type Branch struct {
	Name       string    `json:"name"`
	CommitID   string    `json:"commitId"`
	CommitTime time.Time `json:"commitTime"`
}

// WorkingCopy is a checked-out worktree. Branch is empty for a detached
// HEAD. Heartbeat carries the last observed liveness signal, if any.
type WorkingCopy struct {
	Path      string     `json:"path"`
	Branch    string     `json:"branch,omitempty"`
	Dirty     bool       `json:"dirty"`
	Heartbeat *time.Time `json:"heartbeat,omitempty"`
	AgentID   string     `json:"agentId,omitempty"`
}

// ActiveWithin reports whether the working copy produced a heartbeat
// inside the freshness window ending at now.
func (w WorkingCopy) ActiveWithin(now time.Time, window time.Duration) bool {
	if w.Heartbeat == nil {
		return false
	}
	return now.Sub(*w.Heartbeat) <= window
}
