package model

import "time"

// ReviewState is the lifecycle state of a pull/merge request.
type ReviewState string

const (
	ReviewOpen   ReviewState = "open"
	ReviewMerged ReviewState = "merged"
	ReviewClosed ReviewState = "closed"
)

// CheckState is the aggregated CI status across all checks on a review item.
type CheckState string

const (
	ChecksSuccess CheckState = "success"
	ChecksFailure CheckState = "failure"
	ChecksPending CheckState = "pending"
	ChecksNone    CheckState = ""
)

// ReviewDecision is the overall review outcome on a review item.
type ReviewDecision string

const (
	DecisionApproved         ReviewDecision = "approved"
	DecisionChangesRequested ReviewDecision = "changes-requested"
	DecisionReviewRequired   ReviewDecision = "review-required"
	DecisionNone             ReviewDecision = ""
)

// ReviewItem is a pull/merge request attached to a source branch.
// Reviewers excludes bot accounts; filtering happens at the query
// service boundary, not here.
type ReviewItem struct {
	Number       int            `json:"number"`
	Title        string         `json:"title"`
	State        ReviewState    `json:"state"`
	SourceBranch string         `json:"sourceBranch"`
	Draft        bool           `json:"draft"`
	Labels       []string       `json:"labels,omitempty"`
	Assignees    []string       `json:"assignees,omitempty"`
	Reviewers    []string       `json:"reviewers,omitempty"`
	Decision     ReviewDecision `json:"decision,omitempty"`
	Checks       CheckState     `json:"checks,omitempty"`
	Additions    int            `json:"additions"`
	Deletions    int            `json:"deletions"`
	ChangedFiles int            `json:"changedFiles"`
	RefreshedAt  time.Time      `json:"refreshedAt,omitzero"`
}

// CheckRun is one raw CI check before aggregation.
type CheckRun struct {
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"` // "success", "failure", "error", "skipped", "neutral", "" while running
}

// RollupChecks folds raw check runs into a single CheckState. Any failing
// or erroring check wins; a set that is entirely success-or-skipped is a
// success; anything else is still pending. No checks at all means none.
func RollupChecks(runs []CheckRun) CheckState {
	if len(runs) == 0 {
		return ChecksNone
	}
	pending := false
	for _, r := range runs {
		switch r.Conclusion {
		case "failure", "error":
			return ChecksFailure
		case "success", "skipped", "neutral":
		default:
			pending = true
		}
	}
	if pending {
		return ChecksPending
	}
	return ChecksSuccess
}
