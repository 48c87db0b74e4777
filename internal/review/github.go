package review

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"canopy/internal/errors"
	"canopy/internal/model"
)

// GitHub queries pull requests through the gh CLI. It requires an
// authenticated gh in PATH; callers degrade to cached data when ListItems
// fails.
type GitHub struct {
	RepoRoot string
	Bots     *BotFilter
	Limit    int
}

// NewGitHub creates a gh-backed review service.
func NewGitHub(repoRoot string, botPatterns []string) *GitHub {
	if botPatterns == nil {
		botPatterns = DefaultBotPatterns
	}
	return &GitHub{
		RepoRoot: repoRoot,
		Bots:     NewBotFilter(botPatterns),
		Limit:    200,
	}
}

// ghItem mirrors the fields we request from gh's JSON output.
type ghItem struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	State        string   `json:"state"` // "OPEN", "MERGED", "CLOSED"
	HeadRefName  string   `json:"headRefName"`
	IsDraft      bool     `json:"isDraft"`
	Labels       []ghName `json:"labels"`
	Assignees    []ghUser `json:"assignees"`
	LatestReviews []struct {
		Author ghUser `json:"author"`
	} `json:"latestReviews"`
	ReviewDecision    string    `json:"reviewDecision"` // "APPROVED", "CHANGES_REQUESTED", "REVIEW_REQUIRED", ""
	StatusCheckRollup []ghCheck `json:"statusCheckRollup"`
	Additions         int       `json:"additions"`
	Deletions         int       `json:"deletions"`
	ChangedFiles      int       `json:"changedFiles"`
}

type ghName struct {
	Name string `json:"name"`
}

type ghUser struct {
	Login string `json:"login"`
}

type ghCheck struct {
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"` // "SUCCESS", "FAILURE", ... "" while running
	Status     string `json:"status"`
}

var ghFields = strings.Join([]string{
	"number", "title", "state", "headRefName", "isDraft", "labels",
	"assignees", "latestReviews", "reviewDecision", "statusCheckRollup",
	"additions", "deletions", "changedFiles",
}, ",")

// ListItems fetches all PRs for the repository, newest first.
func (g *GitHub) ListItems(ctx context.Context) ([]model.ReviewItem, error) {
	limit := g.Limit
	if limit <= 0 {
		limit = 200
	}
	cmd := exec.CommandContext(ctx, "gh", "pr", "list",
		"--state", "all",
		"--limit", strconv.Itoa(limit),
		"--json", ghFields,
	)
	cmd.Dir = g.RepoRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.New(errors.HostUnavailable, "gh pr list", err)
	}
	return g.parse(out)
}

func (g *GitHub) parse(data []byte) ([]model.ReviewItem, error) {
	var raw []ghItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.HostUnavailable, "decode gh output", err)
	}

	items := make([]model.ReviewItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, g.convert(r))
	}
	return items, nil
}

func (g *GitHub) convert(r ghItem) model.ReviewItem {
	item := model.ReviewItem{
		Number:       r.Number,
		Title:        r.Title,
		State:        mapState(r.State),
		SourceBranch: r.HeadRefName,
		Draft:        r.IsDraft,
		Decision:     mapDecision(r.ReviewDecision),
		Additions:    r.Additions,
		Deletions:    r.Deletions,
		ChangedFiles: r.ChangedFiles,
	}
	for _, l := range r.Labels {
		item.Labels = append(item.Labels, l.Name)
	}
	for _, a := range r.Assignees {
		item.Assignees = append(item.Assignees, a.Login)
	}
	var reviewers []string
	for _, rev := range r.LatestReviews {
		reviewers = append(reviewers, rev.Author.Login)
	}
	item.Reviewers = g.Bots.Humans(reviewers)

	runs := make([]model.CheckRun, 0, len(r.StatusCheckRollup))
	for _, c := range r.StatusCheckRollup {
		runs = append(runs, model.CheckRun{
			Name:       c.Name,
			Conclusion: strings.ToLower(c.Conclusion),
		})
	}
	item.Checks = model.RollupChecks(runs)
	return item
}

func mapState(s string) model.ReviewState {
	switch s {
	case "OPEN":
		return model.ReviewOpen
	case "MERGED":
		return model.ReviewMerged
	case "CLOSED":
		return model.ReviewClosed
	default:
		return model.ReviewClosed
	}
}

func mapDecision(s string) model.ReviewDecision {
	switch s {
	case "APPROVED":
		return model.DecisionApproved
	case "CHANGES_REQUESTED":
		return model.DecisionChangesRequested
	case "REVIEW_REQUIRED":
		return model.DecisionReviewRequired
	default:
		return model.DecisionNone
	}
}
