package review

import (
	"reflect"
	"testing"

	"canopy/internal/model"
)

func TestBotFilter(t *testing.T) {
	f := NewBotFilter(DefaultBotPatterns)

	tests := []struct {
		login string
		bot   bool
	}{
		{"alice", false},
		{"dependabot", true},
		{"renovate-runner", true},
		{"github-actions", true},
		{"copilot[bot]", true},
		{"bob-the-builder", false},
	}
	for _, tc := range tests {
		t.Run(tc.login, func(t *testing.T) {
			if got := f.IsBot(tc.login); got != tc.bot {
				t.Errorf("IsBot(%q) = %v, want %v", tc.login, got, tc.bot)
			}
		})
	}
}

func TestBotFilterInvalidPatternSkipped(t *testing.T) {
	f := NewBotFilter([]string{"[", `^dependabot`})
	if !f.IsBot("dependabot") {
		t.Error("valid pattern should still apply after an invalid one")
	}
	if f.IsBot("alice") {
		t.Error("alice is not a bot")
	}
}

func TestBotFilterHumans(t *testing.T) {
	f := NewBotFilter(DefaultBotPatterns)
	got := f.Humans([]string{"alice", "dependabot", "bob"})
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Humans = %v, want %v", got, want)
	}
}

func TestParseGhOutput(t *testing.T) {
	payload := `[
	  {
	    "number": 42,
	    "title": "Add login form",
	    "state": "OPEN",
	    "headRefName": "feature/login",
	    "isDraft": false,
	    "labels": [{"name": "frontend"}],
	    "assignees": [{"login": "alice"}],
	    "latestReviews": [
	      {"author": {"login": "bob"}},
	      {"author": {"login": "dependabot"}}
	    ],
	    "reviewDecision": "APPROVED",
	    "statusCheckRollup": [
	      {"name": "build", "conclusion": "SUCCESS", "status": "COMPLETED"},
	      {"name": "lint", "conclusion": "SKIPPED", "status": "COMPLETED"}
	    ],
	    "additions": 120,
	    "deletions": 8,
	    "changedFiles": 5
	  }
	]`

	g := NewGitHub("", nil)
	items, err := g.parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}

	item := items[0]
	if item.Number != 42 || item.SourceBranch != "feature/login" {
		t.Errorf("basic fields wrong: %+v", item)
	}
	if item.State != model.ReviewOpen {
		t.Errorf("State = %q, want open", item.State)
	}
	if item.Decision != model.DecisionApproved {
		t.Errorf("Decision = %q, want approved", item.Decision)
	}
	if item.Checks != model.ChecksSuccess {
		t.Errorf("Checks = %q, want success (success+skipped rolls up clean)", item.Checks)
	}
	if !reflect.DeepEqual(item.Reviewers, []string{"bob"}) {
		t.Errorf("Reviewers = %v, want [bob] with bots filtered", item.Reviewers)
	}
	if item.ChangedFiles != 5 || item.Additions != 120 || item.Deletions != 8 {
		t.Errorf("change counters wrong: %+v", item)
	}
}

func TestParseGhOutputFailingCheck(t *testing.T) {
	payload := `[
	  {
	    "number": 7,
	    "title": "Broken",
	    "state": "OPEN",
	    "headRefName": "fix/ci",
	    "statusCheckRollup": [
	      {"name": "build", "conclusion": "SUCCESS"},
	      {"name": "test", "conclusion": "FAILURE"}
	    ]
	  }
	]`

	g := NewGitHub("", nil)
	items, err := g.parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if items[0].Checks != model.ChecksFailure {
		t.Errorf("Checks = %q, want failure", items[0].Checks)
	}
}
