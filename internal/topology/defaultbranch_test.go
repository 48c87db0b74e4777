package topology

import (
	"testing"

	"canopy/internal/model"
)

func branchList(names ...string) []model.Branch {
	out := make([]model.Branch, len(names))
	for i, n := range names {
		out[i] = model.Branch{Name: n, CommitID: "c" + n}
	}
	return out
}

func TestResolveDefault(t *testing.T) {
	tests := []struct {
		name          string
		branches      []string
		remoteDefault string
		hostDefault   string
		want          string
	}{
		{
			name:          "remote default wins",
			branches:      []string{"main", "develop", "trunk"},
			remoteDefault: "trunk",
			hostDefault:   "main",
			want:          "trunk",
		},
		{
			name:          "remote default ignored when not a branch",
			branches:      []string{"main"},
			remoteDefault: "gone",
			want:          "main",
		},
		{
			name:        "host default second",
			branches:    []string{"main", "integration"},
			hostDefault: "integration",
			want:        "integration",
		},
		{
			name:     "develop beats main and master",
			branches: []string{"master", "main", "develop"},
			want:     "develop",
		},
		{
			name:     "main beats master",
			branches: []string{"master", "main"},
			want:     "main",
		},
		{
			name:     "master when alone among conventions",
			branches: []string{"feature/x", "master"},
			want:     "master",
		},
		{
			name:     "first branch when no convention matches",
			branches: []string{"exp/one", "exp/two"},
			want:     "exp/one",
		},
		{
			name:     "literal main for empty list",
			branches: nil,
			want:     "main",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveDefault(branchList(tc.branches...), tc.remoteDefault, tc.hostDefault)
			if got != tc.want {
				t.Errorf("ResolveDefault = %q, want %q", got, tc.want)
			}
		})
	}
}

// The result must always be a member of the input list, or the literal
// main for an empty list.
func TestResolveDefaultTotality(t *testing.T) {
	lists := [][]string{
		{"a"},
		{"z", "y", "x"},
		{"develop"},
		{"release-1", "release-2", "master"},
		{},
	}
	for _, names := range lists {
		branches := branchList(names...)
		got := ResolveDefault(branches, "nonexistent", "also-gone")
		if len(branches) == 0 {
			if got != "main" {
				t.Errorf("empty list: got %q, want main", got)
			}
			continue
		}
		found := false
		for _, b := range branches {
			if b.Name == got {
				found = true
			}
		}
		if !found {
			t.Errorf("ResolveDefault(%v) = %q, not a member", names, got)
		}
	}
}
