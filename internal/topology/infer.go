package topology

import (
	"context"
	"math"
	"strings"

	"canopy/internal/gitquery"
	"canopy/internal/model"
)

// Inference is the guessed parent for one branch.
type Inference struct {
	Parent     string
	Confidence model.Confidence
}

// InferParent guesses the most likely parent of target among branches.
// It always returns a usable result: naming-convention prefix match at
// high confidence, ancestry geometry at medium, and the trunk at low
// when nothing better exists. Query failures degrade candidates away
// instead of failing the call.
//
// A naming match is deliberately not validated against commit history:
// a human typed the prefix relationship, and that outranks geometry
// even when the branches share no ancestry.
func InferParent(ctx context.Context, repo gitquery.Service, branches []model.Branch, defaultBranch, target string) Inference {
	if parent, ok := namingParent(branches, defaultBranch, target); ok {
		return Inference{Parent: parent, Confidence: model.ConfidenceHigh}
	}
	if parent, ok := ancestryParent(ctx, repo, branches, defaultBranch, target); ok {
		return Inference{Parent: parent, Confidence: model.ConfidenceMedium}
	}
	return Inference{Parent: defaultBranch, Confidence: model.ConfidenceLow}
}

// namingParent finds the longest branch name that is a strict prefix of
// target followed by a / or - separator. The default branch never wins
// by name; it is already the fallback.
func namingParent(branches []model.Branch, defaultBranch, target string) (string, bool) {
	best := ""
	for _, b := range branches {
		if b.Name == target || b.Name == defaultBranch {
			continue
		}
		if !strings.HasPrefix(target, b.Name) {
			continue
		}
		rest := target[len(b.Name):]
		if len(rest) == 0 || (rest[0] != '/' && rest[0] != '-') {
			continue
		}
		if len(b.Name) > len(best) {
			best = b.Name
		}
	}
	return best, best != ""
}

// ancestryParent selects the candidate whose merge-base with target is
// the closest strict refinement of the trunk's merge-base. Candidates
// that add nothing over the trunk, or whose merge-base is not between
// the trunk fork point and the target, are discarded.
func ancestryParent(ctx context.Context, repo gitquery.Service, branches []model.Branch, defaultBranch, target string) (string, bool) {
	trunkBase, err := repo.MergeBase(ctx, defaultBranch, target)
	if err != nil {
		return "", false
	}

	targetTip := ""
	for _, b := range branches {
		if b.Name == target {
			targetTip = b.CommitID
			break
		}
	}

	// Commits unique to target since diverging from the trunk; any real
	// parent must sit strictly inside that range.
	trunkDist := math.MaxInt
	if trunkBase != "" {
		if n, err := repo.CountCommits(ctx, trunkBase, target); err == nil {
			trunkDist = n
		}
	}

	best := ""
	bestDist := trunkDist
	for _, b := range branches {
		if b.Name == target || b.Name == defaultBranch {
			continue
		}
		base, err := repo.MergeBase(ctx, b.Name, target)
		if err != nil || base == "" || base == trunkBase {
			continue
		}
		if targetTip != "" && base == targetTip {
			// The candidate contains the whole target: it is a descendant,
			// not an ancestor.
			continue
		}
		if trunkBase != "" {
			between, err := repo.IsAncestor(ctx, trunkBase, base)
			if err != nil || !between {
				continue
			}
		}
		dist, err := repo.CountCommits(ctx, base, target)
		if err != nil {
			continue
		}
		if dist < bestDist || (dist == bestDist && best != "" && b.Name < best) {
			best, bestDist = b.Name, dist
		}
	}
	return best, best != ""
}
