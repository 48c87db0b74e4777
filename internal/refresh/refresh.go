// Package refresh decides which branches' review metadata is worth
// re-fetching this cycle. Bulk refreshes are expensive, so a bounded
// selection combines a guaranteed tier (branches someone is actively
// working on) with a scored top-up over everything else.
package refresh

import (
	"math/rand"
	"sort"
	"time"

	"canopy/internal/model"
)

// Score weights. Staleness accrues per minute since the last refresh and
// is capped so very old entries compete on jitter instead of swamping
// everything; jitter guarantees eventual rotation of branches with no
// other urgency signal.
const (
	trackedNoWorktreeBonus = 20
	pendingChecksBonus     = 30
	stalenessPerMinute     = 2
	stalenessCap           = 60
	jitterMax              = 25
)

// Budgets bounds one refresh cycle. MaxTotal caps the whole selection;
// OtherMax caps the scored top-up beyond the guaranteed tier.
type Budgets struct {
	MaxTotal int
	OtherMax int
}

// Context is the working-copy and clock state the scorer consults.
// Rand is injectable so selection is reproducible in tests; nil means
// time-seeded.
type Context struct {
	LocalBranches  map[string]bool
	WorktreeOf     map[string]bool // branches checked out somewhere
	ActiveWorktree map[string]bool // subset with a live heartbeat
	Now            time.Time
	Rand           *rand.Rand
}

// Candidate is one scored branch, exported for observability.
type Candidate struct {
	Branch     string
	Score      int
	Guaranteed bool
}

// SelectCandidates returns the branches to refresh this cycle, ordered
// guaranteed tier first, then by descending score. Every branch with an
// active working copy is included unconditionally; remaining slots are
// filled from the scored pool up to both budgets.
func SelectCandidates(cached []model.ReviewItem, rc Context, b Budgets) []string {
	ranked := Rank(cached, rc)

	if b.MaxTotal <= 0 {
		return nil
	}

	var out []string
	taken := 0
	others := 0
	for _, c := range ranked {
		if taken >= b.MaxTotal {
			break
		}
		if !c.Guaranteed {
			if b.OtherMax >= 0 && others >= b.OtherMax {
				continue
			}
			others++
		}
		out = append(out, c.Branch)
		taken++
	}
	return out
}

// Rank scores every known branch. The candidate pool is the union of
// locally tracked branches and branches with cached review metadata.
func Rank(cached []model.ReviewItem, rc Context) []Candidate {
	rng := rc.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rc.Now.UnixNano()))
	}

	byBranch := make(map[string]*model.ReviewItem, len(cached))
	pool := make([]string, 0, len(cached)+len(rc.LocalBranches))
	seen := make(map[string]bool)
	for i := range cached {
		name := cached[i].SourceBranch
		byBranch[name] = &cached[i]
		if !seen[name] {
			seen[name] = true
			pool = append(pool, name)
		}
	}
	for name := range rc.LocalBranches {
		if !seen[name] {
			seen[name] = true
			pool = append(pool, name)
		}
	}
	sort.Strings(pool)

	ranked := make([]Candidate, 0, len(pool))
	for _, name := range pool {
		c := Candidate{
			Branch:     name,
			Guaranteed: rc.ActiveWorktree[name],
			Score:      score(name, byBranch[name], rc, rng),
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Guaranteed != b.Guaranteed {
			return a.Guaranteed
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Branch < b.Branch
	})
	return ranked
}

func score(branch string, item *model.ReviewItem, rc Context, rng *rand.Rand) int {
	s := 0
	if rc.LocalBranches[branch] && !rc.WorktreeOf[branch] {
		s += trackedNoWorktreeBonus
	}
	if item != nil && item.Checks == model.ChecksPending {
		s += pendingChecksBonus
	}
	s += staleness(item, rc.Now)
	s += rng.Intn(jitterMax + 1)
	return s
}

func staleness(item *model.ReviewItem, now time.Time) int {
	if item == nil || item.RefreshedAt.IsZero() {
		return stalenessCap
	}
	minutes := int(now.Sub(item.RefreshedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	s := minutes * stalenessPerMinute
	if s > stalenessCap {
		return stalenessCap
	}
	return s
}
