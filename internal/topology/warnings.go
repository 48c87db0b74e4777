package topology

import (
	"fmt"
	"regexp"
	"sort"

	"canopy/internal/model"
)

// behindErrorThreshold is the behind-parent count at which the warning
// escalates from warn to error.
const behindErrorThreshold = 5

// ComputeWarnings derives the advisory warning list from a finished
// tree. inferred is the pre-reconciliation edge set: drift is a designed
// edge that inference disagrees with, so the comparison must see the
// edges git evidence produced, not the intent-overridden final set.
// The result is ordered errors first, then by code and message, so
// identical inputs always yield identical output.
func ComputeWarnings(nodes []*model.Node, inferred []model.Edge, defaultBranch string, rule *model.NamingRule, designed *model.DesignedTree) []model.Warning {
	var warnings []model.Warning

	for _, n := range nodes {
		warnings = append(warnings, nodeWarnings(n, defaultBranch)...)
	}
	warnings = append(warnings, namingWarnings(nodes, defaultBranch, rule)...)
	warnings = append(warnings, driftWarnings(nodes, inferred, designed)...)

	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if a.Severity != b.Severity {
			return a.Severity == model.SeverityError
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	return warnings
}

func nodeWarnings(n *model.Node, defaultBranch string) []model.Warning {
	var out []model.Warning

	if n.Branch != defaultBranch && n.Parent != nil && n.Parent.Behind > 0 {
		severity := model.SeverityWarn
		if n.Parent.Behind >= behindErrorThreshold {
			severity = model.SeverityError
		}
		out = append(out, model.Warning{
			Severity: severity,
			Code:     model.WarnBehindParent,
			Message:  fmt.Sprintf("%s is %d commits behind its parent", n.Branch, n.Parent.Behind),
			Meta:     map[string]string{"branch": n.Branch, "behind": fmt.Sprintf("%d", n.Parent.Behind)},
		})
	}

	if n.WorkingCopy != nil && n.WorkingCopy.Dirty {
		out = append(out, model.Warning{
			Severity: model.SeverityWarn,
			Code:     model.WarnDirty,
			Message:  fmt.Sprintf("%s has uncommitted changes in %s", n.Branch, n.WorkingCopy.Path),
			Meta:     map[string]string{"branch": n.Branch, "path": n.WorkingCopy.Path},
		})
	}

	if n.Review != nil && n.Review.Checks == model.ChecksFailure {
		out = append(out, model.Warning{
			Severity: model.SeverityError,
			Code:     model.WarnChecksFailing,
			Message:  fmt.Sprintf("checks failing on #%d (%s)", n.Review.Number, n.Branch),
			Meta:     map[string]string{"branch": n.Branch, "review": fmt.Sprintf("%d", n.Review.Number)},
		})
	}

	return out
}

// namingWarnings flags non-default branches that match none of the rule
// patterns. Patterns compile independently; an invalid one is skipped
// rather than poisoning the rule set, and a rule with no valid patterns
// flags nothing.
func namingWarnings(nodes []*model.Node, defaultBranch string, rule *model.NamingRule) []model.Warning {
	if rule == nil || len(rule.Patterns) == 0 {
		return nil
	}
	var res []*regexp.Regexp
	for _, p := range rule.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		res = append(res, re)
	}
	if len(res) == 0 {
		return nil
	}

	var out []model.Warning
	for _, n := range nodes {
		if n.Branch == defaultBranch {
			continue
		}
		matched := false
		for _, re := range res {
			if re.MatchString(n.Branch) {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, model.Warning{
				Severity: model.SeverityWarn,
				Code:     model.WarnNamingViolation,
				Message:  fmt.Sprintf("%s does not match any configured naming pattern", n.Branch),
				Meta:     map[string]string{"branch": n.Branch},
			})
		}
	}
	return out
}

// driftWarnings reports designed edges whose endpoints both still exist
// but which inference did not reproduce. Edges referencing a vanished
// branch are stale data, not drift, and are dropped silently.
func driftWarnings(nodes []*model.Node, inferred []model.Edge, designed *model.DesignedTree) []model.Warning {
	if designed == nil {
		return nil
	}
	exists := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		exists[n.Branch] = true
	}
	have := make(map[[2]string]bool, len(inferred))
	for _, e := range inferred {
		have[[2]string{e.Parent, e.Child}] = true
	}

	var out []model.Warning
	for _, d := range designed.Edges {
		if !exists[d.Parent] || !exists[d.Child] {
			continue
		}
		if have[[2]string{d.Parent, d.Child}] {
			continue
		}
		out = append(out, model.Warning{
			Severity: model.SeverityWarn,
			Code:     model.WarnTreeDivergence,
			Message:  fmt.Sprintf("designed edge %s -> %s does not match the observed topology", d.Parent, d.Child),
			Meta:     map[string]string{"parent": d.Parent, "child": d.Child},
		})
	}
	return out
}
