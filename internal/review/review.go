// Package review abstracts pull/merge request metadata lookup. The
// GitHub implementation shells out to the gh CLI; check rollups, review
// decisions and bot filtering are resolved here so the engine only ever
// sees finished ReviewItems.
package review

import (
	"context"
	"regexp"

	"canopy/internal/model"
)

// Service lists review items for the repository's branches.
type Service interface {
	ListItems(ctx context.Context) ([]model.ReviewItem, error)
}

// DefaultBotPatterns matches the well-known automation accounts that
// should never count as human reviewers.
var DefaultBotPatterns = []string{
	`\[bot\]$`,
	`^dependabot`,
	`^renovate`,
	`^github-actions`,
}

// BotFilter drops usernames matching any of its patterns. Invalid
// patterns are skipped individually.
type BotFilter struct {
	res []*regexp.Regexp
}

// NewBotFilter compiles the given patterns, ignoring ones that fail.
func NewBotFilter(patterns []string) *BotFilter {
	f := &BotFilter{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		f.res = append(f.res, re)
	}
	return f
}

// IsBot reports whether the username matches a bot pattern.
func (f *BotFilter) IsBot(username string) bool {
	for _, re := range f.res {
		if re.MatchString(username) {
			return true
		}
	}
	return false
}

// Humans returns the usernames that are not bots, preserving order.
func (f *BotFilter) Humans(usernames []string) []string {
	var out []string
	for _, u := range usernames {
		if !f.IsBot(u) {
			out = append(out, u)
		}
	}
	return out
}
