package parsing

import (
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	minKeywordLength     = 3
	minRequirementLength = 4
)

// Normalize coerces enum fields, trims text, and drops short or duplicate
// requirements and keywords. Slices are never nil afterwards.
func Normalize(rs *types.RequirementSet) {
	rs.Title = strings.TrimSpace(rs.Title)
	rs.Company = strings.TrimSpace(rs.Company)

	seen := make(map[string]bool)
	rs.Required = normalizeRequirements(rs.Required, seen)
	rs.Preferred = normalizeRequirements(rs.Preferred, seen)
	rs.Keywords = NormalizeKeywords(rs.Keywords)

	rs.Context.Seniority = strings.ToLower(strings.TrimSpace(rs.Context.Seniority))
	rs.Context.WorkStyle = strings.ToLower(strings.TrimSpace(rs.Context.WorkStyle))
	rs.Context.Industry = strings.TrimSpace(rs.Context.Industry)
}

// normalizeRequirements dedupes case-insensitively across both lists via seen
func normalizeRequirements(reqs []types.Requirement, seen map[string]bool) []types.Requirement {
	out := make([]types.Requirement, 0, len(reqs))
	for _, r := range reqs {
		text := strings.Join(strings.Fields(r.Text), " ")
		if len(text) < minRequirementLength {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, types.Requirement{
			Text:       text,
			Type:       types.ParseRequirementType(strings.ToLower(strings.TrimSpace(string(r.Type)))),
			Importance: types.ParseImportance(strings.ToLower(strings.TrimSpace(string(r.Importance)))),
		})
	}
	return out
}

// NormalizeKeywords lowercases, trims and dedupes keywords, dropping short ones
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if len(k) < minKeywordLength || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
