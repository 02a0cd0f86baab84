package matching

import (
	"strings"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// degreeRank orders degree levels for comparison
var degreeRank = map[string]int{
	"associate": 1,
	"bachelor":  2,
	"master":    3,
	"doctorate": 4,
}

// degreeTerms maps each level to the words that announce it
var degreeTerms = map[string][]string{
	"associate": {"associate degree", "associates degree", "associate s", "associate of", "a.a", "a.s"},
	"bachelor":  {"bachelor", "bachelors", "bachelor s", "b.s", "b.a", "bsc", "b.sc", "b.eng", "undergraduate degree"},
	"master":    {"masters", "master s", "master of", "m.s", "m.a", "msc", "m.sc", "mba", "m.eng", "graduate degree"},
	"doctorate": {"phd", "ph.d", "doctorate", "doctoral", "doctor of philosophy"},
}

// fieldsOfStudy are recognised majors
var fieldsOfStudy = []string{
	"computer science", "software engineering", "computer engineering", "information technology",
	"data science", "statistics", "mathematics", "physics", "economics", "electrical engineering",
	"electronics", "machine learning", "business administration", "business", "marketing",
	"finance", "accounting", "communications", "journalism", "graphic design", "design",
	"psychology", "human-computer interaction",
}

// relatedFields lists adjacent majors that partially satisfy a field requirement
var relatedFields = map[string][]string{
	"computer science":        {"software engineering", "computer engineering", "information technology"},
	"software engineering":    {"computer science", "computer engineering"},
	"data science":            {"statistics", "mathematics", "computer science", "machine learning"},
	"statistics":              {"mathematics", "data science", "economics"},
	"mathematics":             {"statistics", "physics", "computer science"},
	"electrical engineering":  {"computer engineering", "electronics"},
	"marketing":               {"communications", "business", "business administration", "journalism"},
	"business administration": {"business", "economics", "finance", "marketing"},
	"graphic design":          {"design", "human-computer interaction"},
}

// degreeLevel returns the highest degree rank mentioned in text, or 0
func degreeLevel(text string) int {
	best := 0
	for level, terms := range degreeTerms {
		if hasAny(text, terms) && degreeRank[level] > best {
			best = degreeRank[level]
		}
	}
	return best
}

func fieldsIn(text string) []string {
	var out []string
	for _, f := range fieldsOfStudy {
		if skills.ContainsTerm(text, f) {
			out = append(out, f)
		}
	}
	return out
}

// isEducationRequirement reports whether a requirement asks for a degree
func isEducationRequirement(req types.Requirement) bool {
	if req.Type == types.RequirementEducation {
		return true
	}
	return degreeLevel(req.Text) > 0 || skills.ContainsTerm(req.Text, "degree")
}

// scoreEducation compares a degree entry with a requirement by level, then field of study,
// then the bare presence of a degree.
func (e *Engine) scoreEducation(edu types.Education, req types.Requirement) candidate {
	if !isEducationRequirement(req) {
		return candidate{evidence: types.NoEvidence()}
	}

	eduText := strings.TrimSpace(edu.Degree + " " + edu.OriginalText)
	reqLevel := degreeLevel(req.Text)
	eduLevel := degreeLevel(eduText)
	ev := types.EducationEvidence(edu)

	// a held degree satisfies a degree-level requirement whatever the field's domain
	if reqLevel > 0 && eduLevel >= reqLevel {
		return candidate{score: e.th.EducationLevel, matchType: types.MatchExact, evidence: ev, uncapped: true}
	}

	switch computeFieldMatch(fieldsIn(eduText), fieldsIn(req.Text)) {
	case fieldExact:
		return candidate{score: e.th.EducationField, matchType: types.MatchSemantic, evidence: ev}
	case fieldRelated:
		return candidate{score: e.th.EducationRelated, matchType: types.MatchPartial, evidence: ev}
	}

	if reqLevel == 0 && strings.TrimSpace(edu.Degree) != "" {
		return candidate{score: e.th.EducationAnyDegree, matchType: types.MatchPartial, evidence: ev}
	}
	return candidate{evidence: types.NoEvidence()}
}

type fieldMatch int

const (
	fieldNone fieldMatch = iota
	fieldRelated
	fieldExact
)

// computeFieldMatch reports how well the candidate's fields cover the preferred ones
func computeFieldMatch(have, preferred []string) fieldMatch {
	for _, p := range preferred {
		for _, h := range have {
			if h == p {
				return fieldExact
			}
		}
	}
	for _, p := range preferred {
		for _, r := range relatedFields[p] {
			for _, h := range have {
				if h == r {
					return fieldRelated
				}
			}
		}
	}
	return fieldNone
}
