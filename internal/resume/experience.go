package resume

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// minSentenceWords is the word count at which a glyph-less line is read as a bullet
const minSentenceWords = 8

var (
	monthPrefix = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+)?`
	dateRangeRe = regexp.MustCompile(`(?i)` + monthPrefix + `((?:19|20)\d{2})\s*(?:-|–|—|to)\s*` + monthPrefix + `((?:19|20)\d{2}|present|current|now)\b`)

	roleKeywordRe = regexp.MustCompile(`(?i)\b(engineer|developer|programmer|manager|director|analyst|designer|specialist|consultant|coordinator|lead|architect|scientist|associate|representative|executive|intern|administrator|officer|head of|vp|vice president|president|founder|co-founder|accountant|strategist|marketer|recruiter|nurse|teacher|writer|editor|product owner|technician|assistant|supervisor|owner|partner)\b`)

	headerSeparators = regexp.MustCompile(`\s+(?:\||@|at|-|–|—)\s+|\s*,\s*|\s*\|\s*`)
)

// parseDateRange extracts a year range from line
func parseDateRange(line string) (*types.DateRange, string) {
	m := dateRangeRe.FindStringSubmatchIndex(line)
	if m == nil {
		return nil, line
	}
	raw := line[m[0]:m[1]]
	start, _ := strconv.Atoi(line[m[2]:m[3]])
	endText := strings.ToLower(line[m[4]:m[5]])

	dr := &types.DateRange{Start: start, Raw: strings.TrimSpace(raw)}
	if end, err := strconv.Atoi(endText); err == nil {
		dr.End = end
	}

	rest := line[:m[0]] + line[m[1]:]
	return dr, cleanSeparators(rest)
}

// cleanSeparators trims dangling separators and brackets left after removing a date
func cleanSeparators(s string) string {
	s = strings.ReplaceAll(s, "()", "")
	return strings.Trim(strings.TrimSpace(s), "|,-–—() \t")
}

// isJobHeader reports whether a non-bullet line names a role
func isJobHeader(line string) bool {
	return !isBullet(line) && roleKeywordRe.MatchString(line) && len(strings.Fields(line)) < minSentenceWords+4
}

// splitJobHeader separates a header line into title and company
func splitJobHeader(line string) (title, company string) {
	parts := headerSeparators.Split(line, -1)
	var others []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if title == "" && roleKeywordRe.MatchString(p) {
			title = p
			continue
		}
		others = append(others, p)
	}
	if title == "" {
		return line, ""
	}
	if len(others) > 0 {
		company = others[0]
	}
	return title, company
}

// parseExperiences scans experience-section lines into jobs with bullets
func parseExperiences(lines []string) []types.Experience {
	experiences := []types.Experience{}
	var current *types.Experience
	var original []string

	flush := func() {
		if current != nil {
			current.OriginalText = strings.Join(original, "\n")
			experiences = append(experiences, *current)
		}
		current = nil
		original = nil
	}

	for _, line := range lines {
		switch {
		case isJobHeader(line):
			flush()
			dr, rest := parseDateRange(line)
			title, company := splitJobHeader(rest)
			current = &types.Experience{Title: title, Company: company, DateRange: dr, Bullets: []types.Bullet{}}
			original = append(original, line)

		case isBullet(line):
			if current == nil {
				current = &types.Experience{Bullets: []types.Bullet{}}
			}
			current.Bullets = append(current.Bullets, newBullet(stripBullet(line)))
			original = append(original, line)

		default:
			if current == nil {
				continue
			}
			original = append(original, line)
			dr, rest := parseDateRange(line)
			if dr != nil && current.DateRange == nil {
				current.DateRange = dr
			}
			switch {
			case rest == "":
			case len(strings.Fields(rest)) >= minSentenceWords:
				current.Bullets = append(current.Bullets, newBullet(rest))
			case current.Company == "":
				current.Company = rest
			}
		}
	}
	flush()

	return experiences
}
