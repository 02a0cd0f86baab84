package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

var (
	degreeRe      = regexp.MustCompile(`(?i)\b(bachelor'?s?|master'?s?|associate'?s? degree|b\.?s\.?c?\.?|b\.?a\.?|m\.?s\.?c?\.?|m\.?a\.?|mba|ph\.?\s?d\.?|doctorate|doctor of|b\.?eng|m\.?eng|b\.?tech|m\.?tech|bsc|msc|diploma)\b`)
	institutionRe = regexp.MustCompile(`(?i)\b(university|college|institute|school|academy|polytechnic)\b`)
	yearRe        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	gpaRe         = regexp.MustCompile(`(?i)(?:gpa[:\s]*([0-4]\.\d{1,2})|([0-4]\.\d{1,2})\s*/\s*4\.0)`)
)

// parseEducation detects degree lines and the institution that follows them
func parseEducation(lines []string) []types.Education {
	entries := []types.Education{}

	for i := 0; i < len(lines); i++ {
		line := stripBullet(lines[i])
		if !degreeRe.MatchString(line) {
			continue
		}

		entry := types.Education{OriginalText: lines[i]}
		degreePart := line

		// Degree and institution may share a line separated by commas or pipes
		for _, part := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == '|' }) {
			part = strings.TrimSpace(part)
			if institutionRe.MatchString(part) && !degreeRe.MatchString(part) {
				entry.Institution = stripYearAndGPA(part)
				degreePart = strings.Replace(degreePart, part, "", 1)
			}
		}

		nextUsed := false
		if entry.Institution == "" && i+1 < len(lines) {
			next := stripBullet(lines[i+1])
			if institutionRe.MatchString(next) || !degreeRe.MatchString(next) {
				entry.Institution = stripYearAndGPA(next)
				entry.OriginalText += "\n" + lines[i+1]
				nextUsed = true
			}
		}

		entry.Year = lastYear(entry.OriginalText)
		entry.GPA = findGPA(entry.OriginalText)
		entry.Degree = strings.Trim(stripYearAndGPA(degreePart), " ,|-–()")

		entries = append(entries, entry)
		if nextUsed {
			i++
		}
	}
	return entries
}

// stripYearAndGPA removes years and GPA annotations from s
func stripYearAndGPA(s string) string {
	s = gpaRe.ReplaceAllString(s, "")
	s = dateRangeRe.ReplaceAllString(s, "")
	s = yearRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ,|-–()")
}

// lastYear returns the last four-digit year in s
func lastYear(s string) string {
	years := yearRe.FindAllString(s, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// findGPA returns the GPA value in s, if any
func findGPA(s string) string {
	m := gpaRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
