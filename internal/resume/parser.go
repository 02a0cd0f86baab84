// Package resume turns raw résumé text into a structured ResumeProfile.
// Parsing is deterministic and never fails: a missing section yields an empty list.
package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// section identifies a block of résumé lines
type section string

const (
	sectionHeader     section = "header"
	sectionSummary    section = "summary"
	sectionExperience section = "experience"
	sectionEducation  section = "education"
	sectionSkills     section = "skills"
	sectionProjects   section = "projects"
)

// maxHeaderLength bounds the length of a line that may be a section header
const maxHeaderLength = 48

var sectionPatterns = []struct {
	name section
	re   *regexp.Regexp
}{
	{sectionExperience, regexp.MustCompile(`^(?:professional |work |relevant |employment )?(?:experience|employment|work history|career history|employment history)s?$`)},
	{sectionEducation, regexp.MustCompile(`^(?:education(?:al background)?|academic background|academics)(?: (?:&|and) (?:training|certifications?))?$`)},
	{sectionSkills, regexp.MustCompile(`^(?:(?:technical|core|key|relevant) )?(?:skills|competencies|technologies|tech stack|expertise)(?: (?:&|and) (?:tools|technologies|expertise|abilities))?$`)},
	{sectionSummary, regexp.MustCompile(`^(?:professional |career )?(?:summary|profile|objective|about me|about)$`)},
	{sectionProjects, regexp.MustCompile(`^(?:personal |selected |side |key )?projects$`)},
}

// bulletGlyphs are the prefixes recognized as list items
var bulletGlyphs = []string{"- ", "* ", "• ", "· ", "◦ ", "▪ ", "– ", "➢ ", "► ", "•", "▪", "◦"}

// Parse extracts a ResumeProfile from raw text
func Parse(text string) *types.ResumeProfile {
	profile := &types.ResumeProfile{
		RawText:     text,
		Skills:      []types.Skill{},
		Experiences: []types.Experience{},
		Education:   []types.Education{},
	}

	lines := splitLines(text)
	if len(lines) == 0 {
		return profile
	}

	sections := segment(lines)

	profile.Contact = extractContact(lines)
	profile.Skills = parseSkills(sections[sectionSkills])
	profile.Experiences = parseExperiences(sections[sectionExperience])
	profile.Education = parseEducation(sections[sectionEducation])

	return profile
}

// splitLines returns the non-empty trimmed lines of text
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// segment assigns each line to the section opened by the closest preceding header
func segment(lines []string) map[section][]string {
	sections := make(map[section][]string)
	current := sectionHeader
	for _, line := range lines {
		if name, ok := matchHeader(line); ok {
			current = name
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

// matchHeader reports whether line is a section header and which one
func matchHeader(line string) (section, bool) {
	if len(line) > maxHeaderLength || isBullet(line) {
		return "", false
	}
	candidate := strings.ToLower(line)
	candidate = strings.TrimLeft(candidate, "#* ")
	candidate = strings.TrimRight(candidate, ":*= ")
	candidate = strings.Join(strings.Fields(candidate), " ")

	for _, p := range sectionPatterns {
		if p.re.MatchString(candidate) {
			return p.name, true
		}
	}
	return "", false
}

// isBullet reports whether line starts with a bullet glyph
func isBullet(line string) bool {
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(line, g) {
			return true
		}
	}
	return false
}

// stripBullet removes a leading bullet glyph
func stripBullet(line string) string {
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(line, g) {
			return strings.TrimSpace(strings.TrimPrefix(line, g))
		}
	}
	return line
}
