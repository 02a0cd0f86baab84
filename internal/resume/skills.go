package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

const maxSkillLength = 50

var (
	skillDelimiters = regexp.MustCompile(`[,;|•·▪◦]`)
	// skillLabel matches a leading "Languages:" style label
	skillLabel = regexp.MustCompile(`^[A-Za-z &/]{2,30}:\s*`)
)

// parseSkills splits skills-section lines into de-duplicated skill tokens
func parseSkills(lines []string) []types.Skill {
	result := []types.Skill{}
	seen := make(map[string]bool)

	for _, line := range lines {
		line = stripBullet(line)
		line = skillLabel.ReplaceAllString(line, "")

		for _, token := range skillDelimiters.Split(line, -1) {
			original := strings.TrimSpace(token)
			name := strings.TrimSpace(strings.TrimRight(original, "."))
			if name == "" || len(name) > maxSkillLength {
				continue
			}
			name = skills.NormalizeSkillName(name)

			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			result = append(result, types.Skill{
				Name:         name,
				Category:     skills.Categorize(name),
				OriginalText: original,
			})
		}
	}
	return result
}
