package rendering

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/jonathan/resume-matcher/internal/rewriting"
	"github.com/jonathan/resume-matcher/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	resumeTemplate      = "resume.tmpl"
	coverLetterTemplate = "cover_letter.tmpl"

	maxHighlights = 3
	maxSkills     = 6
)

// ContactSection is the header of the résumé
type ContactSection struct {
	Name string
	Line string
}

// ExperienceSection is one job with its bullets in output order
type ExperienceSection struct {
	Heading string
	Bullets []string
}

// ResumeData is passed to the résumé template
type ResumeData struct {
	Contact     *ContactSection
	Skills      string
	Experiences []ExperienceSection
	Education   []string
}

// CoverLetterData is passed to the cover letter template
type CoverLetterData struct {
	Position      string
	Highlights    []string
	Skills        string
	CandidateName string
}

// relevance indexes matched evidence for reordering
type relevance struct {
	skills      map[string]int
	bullets     map[string]int
	experiences map[string]int
}

func newRelevance(matched []types.MatchRecord) *relevance {
	rel := &relevance{
		skills:      make(map[string]int),
		bullets:     make(map[string]int),
		experiences: make(map[string]int),
	}
	keep := func(m map[string]int, key string, score int) {
		if score > m[key] {
			m[key] = score
		}
	}
	for _, rec := range matched {
		switch rec.Evidence.Kind {
		case types.EvidenceSkill:
			keep(rel.skills, strings.ToLower(rec.Evidence.Skill.Name), rec.Score)
		case types.EvidenceBullet:
			keep(rel.bullets, rec.Evidence.Bullet.Text, rec.Score)
		case types.EvidenceExperience:
			keep(rel.experiences, experienceKey(*rec.Evidence.Experience), rec.Score)
		case types.EvidenceEducation, types.EvidenceNone:
		}
	}
	return rel
}

func experienceKey(exp types.Experience) string {
	return exp.Title + "\x00" + exp.Company
}

// experienceScore is the strongest evidence found in the job or its bullets
func (r *relevance) experienceScore(exp types.Experience) int {
	best := r.experiences[experienceKey(exp)]
	for _, b := range exp.Bullets {
		if s := r.bullets[b.Text]; s > best {
			best = s
		}
	}
	return best
}

// QuickResume reorders the résumé so matched evidence comes first: matched skills,
// jobs holding the strongest evidence, and matched bullets ahead of the rest.
// Bullets with no evidence keep quantified, action-led lines first. Nothing is invented.
func QuickResume(profile *types.ResumeProfile, result types.MatchResult) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("%w: résumé profile", ErrMissingInput)
	}
	if len(profile.Skills) == 0 && len(profile.Experiences) == 0 && len(profile.Education) == 0 {
		return strings.TrimSpace(profile.RawText), nil
	}

	rel := newRelevance(result.Matched)
	data := ResumeData{
		Contact:     contactSection(profile.Contact),
		Skills:      strings.Join(orderSkills(profile.Skills, rel), ", "),
		Experiences: orderExperiences(profile.Experiences, rel),
	}
	for _, edu := range profile.Education {
		data.Education = append(data.Education, educationLine(edu))
	}

	return execute(resumeTemplate, data)
}

// QuickCoverLetter fills the cover letter template from the strongest matched evidence
func QuickCoverLetter(profile *types.ResumeProfile, reqs *types.RequirementSet, result types.MatchResult) (string, error) {
	if profile == nil || reqs == nil {
		return "", fmt.Errorf("%w: résumé profile and requirements", ErrMissingInput)
	}

	data := CoverLetterData{
		Position:      position(reqs),
		Highlights:    highlights(result.Matched),
		CandidateName: profile.CandidateName(),
	}

	var skills []string
	rel := newRelevance(result.Matched)
	for _, s := range orderSkills(profile.Skills, rel) {
		if _, ok := rel.skills[strings.ToLower(s)]; !ok || len(skills) == maxSkills {
			break
		}
		skills = append(skills, s)
	}
	data.Skills = joinWithAnd(skills)

	return execute(coverLetterTemplate, data)
}

func execute(name string, data any) (string, error) {
	var out strings.Builder
	if err := templates.ExecuteTemplate(&out, name, data); err != nil {
		return "", &TemplateError{Template: name, Err: err}
	}
	return strings.TrimSpace(out.String()), nil
}

func contactSection(c *types.Contact) *ContactSection {
	if c == nil || c.Name == "" {
		return nil
	}
	var parts []string
	for _, p := range []string{c.Email, c.Phone, c.LinkedIn} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return &ContactSection{Name: c.Name, Line: strings.Join(parts, " | ")}
}

func orderSkills(skills []types.Skill, rel *relevance) []string {
	ordered := make([]types.Skill, len(skills))
	copy(ordered, skills)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rel.skills[strings.ToLower(ordered[i].Name)] > rel.skills[strings.ToLower(ordered[j].Name)]
	})
	names := make([]string, len(ordered))
	for i, s := range ordered {
		names[i] = s.Name
	}
	return names
}

func orderExperiences(exps []types.Experience, rel *relevance) []ExperienceSection {
	ordered := make([]types.Experience, len(exps))
	copy(ordered, exps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rel.experienceScore(ordered[i]) > rel.experienceScore(ordered[j])
	})

	sections := make([]ExperienceSection, 0, len(ordered))
	for _, exp := range ordered {
		bullets := make([]types.Bullet, len(exp.Bullets))
		copy(bullets, exp.Bullets)
		sort.SliceStable(bullets, func(i, j int) bool {
			si, sj := rel.bullets[bullets[i].Text], rel.bullets[bullets[j].Text]
			if si != sj {
				return si > sj
			}
			return rewriting.CheckBullet(bullets[i]).Rank() > rewriting.CheckBullet(bullets[j]).Rank()
		})

		section := ExperienceSection{Heading: experienceHeading(exp)}
		for _, b := range bullets {
			section.Bullets = append(section.Bullets, b.Text)
		}
		sections = append(sections, section)
	}
	return sections
}

func experienceHeading(exp types.Experience) string {
	heading := exp.Title
	if exp.Company != "" {
		if heading != "" {
			heading += ", "
		}
		heading += exp.Company
	}
	if dates := exp.DateRange.String(); dates != "" {
		heading += " (" + dates + ")"
	}
	return heading
}

func educationLine(edu types.Education) string {
	line := types.EducationEvidence(edu).Text()
	if edu.Year != "" {
		line += " (" + edu.Year + ")"
	}
	return line
}

func position(reqs *types.RequirementSet) string {
	title := strings.TrimSpace(reqs.Title)
	switch {
	case title != "" && reqs.Company != "":
		return "the " + title + " role at " + reqs.Company
	case title != "":
		return "the " + title + " role"
	case reqs.Company != "":
		return "the open role at " + reqs.Company
	default:
		return "this role"
	}
}

// highlights picks evidence lines from the highest scoring matches, bullets and jobs
// ahead of bare skill names
func highlights(matched []types.MatchRecord) []string {
	ranked := make([]types.MatchRecord, len(matched))
	copy(ranked, matched)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := evidencePriority(ranked[i].Evidence.Kind), evidencePriority(ranked[j].Evidence.Kind)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Score > ranked[j].Score
	})

	var lines []string
	seen := make(map[string]bool)
	for _, rec := range ranked {
		if len(lines) == maxHighlights {
			break
		}
		if rec.Evidence.Kind == types.EvidenceSkill || rec.Evidence.Kind == types.EvidenceNone {
			continue
		}
		text := strings.TrimRight(strings.TrimSpace(rec.Evidence.Text()), ".")
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		lines = append(lines, text)
	}
	return lines
}

func evidencePriority(kind types.EvidenceKind) int {
	switch kind {
	case types.EvidenceBullet:
		return 3
	case types.EvidenceExperience:
		return 2
	case types.EvidenceEducation:
		return 1
	case types.EvidenceSkill, types.EvidenceNone:
		return 0
	default:
		return 0
	}
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
