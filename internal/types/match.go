package types

import "fmt"

// MatchType describes how strongly a requirement was satisfied
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchSemantic MatchType = "semantic"
	MatchPartial  MatchType = "partial"
	MatchMissing  MatchType = "missing"
)

// EvidenceKind is the discriminant of Evidence
type EvidenceKind string

const (
	EvidenceNone       EvidenceKind = "none"
	EvidenceSkill      EvidenceKind = "skill"
	EvidenceBullet     EvidenceKind = "bullet"
	EvidenceEducation  EvidenceKind = "education"
	EvidenceExperience EvidenceKind = "experience"
)

// Evidence is the résumé item that best supports a requirement.
// Exactly one payload is set, selected by Kind.
type Evidence struct {
	Kind       EvidenceKind `json:"kind"`
	Skill      *Skill       `json:"skill,omitempty"`
	Bullet     *Bullet      `json:"bullet,omitempty"`
	Education  *Education   `json:"education,omitempty"`
	Experience *Experience  `json:"experience,omitempty"`
}

// NoEvidence returns the empty variant
func NoEvidence() Evidence { return Evidence{Kind: EvidenceNone} }

// SkillEvidence wraps a skill
func SkillEvidence(s Skill) Evidence { return Evidence{Kind: EvidenceSkill, Skill: &s} }

// BulletEvidence wraps a bullet
func BulletEvidence(b Bullet) Evidence { return Evidence{Kind: EvidenceBullet, Bullet: &b} }

// EducationEvidence wraps an education entry
func EducationEvidence(e Education) Evidence { return Evidence{Kind: EvidenceEducation, Education: &e} }

// ExperienceEvidence wraps an experience
func ExperienceEvidence(e Experience) Evidence {
	return Evidence{Kind: EvidenceExperience, Experience: &e}
}

// Text returns the human-readable text of the evidence
func (e Evidence) Text() string {
	switch e.Kind {
	case EvidenceSkill:
		return e.Skill.Name
	case EvidenceBullet:
		return e.Bullet.Text
	case EvidenceEducation:
		if e.Education.Institution != "" {
			return e.Education.Degree + ", " + e.Education.Institution
		}
		return e.Education.Degree
	case EvidenceExperience:
		if e.Experience.Company != "" {
			return e.Experience.Title + " at " + e.Experience.Company
		}
		return e.Experience.Title
	case EvidenceNone:
		return ""
	default:
		panic(fmt.Sprintf("types: unknown evidence kind %q", e.Kind))
	}
}

// Describe returns a short label for logs and reports
func (e Evidence) Describe() string {
	switch e.Kind {
	case EvidenceNone:
		return "no evidence"
	case EvidenceSkill, EvidenceBullet, EvidenceEducation, EvidenceExperience:
		return fmt.Sprintf("%s: %s", e.Kind, e.Text())
	default:
		panic(fmt.Sprintf("types: unknown evidence kind %q", e.Kind))
	}
}

// MatchRecord is the outcome of matching one requirement
type MatchRecord struct {
	Requirement  Requirement `json:"requirement"`
	Evidence     Evidence    `json:"evidence"`
	Score        int         `json:"score"`
	MatchType    MatchType   `json:"match_type"`
	EvidenceText string      `json:"evidence_text"`
}

// MatchResult partitions every requirement into matched or missing
type MatchResult struct {
	Matched           []MatchRecord `json:"matched"`
	Missing           []MatchRecord `json:"missing"`
	HasDomainMismatch bool          `json:"has_domain_mismatch"`
}
