package types

// RequirementType classifies what a requirement asks for
type RequirementType string

const (
	RequirementSkill         RequirementType = "skill"
	RequirementExperience    RequirementType = "experience"
	RequirementEducation     RequirementType = "education"
	RequirementCertification RequirementType = "certification"
	RequirementOther         RequirementType = "other"
)

// Importance is the ordinal weight of a requirement
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// ParseRequirementType maps free text onto the enum, defaulting to other
func ParseRequirementType(s string) RequirementType {
	switch RequirementType(s) {
	case RequirementSkill, RequirementExperience, RequirementEducation, RequirementCertification, RequirementOther:
		return RequirementType(s)
	}
	return RequirementOther
}

// ParseImportance maps free text onto the enum, defaulting to medium
func ParseImportance(s string) Importance {
	switch Importance(s) {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return Importance(s)
	}
	return ImportanceMedium
}

// RequirementSet is the structured form of a job description
type RequirementSet struct {
	Title     string             `json:"title"`
	Company   string             `json:"company,omitempty"`
	Required  []Requirement      `json:"required"`
	Preferred []Requirement      `json:"preferred"`
	Keywords  []string           `json:"keywords"`
	Context   RequirementContext `json:"context"`
}

// RequirementContext carries best-effort signals about the role
type RequirementContext struct {
	Seniority string `json:"seniority,omitempty"`
	WorkStyle string `json:"work_style,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// Requirement is a single line item from a job description
type Requirement struct {
	Text       string          `json:"text"`
	Type       RequirementType `json:"type"`
	Importance Importance      `json:"importance"`
}

// All returns required followed by preferred requirements
func (rs *RequirementSet) All() []Requirement {
	all := make([]Requirement, 0, len(rs.Required)+len(rs.Preferred))
	all = append(all, rs.Required...)
	return append(all, rs.Preferred...)
}

// Count returns the total number of requirements
func (rs *RequirementSet) Count() int {
	return len(rs.Required) + len(rs.Preferred)
}
