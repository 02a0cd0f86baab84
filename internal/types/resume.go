// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strconv"
	"strings"
	"time"
)

// SkillCategory classifies a skill token
type SkillCategory string

const (
	SkillTechnical SkillCategory = "technical"
	SkillSoft      SkillCategory = "soft"
	SkillTool      SkillCategory = "tool"
	SkillLanguage  SkillCategory = "language"
	SkillOther     SkillCategory = "other"
)

// ResumeProfile is the structured form of a raw résumé produced by the parser
type ResumeProfile struct {
	RawText     string       `json:"raw_text"`
	Skills      []Skill      `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	Contact     *Contact     `json:"contact,omitempty"`
}

// Skill is a single skill token from the skills section
type Skill struct {
	Name         string        `json:"name"`
	Category     SkillCategory `json:"category"`
	OriginalText string        `json:"original_text"`
}

// Experience is one job held by the candidate
type Experience struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	DateRange    *DateRange `json:"date_range,omitempty"`
	Bullets      []Bullet   `json:"bullets"`
	OriginalText string     `json:"original_text"`
}

// DateRange is a year span such as "2019 - present"
type DateRange struct {
	Start int    `json:"start"`
	End   int    `json:"end,omitempty"` // 0 means present
	Raw   string `json:"raw"`
}

// IsCurrent reports whether the range is open-ended
func (d *DateRange) IsCurrent() bool {
	return d != nil && d.End == 0
}

// Years returns the length of the range in years, never less than one.
// An open range is measured up to now.
func (d *DateRange) Years(now time.Time) float64 {
	if d == nil || d.Start == 0 {
		return 1
	}
	end := d.End
	if end == 0 {
		end = now.Year()
	}
	years := float64(end - d.Start)
	if years < 1 {
		return 1
	}
	return years
}

// String renders the range as "2019 - 2022" or "2019 - Present"
func (d *DateRange) String() string {
	if d == nil {
		return ""
	}
	if d.Raw != "" {
		return d.Raw
	}
	end := "Present"
	if d.End != 0 {
		end = strconv.Itoa(d.End)
	}
	return strconv.Itoa(d.Start) + " - " + end
}

// MetricKind is the kind of quantified claim found in a bullet
type MetricKind string

const (
	MetricPercentage MetricKind = "percentage"
	MetricCurrency   MetricKind = "currency"
	MetricMultiplier MetricKind = "multiplier"
	MetricCount      MetricKind = "count"
)

// Metric is a quantified claim such as "40%" or "$2M"
type Metric struct {
	Kind  MetricKind `json:"kind"`
	Value string     `json:"value"`
}

// Bullet is a single accomplishment line under an experience
type Bullet struct {
	Text     string   `json:"text"`
	Metrics  []Metric `json:"metrics"`
	Keywords []string `json:"keywords"`
}

// HasMetric reports whether the bullet carries at least one quantified claim
func (b *Bullet) HasMetric() bool {
	return len(b.Metrics) > 0
}

// Education is a degree entry
type Education struct {
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	Year         string `json:"year,omitempty"`
	GPA          string `json:"gpa,omitempty"`
	OriginalText string `json:"original_text"`
}

// Contact holds the candidate's contact details
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// AllBullets returns every bullet across all experiences in order
func (p *ResumeProfile) AllBullets() []Bullet {
	var bullets []Bullet
	for _, exp := range p.Experiences {
		bullets = append(bullets, exp.Bullets...)
	}
	return bullets
}

// SkillNames returns the names of all parsed skills
func (p *ResumeProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// CandidateName returns the contact name or an empty string
func (p *ResumeProfile) CandidateName() string {
	if p.Contact == nil {
		return ""
	}
	return strings.TrimSpace(p.Contact.Name)
}
