// Package matching scores every job requirement against the evidence in a résumé.
package matching

import "fmt"

// Thresholds holds every tunable score used by the matching strategies.
// All values are on the 0-100 scale.
type Thresholds struct {
	// Classification
	TechnicalMatch    int `json:"technical_match" mapstructure:"technical_match" validate:"gte=0,lte=100"`
	SoftMatch         int `json:"soft_match" mapstructure:"soft_match" validate:"gte=0,lte=100"`
	DomainMismatchCap int `json:"domain_mismatch_cap" mapstructure:"domain_mismatch_cap" validate:"gte=0,lte=100"`

	// Skill strategy
	SkillExact       int `json:"skill_exact" mapstructure:"skill_exact" validate:"gte=0,lte=100"`
	SkillSynonym     int `json:"skill_synonym" mapstructure:"skill_synonym" validate:"gte=0,lte=100"`
	SkillOverlapBase int `json:"skill_overlap_base" mapstructure:"skill_overlap_base" validate:"gte=0,lte=100"`
	SkillOverlapStep int `json:"skill_overlap_step" mapstructure:"skill_overlap_step" validate:"gte=0,lte=100"`
	SkillOverlapMax  int `json:"skill_overlap_max" mapstructure:"skill_overlap_max" validate:"gte=0,lte=100"`

	// Bullet strategy
	BulletMax           int `json:"bullet_max" mapstructure:"bullet_max" validate:"gte=0,lte=100"`
	BulletSynonymBonus  int `json:"bullet_synonym_bonus" mapstructure:"bullet_synonym_bonus" validate:"gte=0,lte=100"`
	BulletOverlapWeight int `json:"bullet_overlap_weight" mapstructure:"bullet_overlap_weight" validate:"gte=0,lte=100"`
	BulletMinOverlap    int `json:"bullet_min_overlap" mapstructure:"bullet_min_overlap" validate:"gte=0"`
	BulletKeywordHit    int `json:"bullet_keyword_hit" mapstructure:"bullet_keyword_hit" validate:"gte=0,lte=100"`
	BulletKeywordCap    int `json:"bullet_keyword_cap" mapstructure:"bullet_keyword_cap" validate:"gte=0,lte=100"`
	BulletMetricBonus   int `json:"bullet_metric_bonus" mapstructure:"bullet_metric_bonus" validate:"gte=0,lte=100"`

	// Title strategy
	TitleGroup          int `json:"title_group" mapstructure:"title_group" validate:"gte=0,lte=100"`
	TitleGroupSeniority int `json:"title_group_seniority" mapstructure:"title_group_seniority" validate:"gte=0,lte=100"`
	TitleSeniorityOnly  int `json:"title_seniority_only" mapstructure:"title_seniority_only" validate:"gte=0,lte=100"`

	// Education strategy
	EducationLevel     int `json:"education_level" mapstructure:"education_level" validate:"gte=0,lte=100"`
	EducationField     int `json:"education_field" mapstructure:"education_field" validate:"gte=0,lte=100"`
	EducationRelated   int `json:"education_related" mapstructure:"education_related" validate:"gte=0,lte=100"`
	EducationAnyDegree int `json:"education_any_degree" mapstructure:"education_any_degree" validate:"gte=0,lte=100"`

	// Experience-years strategy
	ExperienceFull       int     `json:"experience_full" mapstructure:"experience_full" validate:"gte=0,lte=100"`
	ExperienceHigh       int     `json:"experience_high" mapstructure:"experience_high" validate:"gte=0,lte=100"`
	ExperienceMid        int     `json:"experience_mid" mapstructure:"experience_mid" validate:"gte=0,lte=100"`
	ExperienceLow        int     `json:"experience_low" mapstructure:"experience_low" validate:"gte=0,lte=100"`
	ExperienceNone       int     `json:"experience_none" mapstructure:"experience_none" validate:"gte=0,lte=100"`
	SeniorFloorYears     float64 `json:"senior_floor_years" mapstructure:"senior_floor_years" validate:"gte=0"`
	SkillMissingYearsCap int     `json:"skill_missing_years_cap" mapstructure:"skill_missing_years_cap" validate:"gte=0,lte=100"`

	// Raw-text fallback
	RawText int `json:"raw_text" mapstructure:"raw_text" validate:"gte=0,lte=100"`
}

// DefaultThresholds returns the canonical tuning.
// Technical requirements need 70 to count as matched, soft ones 50, and any requirement
// whose domain does not overlap the résumé is held to 30.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TechnicalMatch:    70,
		SoftMatch:         50,
		DomainMismatchCap: 30,

		SkillExact:       95,
		SkillSynonym:     85,
		SkillOverlapBase: 40,
		SkillOverlapStep: 10,
		SkillOverlapMax:  70,

		BulletMax:           80,
		BulletSynonymBonus:  30,
		BulletOverlapWeight: 50,
		BulletMinOverlap:    2,
		BulletKeywordHit:    5,
		BulletKeywordCap:    15,
		BulletMetricBonus:   5,

		TitleGroup:          75,
		TitleGroupSeniority: 80,
		TitleSeniorityOnly:  45,

		EducationLevel:     95,
		EducationField:     80,
		EducationRelated:   65,
		EducationAnyDegree: 60,

		ExperienceFull:       90,
		ExperienceHigh:       75,
		ExperienceMid:        60,
		ExperienceLow:        45,
		ExperienceNone:       10,
		SeniorFloorYears:     5,
		SkillMissingYearsCap: 45,

		RawText: 60,
	}
}

// Validate checks the relationships struct tags cannot express
func (t Thresholds) Validate() error {
	if t.BulletMax >= t.SkillExact {
		return fmt.Errorf("bullet_max %d must stay below skill_exact %d", t.BulletMax, t.SkillExact)
	}
	return nil
}
