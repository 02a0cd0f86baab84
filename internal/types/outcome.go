package types

import "time"

// DetectionInfo is the authorship-detector verdict on a cover letter
type DetectionInfo struct {
	Score          int      `json:"score"`
	IsHumanPassing bool     `json:"is_human_passing"`
	Feedback       string   `json:"feedback"`
	Sentences      []string `json:"sentences,omitempty"`
	Regenerated    bool     `json:"regenerated"`
	Fallback       bool     `json:"fallback,omitempty"`
}

// TailoringOutcome is the full result of one tailoring run
type TailoringOutcome struct {
	ID                string          `json:"id"`
	ReformattedResume string          `json:"reformatted_resume"`
	CoverLetter       string          `json:"cover_letter"`
	MatchScore        int             `json:"match_score"`
	MatchedItems      []MatchRecord   `json:"matched_items"`
	MissingItems      []MatchRecord   `json:"missing_items"`
	ProcessingTimeMs  int64           `json:"processing_time_ms"`
	Detection         *DetectionInfo  `json:"detection_info,omitempty"`
	Requirements      *RequirementSet `json:"requirements,omitempty"`
	Quick             bool            `json:"quick"`
	CreatedAt         time.Time       `json:"created_at"`
}
