package models

import (
	"time"
)

type EvaluationStatus string

const (
	StatusOKToProceed EvaluationStatus = "OK to Proceed"
	StatusNotOK       EvaluationStatus = "Not OK"
	StatusPending     EvaluationStatus = "Pending"
)

// ValidStatus reports whether s is one of the three literal statuses.
func ValidStatus(s EvaluationStatus) bool {
	switch s {
	case StatusOKToProceed, StatusNotOK, StatusPending:
		return true
	}
	return false
}

// Evaluation is the stored verdict for one resume. ResumeID is unique:
// re-evaluating replaces the row rather than appending a new one.
type Evaluation struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	ResumeID        uint             `gorm:"uniqueIndex;not null" json:"resume_id"`
	JobID           string           `gorm:"type:char(5);not null;index" json:"job_id"`
	MatchScore      float64          `gorm:"type:decimal(5,2);not null" json:"match_score"`
	Status          EvaluationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Justification   string           `gorm:"type:text" json:"justification"`
	SkillsExtracted []string         `gorm:"serializer:json" json:"skills_extracted"`
	SkillsMatched   []string         `gorm:"serializer:json" json:"skills_matched"`
	ExperienceYears *float64         `json:"experience_years,omitempty"`
	Education       *string          `gorm:"type:text" json:"education,omitempty"`
	PreviousRoles   []string         `gorm:"serializer:json" json:"previous_roles"`
	EvaluatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"evaluated_at"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
