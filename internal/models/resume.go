package models

import (
	"time"
)

// Resume is one uploaded candidate document. StorageKey is the blob store
// reference; the same stored file cannot be registered twice under one job.
type Resume struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	JobID         string    `gorm:"type:char(5);not null;uniqueIndex:idx_resumes_job_storage_key,priority:1" json:"job_id"`
	FileName      string    `gorm:"type:text;not null" json:"file_name"`
	StorageKey    string    `gorm:"type:text;not null;uniqueIndex:idx_resumes_job_storage_key,priority:2" json:"storage_key"`
	CandidateName *string   `gorm:"type:text" json:"candidate_name,omitempty"`
	UploadedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"uploaded_at"`

	// Relations
	Evaluation *Evaluation `gorm:"foreignKey:ResumeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Resume) TableName() string {
	return "resumes"
}
