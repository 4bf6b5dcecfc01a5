package models

import (
	"time"
)

type Job struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	JobID         string    `gorm:"type:char(5);uniqueIndex;not null" json:"job_id"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	StorageFolder string    `gorm:"type:text" json:"storage_folder,omitempty"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Resumes []Resume `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}
