package models

import (
	"time"
)

// AuditLog rows are append-only: written on every create/update/delete of
// jobs, resumes and evaluations, never mutated afterwards.
type AuditLog struct {
	ID         uint                   `gorm:"primaryKey" json:"id"`
	EntityType string                 `gorm:"type:varchar(20);not null;index" json:"entity_type"`
	EntityID   string                 `gorm:"type:text;not null" json:"entity_id"`
	Action     string                 `gorm:"type:varchar(40);not null" json:"action"`
	Details    map[string]interface{} `gorm:"serializer:json" json:"details"`
	CreatedAt  time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
