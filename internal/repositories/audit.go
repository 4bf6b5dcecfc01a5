package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"hrtools/resume-shortlister/internal/models"
)

// AuditRepository appends to the audit log. There is deliberately no update
// or delete: the log is the traceability record for every entity mutation.
type AuditRepository interface {
	Record(entityType, entityID, action string, details map[string]interface{}) error
	ListByEntity(entityType, entityID string) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(entityType, entityID, action string, details map[string]interface{}) error {
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByEntity(entityType, entityID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
