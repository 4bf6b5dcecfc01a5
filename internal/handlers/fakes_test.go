package handlers

import (
	"fmt"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

// stubEvalRepo covers the lookup and delete paths; the embedded interface
// panics on anything else, which no handler under test should reach.
type stubEvalRepo struct {
	repositories.EvaluationRepository
	evals   map[uint]*models.Evaluation
	deleted []uint
}

func (s *stubEvalRepo) FindByID(id uint) (*models.Evaluation, error) {
	eval, ok := s.evals[id]
	if !ok {
		return nil, fmt.Errorf("evaluation %d: %w", id, models.ErrNotFound)
	}
	return eval, nil
}

func (s *stubEvalRepo) DeleteByResumeID(resumeID uint) error {
	s.deleted = append(s.deleted, resumeID)
	return nil
}

type stubAuditRepo struct {
	entries []models.AuditLog
}

func (s *stubAuditRepo) Record(entityType, entityID, action string, details map[string]interface{}) error {
	s.entries = append(s.entries, models.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	})
	return nil
}

func (s *stubAuditRepo) ListByEntity(entityType, entityID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	for _, entry := range s.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
