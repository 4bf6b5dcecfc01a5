package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hrtools/resume-shortlister/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByID(id uint) (*models.Resume, error)
	ListByJob(jobID string) ([]models.Resume, error)
	UpdateCandidateName(id uint, name string) error
	Delete(id uint) error
	DeleteByJob(jobID string) (int64, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("resume %s for job %s: %w", resume.FileName, resume.JobID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

func (r *resumeRepository) FindByID(id uint) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

func (r *resumeRepository) ListByJob(jobID string) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.Where("job_id = ?", jobID).Order("uploaded_at DESC").Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return resumes, nil
}

func (r *resumeRepository) UpdateCandidateName(id uint, name string) error {
	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Update("candidate_name", name)

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate name: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Delete removes the resume and its evaluation together.
func (r *resumeRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", id).Delete(&models.Evaluation{}).Error; err != nil {
			return fmt.Errorf("failed to delete evaluation: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Resume{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete resume: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

func (r *resumeRepository) DeleteByJob(jobID string) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&models.Evaluation{}).Error; err != nil {
			return fmt.Errorf("failed to delete evaluations: %w", err)
		}

		result := tx.Where("job_id = ?", jobID).Delete(&models.Resume{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete resumes: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}
