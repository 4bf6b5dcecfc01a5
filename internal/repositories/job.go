package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hrtools/resume-shortlister/internal/models"
)

type JobRepository interface {
	Create(job *models.Job) error
	FindByJobID(jobID string) (*models.Job, error)
	ExistsByJobID(jobID string) (bool, error)
	List(query string, page, pageSize int) ([]models.Job, int64, error)
	Update(job *models.Job) error
	SetStorageFolder(jobID, folder string) error
	Delete(jobID string) error
	CheckIntegrity() (*models.IntegrityReport, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.Job) error {
	if err := r.db.Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("job %s: %w", job.JobID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByJobID(jobID string) (*models.Job, error) {
	var job models.Job
	if err := r.db.Where("job_id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) ExistsByJobID(jobID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Job{}).Where("job_id = ?", jobID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check job id: %w", err)
	}
	return count > 0, nil
}

func (r *jobRepository) List(query string, page, pageSize int) ([]models.Job, int64, error) {
	var jobs []models.Job
	var total int64

	q := r.db.Model(&models.Job{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR job_id ILIKE ?", pattern, pattern)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	offset := (page - 1) * pageSize
	err := q.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

func (r *jobRepository) Update(job *models.Job) error {
	result := r.db.Model(&models.Job{}).
		Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{
			"title":       job.Title,
			"description": job.Description,
			"updated_at":  job.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", job.JobID, models.ErrNotFound)
	}
	return nil
}

func (r *jobRepository) SetStorageFolder(jobID, folder string) error {
	result := r.db.Model(&models.Job{}).
		Where("job_id = ?", jobID).
		Update("storage_folder", folder)

	if result.Error != nil {
		return fmt.Errorf("failed to set storage folder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
	}
	return nil
}

// Delete removes the job and cascades through resumes to evaluations in a
// single transaction so a crash mid-delete never leaves orphaned rows.
func (r *jobRepository) Delete(jobID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&models.Evaluation{}).Error; err != nil {
			return fmt.Errorf("failed to delete evaluations: %w", err)
		}
		if err := tx.Where("job_id = ?", jobID).Delete(&models.Resume{}).Error; err != nil {
			return fmt.Errorf("failed to delete resumes: %w", err)
		}

		result := tx.Where("job_id = ?", jobID).Delete(&models.Job{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
		}
		return nil
	})
}

// CheckIntegrity counts resumes whose job is gone and evaluations whose
// resume is gone. Orphans indicate an interrupted cascade and require
// operator intervention; they are reported, never repaired here.
func (r *jobRepository) CheckIntegrity() (*models.IntegrityReport, error) {
	var report models.IntegrityReport

	err := r.db.Model(&models.Resume{}).
		Where("job_id NOT IN (?)", r.db.Model(&models.Job{}).Select("job_id")).
		Count(&report.OrphanResumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orphan resumes: %w", err)
	}

	err = r.db.Model(&models.Evaluation{}).
		Where("resume_id NOT IN (?)", r.db.Model(&models.Resume{}).Select("id")).
		Count(&report.OrphanEvaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orphan evaluations: %w", err)
	}

	report.Healthy = report.OrphanResumes == 0 && report.OrphanEvaluations == 0
	return &report, nil
}
