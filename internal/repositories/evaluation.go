package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hrtools/resume-shortlister/internal/models"
)

type EvaluationRepository interface {
	Upsert(eval *models.Evaluation) error
	FindByID(id uint) (*models.Evaluation, error)
	FindByResumeID(resumeID uint) (*models.Evaluation, error)
	ListByJob(jobID string, filter EvaluationFilter) ([]models.Evaluation, int64, error)
	DeleteByResumeID(resumeID uint) error
}

// EvaluationFilter narrows and orders ListByJob results. SortBy must be
// "match_score" or "evaluated_at"; the default ordering is score descending
// for ranking use cases.
type EvaluationFilter struct {
	Status    *models.EvaluationStatus
	MinScore  *float64
	MaxScore  *float64
	SortBy    string
	SortOrder string
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert inserts the evaluation, or replaces the existing row for the same
// resume. One evaluation per resume at all times.
func (r *evaluationRepository) Upsert(eval *models.Evaluation) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resume_id"}},
		UpdateAll: true,
	}).Create(eval).Error
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(id uint) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) FindByResumeID(resumeID uint) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.Where("resume_id = ?", resumeID).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation for resume %d: %w", resumeID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) ListByJob(jobID string, filter EvaluationFilter) ([]models.Evaluation, int64, error) {
	q := r.db.Model(&models.Evaluation{}).Where("job_id = ?", jobID)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.MinScore != nil {
		q = q.Where("match_score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		q = q.Where("match_score <= ?", *filter.MaxScore)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count evaluations: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy != "match_score" && sortBy != "evaluated_at" {
		sortBy = "match_score"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	var evals []models.Evaluation
	if err := q.Order(sortBy + " " + order).Find(&evals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list evaluations: %w", err)
	}

	return evals, total, nil
}

func (r *evaluationRepository) DeleteByResumeID(resumeID uint) error {
	if err := r.db.Where("resume_id = ?", resumeID).Delete(&models.Evaluation{}).Error; err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	return nil
}
