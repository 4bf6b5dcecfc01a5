package services

import (
	"math"
	"sort"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

type TopCandidate struct {
	ResumeID      uint                    `json:"resume_id"`
	CandidateName string                  `json:"candidate_name"`
	FileName      string                  `json:"file_name"`
	MatchScore    float64                 `json:"match_score"`
	Status        models.EvaluationStatus `json:"status"`
}

type EvaluationSummary struct {
	JobID         string         `json:"job_id"`
	JobTitle      string         `json:"job_title"`
	TotalResumes  int            `json:"total_resumes"`
	Evaluated     int            `json:"evaluated"`
	OKToProceed   int            `json:"ok_to_proceed"`
	NotOK         int            `json:"not_ok"`
	PendingStatus int            `json:"pending_status"`
	Unevaluated   int            `json:"unevaluated"`
	AverageScore  float64        `json:"average_score"`
	MedianScore   float64        `json:"median_score"`
	TopCandidates []TopCandidate `json:"top_candidates"`
}

// SummaryService aggregates evaluation statistics for one job.
type SummaryService interface {
	Summarize(jobID string, topN int) (*EvaluationSummary, error)
}

type summaryService struct {
	jobRepo    repositories.JobRepository
	resumeRepo repositories.ResumeRepository
	evalRepo   repositories.EvaluationRepository
}

func NewSummaryService(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	evalRepo repositories.EvaluationRepository,
) SummaryService {
	return &summaryService{
		jobRepo:    jobRepo,
		resumeRepo: resumeRepo,
		evalRepo:   evalRepo,
	}
}

// Summarize implements SummaryService. Top candidates are ordered by score
// descending; ties go to the earlier upload.
func (s *summaryService) Summarize(jobID string, topN int) (*EvaluationSummary, error) {
	job, err := s.jobRepo.FindByJobID(jobID)
	if err != nil {
		return nil, err
	}

	resumes, err := s.resumeRepo.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	evals, _, err := s.evalRepo.ListByJob(jobID, repositories.EvaluationFilter{})
	if err != nil {
		return nil, err
	}

	summary := &EvaluationSummary{
		JobID:        jobID,
		JobTitle:     job.Title,
		TotalResumes: len(resumes),
		Evaluated:    len(evals),
		Unevaluated:  len(resumes) - len(evals),
	}

	var scores []float64
	for _, eval := range evals {
		scores = append(scores, eval.MatchScore)
		switch eval.Status {
		case models.StatusOKToProceed:
			summary.OKToProceed++
		case models.StatusNotOK:
			summary.NotOK++
		case models.StatusPending:
			summary.PendingStatus++
		}
	}

	summary.AverageScore = round2(average(scores))
	summary.MedianScore = round2(median(scores))
	summary.TopCandidates = s.topCandidates(resumes, evals, topN)

	return summary, nil
}

func (s *summaryService) topCandidates(resumes []models.Resume, evals []models.Evaluation, topN int) []TopCandidate {
	byID := make(map[uint]models.Resume, len(resumes))
	for _, resume := range resumes {
		byID[resume.ID] = resume
	}

	sorted := make([]models.Evaluation, len(evals))
	copy(sorted, evals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MatchScore != sorted[j].MatchScore {
			return sorted[i].MatchScore > sorted[j].MatchScore
		}
		return byID[sorted[i].ResumeID].UploadedAt.Before(byID[sorted[j].ResumeID].UploadedAt)
	})

	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	candidates := make([]TopCandidate, 0, len(sorted))
	for _, eval := range sorted {
		resume := byID[eval.ResumeID]
		name := resume.FileName
		if resume.CandidateName != nil && *resume.CandidateName != "" {
			name = *resume.CandidateName
		}
		candidates = append(candidates, TopCandidate{
			ResumeID:      eval.ResumeID,
			CandidateName: name,
			FileName:      resume.FileName,
			MatchScore:    eval.MatchScore,
			Status:        eval.Status,
		})
	}
	return candidates
}

func average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

func median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
