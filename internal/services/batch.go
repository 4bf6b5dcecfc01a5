package services

import (
	"context"
	"log"
	"sync"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

// ResumeResult is the per-resume outcome of a batch run. Exactly one of
// Evaluation or Error is set.
type ResumeResult struct {
	ResumeID   uint               `json:"resume_id"`
	FileName   string             `json:"file_name"`
	Evaluation *models.Evaluation `json:"evaluation,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type BatchResult struct {
	JobID     string         `json:"job_id"`
	Results   []ResumeResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// BatchEvaluator evaluates every resume of one job with a bounded worker
// pool. One resume's failure never aborts the batch.
type BatchEvaluator interface {
	EvaluateJob(ctx context.Context, jobID string, force bool) (*BatchResult, error)
}

type batchEvaluator struct {
	jobRepo     repositories.JobRepository
	resumeRepo  repositories.ResumeRepository
	evaluator   EvaluatorService
	concurrency int
}

func NewBatchEvaluator(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	evaluator EvaluatorService,
	concurrency int,
) BatchEvaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &batchEvaluator{
		jobRepo:     jobRepo,
		resumeRepo:  resumeRepo,
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// EvaluateJob implements BatchEvaluator. Cancelling ctx stops new resumes
// from starting; in-flight evaluations run to completion on a detached
// context so no evaluation is left half-written.
func (b *batchEvaluator) EvaluateJob(ctx context.Context, jobID string, force bool) (*BatchResult, error) {
	if _, err := b.jobRepo.FindByJobID(jobID); err != nil {
		return nil, err
	}

	resumes, err := b.resumeRepo.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 Batch evaluating %d resumes for job %s with %d workers\n", len(resumes), jobID, b.concurrency)

	tasks := make(chan models.Resume)
	results := make(chan ResumeResult, len(resumes))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for resume := range tasks {
				results <- b.evaluateOne(ctx, resume, force)
			}
		}()
	}

	for _, resume := range resumes {
		if ctx.Err() != nil {
			results <- ResumeResult{
				ResumeID: resume.ID,
				FileName: resume.FileName,
				Error:    "batch cancelled before evaluation",
			}
			continue
		}
		select {
		case <-ctx.Done():
			results <- ResumeResult{
				ResumeID: resume.ID,
				FileName: resume.FileName,
				Error:    "batch cancelled before evaluation",
			}
		case tasks <- resume:
		}
	}
	close(tasks)
	wg.Wait()
	close(results)

	batch := &BatchResult{JobID: jobID}
	for result := range results {
		batch.Results = append(batch.Results, result)
		if result.Error == "" {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	log.Printf("✅ Batch for job %s done: %d succeeded, %d failed\n", jobID, batch.Succeeded, batch.Failed)
	return batch, nil
}

func (b *batchEvaluator) evaluateOne(ctx context.Context, resume models.Resume, force bool) ResumeResult {
	// Once started, an evaluation finishes even if the batch is cancelled.
	eval, err := b.evaluator.EvaluateResume(context.WithoutCancel(ctx), resume.ID, force)
	if err != nil {
		log.Printf("❌ Failed to evaluate resume %d: %v\n", resume.ID, err)
		return ResumeResult{ResumeID: resume.ID, FileName: resume.FileName, Error: err.Error()}
	}
	return ResumeResult{ResumeID: resume.ID, FileName: resume.FileName, Evaluation: eval}
}
