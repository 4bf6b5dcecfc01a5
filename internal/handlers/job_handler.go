package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
	"hrtools/resume-shortlister/internal/services"
)

type JobHandler struct {
	jobRepo    repositories.JobRepository
	resumeRepo repositories.ResumeRepository
	auditRepo  repositories.AuditRepository
	generator  services.JobIDGenerator
	storage    services.StorageService
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	auditRepo repositories.AuditRepository,
	generator services.JobIDGenerator,
	storage services.StorageService,
) *JobHandler {
	return &JobHandler{
		jobRepo:    jobRepo,
		resumeRepo: resumeRepo,
		auditRepo:  auditRepo,
		generator:  generator,
		storage:    storage,
	}
}

// HandleCreate handles POST /jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request payload")
	}

	if req.Title == "" || req.Description == "" {
		return respondBadRequest(c, "title and description are required")
	}
	if len(req.Title) > 200 {
		return respondBadRequest(c, "title must be at most 200 characters")
	}

	jobID, err := h.generator.Generate()
	if err != nil {
		return respondError(c, err)
	}

	job := &models.Job{
		JobID:       jobID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return respondError(c, err)
	}

	h.audit("job", job.JobID, "created", map[string]interface{}{"title": job.Title})

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(job, "Job created"))
}

// HandleList handles GET /jobs
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	query := c.Query("query")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	jobs, total, err := h.jobRepo.List(query, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(models.JobListResponse{
		Jobs:     jobs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, "Jobs listed"))
}

// HandleGet handles GET /jobs/:jobID
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	job, err := h.jobRepo.FindByJobID(c.Params("jobID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(job, "Job found"))
}

// HandleUpdate handles PUT /jobs/:jobID. The JOBID itself is immutable.
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	var req models.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request payload")
	}

	job, err := h.jobRepo.FindByJobID(jobID)
	if err != nil {
		return respondError(c, err)
	}

	updated := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > 200 {
			return respondBadRequest(c, "title must be 1-200 characters")
		}
		job.Title = *req.Title
		updated["title"] = *req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			return respondBadRequest(c, "description must not be empty")
		}
		job.Description = *req.Description
		updated["description"] = *req.Description
	}

	if len(updated) == 0 {
		return c.JSON(models.SuccessResponse(job, "Nothing to update"))
	}

	job.UpdatedAt = time.Now()
	if err := h.jobRepo.Update(job); err != nil {
		return respondError(c, err)
	}

	h.audit("job", jobID, "updated", updated)

	return c.JSON(models.SuccessResponse(job, "Job updated"))
}

// HandleDelete handles DELETE /jobs/:jobID. The database cascade runs in one
// transaction; stored blobs are removed afterwards, best effort.
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	job, err := h.jobRepo.FindByJobID(jobID)
	if err != nil {
		return respondError(c, err)
	}

	resumes, err := h.resumeRepo.ListByJob(jobID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.jobRepo.Delete(jobID); err != nil {
		return respondError(c, err)
	}

	for _, resume := range resumes {
		if err := h.storage.Delete(context.Background(), resume.StorageKey); err != nil {
			log.Printf("⚠️  Failed to delete blob %s: %v\n", resume.StorageKey, err)
		}
	}

	h.audit("job", jobID, "deleted", map[string]interface{}{
		"title":   job.Title,
		"resumes": len(resumes),
	})

	return c.JSON(models.SuccessResponse(fiber.Map{"deleted_resumes": len(resumes)}, "Job deleted"))
}

// HandleIntegrity handles GET /jobs/:jobID/integrity
func (h *JobHandler) HandleIntegrity(c *fiber.Ctx) error {
	report, err := h.jobRepo.CheckIntegrity()
	if err != nil {
		return respondError(c, err)
	}

	message := "No orphaned records"
	if !report.Healthy {
		message = "Orphaned records detected; operator intervention required"
	}
	return c.JSON(models.SuccessResponse(report, message))
}

func (h *JobHandler) audit(entityType, entityID, action string, details map[string]interface{}) {
	if err := h.auditRepo.Record(entityType, entityID, action, details); err != nil {
		log.Printf("⚠️  Failed to record audit entry: %v\n", err)
	}
}
