package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
	"hrtools/resume-shortlister/internal/services"
)

type ResumeHandler struct {
	jobRepo     repositories.JobRepository
	resumeRepo  repositories.ResumeRepository
	auditRepo   repositories.AuditRepository
	storage     services.StorageService
	maxFileSize int64
}

func NewResumeHandler(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	auditRepo repositories.AuditRepository,
	storage services.StorageService,
	maxFileSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		jobRepo:     jobRepo,
		resumeRepo:  resumeRepo,
		auditRepo:   auditRepo,
		storage:     storage,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /resumes/:jobID/upload. Accepts a single "file"
// field or multiple "files"; per-file failures never abort the other files.
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	job, err := h.jobRepo.FindByJobID(jobID)
	if err != nil {
		return respondError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondBadRequest(c, "failed to parse multipart form")
	}

	fileHeaders := form.File["files"]
	single := false
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
		single = len(fileHeaders) == 1
	}
	if len(fileHeaders) == 0 {
		return respondBadRequest(c, "No files uploaded. Provide 'file' or 'files' as PDF or DOCX.")
	}

	folder := job.StorageFolder
	if folder == "" {
		folder = "jobs/" + jobID
		if err := h.jobRepo.SetStorageFolder(jobID, folder); err != nil {
			log.Printf("⚠️  Failed to persist storage folder for job %s: %v\n", jobID, err)
		}
	}

	results := make([]models.UploadResult, 0, len(fileHeaders))
	succeeded := 0

	for _, fh := range fileHeaders {
		resume, err := h.uploadOne(c, jobID, folder, fh)
		if err != nil {
			if single {
				return respondError(c, err)
			}
			results = append(results, models.UploadResult{FileName: fh.Filename, Error: err.Error()})
			continue
		}
		succeeded++
		results = append(results, models.UploadResult{FileName: fh.Filename, Resume: resume})
	}

	if single {
		return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(results[0].Resume, "Resume uploaded"))
	}

	if succeeded == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.APIResponse{
			Success: false,
			Data:    results,
			Message: "All uploads failed",
		})
	}

	message := fmt.Sprintf("%d of %d resumes uploaded", succeeded, len(fileHeaders))
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(results, message))
}

func (h *ResumeHandler) uploadOne(c *fiber.Ctx, jobID, folder string, fh *multipart.FileHeader) (*models.Resume, error) {
	if fh.Size > h.maxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, max %d: %w", fh.Filename, fh.Size, h.maxFileSize, models.ErrTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	key, err := h.storage.Store(c.Context(), folder, fh.Filename, data)
	if err != nil {
		return nil, err
	}

	resume := &models.Resume{
		JobID:      jobID,
		FileName:   fh.Filename,
		StorageKey: key,
		UploadedAt: time.Now(),
	}

	if err := h.resumeRepo.Create(resume); err != nil {
		// The blob must not outlive a failed record insert.
		if delErr := h.storage.Delete(c.Context(), key); delErr != nil {
			log.Printf("⚠️  Failed to delete blob %s after insert failure: %v\n", key, delErr)
		}
		return nil, err
	}

	h.audit("resume", strconv.FormatUint(uint64(resume.ID), 10), "uploaded", map[string]interface{}{
		"job_id":    jobID,
		"file_name": fh.Filename,
	})

	return resume, nil
}

// HandleList handles GET /resumes/:jobID
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	if _, err := h.jobRepo.FindByJobID(jobID); err != nil {
		return respondError(c, err)
	}

	resumes, err := h.resumeRepo.ListByJob(jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(models.ResumeListResponse{
		Resumes: resumes,
		Total:   len(resumes),
	}, "Resumes listed"))
}

// HandleDownload handles GET /resumes/download/:id
func (h *ResumeHandler) HandleDownload(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return respondBadRequest(c, "Invalid resume ID")
	}

	resume, err := h.resumeRepo.FindByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	data, err := h.storage.Fetch(c.Context(), resume.StorageKey)
	if err != nil {
		return respondError(c, err)
	}

	contentType := "application/octet-stream"
	if format, err := services.DetectFormat(data); err == nil {
		contentType = format.ContentType()
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resume.FileName))
	return c.Send(data)
}

// HandleDelete handles DELETE /resumes/:id
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return respondBadRequest(c, "Invalid resume ID")
	}

	resume, err := h.resumeRepo.FindByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.storage.Delete(c.Context(), resume.StorageKey); err != nil {
		log.Printf("⚠️  Failed to delete blob %s: %v\n", resume.StorageKey, err)
	}

	if err := h.resumeRepo.Delete(resume.ID); err != nil {
		return respondError(c, err)
	}

	h.audit("resume", c.Params("id"), "deleted", map[string]interface{}{
		"job_id":    resume.JobID,
		"file_name": resume.FileName,
	})

	return c.JSON(models.SuccessResponse(nil, "Resume deleted"))
}

// HandleDeleteAll handles DELETE /resumes/job/:jobID/all
func (h *ResumeHandler) HandleDeleteAll(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	if _, err := h.jobRepo.FindByJobID(jobID); err != nil {
		return respondError(c, err)
	}

	resumes, err := h.resumeRepo.ListByJob(jobID)
	if err != nil {
		return respondError(c, err)
	}

	for _, resume := range resumes {
		if err := h.storage.Delete(c.Context(), resume.StorageKey); err != nil {
			log.Printf("⚠️  Failed to delete blob %s: %v\n", resume.StorageKey, err)
		}
	}

	count, err := h.resumeRepo.DeleteByJob(jobID)
	if err != nil {
		return respondError(c, err)
	}

	h.audit("job", jobID, "all_resumes_deleted", map[string]interface{}{"count": count})

	return c.JSON(models.SuccessResponse(fiber.Map{"count": count}, fmt.Sprintf("Deleted %d resumes", count)))
}

func (h *ResumeHandler) audit(entityType, entityID, action string, details map[string]interface{}) {
	if err := h.auditRepo.Record(entityType, entityID, action, details); err != nil {
		log.Printf("⚠️  Failed to record audit entry: %v\n", err)
	}
}
