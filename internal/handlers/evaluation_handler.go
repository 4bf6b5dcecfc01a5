package handlers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
	"hrtools/resume-shortlister/internal/services"
)

type EvaluationHandler struct {
	jobRepo   repositories.JobRepository
	evalRepo  repositories.EvaluationRepository
	auditRepo repositories.AuditRepository
	evaluator services.EvaluatorService
	batch     services.BatchEvaluator
	summary   services.SummaryService
}

func NewEvaluationHandler(
	jobRepo repositories.JobRepository,
	evalRepo repositories.EvaluationRepository,
	auditRepo repositories.AuditRepository,
	evaluator services.EvaluatorService,
	batch services.BatchEvaluator,
	summary services.SummaryService,
) *EvaluationHandler {
	return &EvaluationHandler{
		jobRepo:   jobRepo,
		evalRepo:  evalRepo,
		auditRepo: auditRepo,
		evaluator: evaluator,
		batch:     batch,
		summary:   summary,
	}
}

// HandleEvaluate handles POST /evaluations/resume/:id. Idempotent: an
// already-evaluated resume returns the stored evaluation.
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	return h.evaluate(c, false)
}

// HandleReevaluate handles POST /evaluations/resume/:id/re-evaluate. The old
// evaluation row is replaced, not versioned.
func (h *EvaluationHandler) HandleReevaluate(c *fiber.Ctx) error {
	return h.evaluate(c, true)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx, force bool) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return respondBadRequest(c, "Invalid resume ID")
	}

	eval, err := h.evaluator.EvaluateResume(c.Context(), uint(id), force)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(eval, "Resume evaluated"))
}

// HandleEvaluateJob handles POST /evaluations/job/:jobID/all
func (h *EvaluationHandler) HandleEvaluateJob(c *fiber.Ctx) error {
	force := c.QueryBool("force", false)

	result, err := h.batch.EvaluateJob(c.Context(), c.Params("jobID"), force)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(result, "Batch evaluation completed"))
}

// HandleListByJob handles GET /evaluations/job/:jobID
func (h *EvaluationHandler) HandleListByJob(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	job, err := h.jobRepo.FindByJobID(jobID)
	if err != nil {
		return respondError(c, err)
	}

	filter := repositories.EvaluationFilter{
		SortBy:    c.Query("sort_by", "match_score"),
		SortOrder: c.Query("sort_order", "desc"),
	}
	if status := c.Query("status"); status != "" {
		s := models.EvaluationStatus(status)
		if !models.ValidStatus(s) {
			return respondBadRequest(c, "Invalid status filter")
		}
		filter.Status = &s
	}
	if v := c.Query("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 100 {
			return respondBadRequest(c, "min_score must be in [0,100]")
		}
		filter.MinScore = &score
	}
	if v := c.Query("max_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 100 {
			return respondBadRequest(c, "max_score must be in [0,100]")
		}
		filter.MaxScore = &score
	}

	evals, total, err := h.evalRepo.ListByJob(jobID, filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(models.EvaluationListResponse{
		Evaluations: evals,
		Total:       total,
		JobID:       jobID,
		JobTitle:    job.Title,
	}, "Evaluations listed"))
}

// HandleSummary handles GET /evaluations/job/:jobID/summary
func (h *EvaluationHandler) HandleSummary(c *fiber.Ctx) error {
	topN := c.QueryInt("top_n", 5)

	summary, err := h.summary.Summarize(c.Params("jobID"), topN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(summary, "Summary computed"))
}

// HandleGet handles GET /evaluations/:id
func (h *EvaluationHandler) HandleGet(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return respondBadRequest(c, "Invalid evaluation ID")
	}

	eval, err := h.evalRepo.FindByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(eval, "Evaluation found"))
}

// HandleDelete handles DELETE /evaluations/:id. Clears the verdict so the
// resume reads as unevaluated again; the resume itself is untouched.
func (h *EvaluationHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return respondBadRequest(c, "Invalid evaluation ID")
	}

	eval, err := h.evalRepo.FindByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.evalRepo.DeleteByResumeID(eval.ResumeID); err != nil {
		return respondError(c, err)
	}

	h.audit("evaluation", fmt.Sprintf("%d", eval.ResumeID), "deleted", map[string]interface{}{
		"job_id":      eval.JobID,
		"match_score": eval.MatchScore,
	})

	return c.JSON(models.SuccessResponse(nil, "Evaluation deleted"))
}

func (h *EvaluationHandler) audit(entityType, entityID, action string, details map[string]interface{}) {
	if err := h.auditRepo.Record(entityType, entityID, action, details); err != nil {
		log.Printf("⚠️  Failed to record audit entry: %v\n", err)
	}
}
