package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

type AuditHandler struct {
	auditRepo repositories.AuditRepository
}

func NewAuditHandler(auditRepo repositories.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// HandleList handles GET /audit/:entityType/:entityID. Entries come back in
// insertion order; the log is append-only so this is also chronological.
func (h *AuditHandler) HandleList(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	switch entityType {
	case "job", "resume", "evaluation":
	default:
		return respondBadRequest(c, "Invalid entity type")
	}

	entries, err := h.auditRepo.ListByEntity(entityType, c.Params("entityID"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(entries, "Audit log listed"))
}
