package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hrtools/resume-shortlister/internal/models"
)

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrUnsupportedFormat), errors.Is(err, models.ErrTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnreadableDocument):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, models.ErrStorageUnavailable), errors.Is(err, models.ErrEvaluatorUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, models.ErrEvaluationFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
}

func respondBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(message))
}
