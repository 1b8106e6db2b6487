package handlers

import (
	"errors"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var validationErr *dto.ValidationError
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrNoteNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrThresholdRequired),
		errors.Is(err, service.ErrInvalidPatientRef),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrEmptyText),
		cohort.IsThresholdError(err),
		errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrReindexRunning):
		return fiber.StatusConflict
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged and
// replaced by msg so that database details do not leak to clients.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, msg string) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
		return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}
