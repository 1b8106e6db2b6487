package handlers

import (
	"strconv"

	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExtractionHandler struct {
	extractionService *service.ExtractionService
	logger            *zap.Logger
}

func NewExtractionHandler(extractionService *service.ExtractionService, logger *zap.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		extractionService: extractionService,
		logger:            logger,
	}
}

// ExtractText godoc
// @Summary Extract medical terms from text
// @Description Finds medications, symptoms, labs, oncology and diagnosis terms in free text. Nothing is stored.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body dto.ExtractTextRequest true "Text to analyze"
// @Success 200 {object} dto.ExtractionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /extract [post]
func (h *ExtractionHandler) ExtractText(c *fiber.Ctx) error {
	var req dto.ExtractTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return respondError(c, h.logger, err, "Invalid request body")
	}

	res, err := h.extractionService.ExtractText(c.Context(), req.Text)
	if err != nil {
		return respondError(c, h.logger, err, "Extraction failed")
	}
	return c.JSON(dto.NewExtractionResponse(res))
}

// ExtractNote godoc
// @Summary Extract and store a note's terms
// @Description Runs extraction on a stored note and replaces its persisted term set
// @Tags extraction
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} dto.ExtractionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /notes/{id}/extract [post]
func (h *ExtractionHandler) ExtractNote(c *fiber.Ctx) error {
	noteID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || noteID <= 0 {
		return badRequest(c, "Invalid note ID")
	}

	res, err := h.extractionService.ExtractNote(c.Context(), noteID)
	if err != nil {
		return respondError(c, h.logger, err, "Extraction failed")
	}
	return c.JSON(dto.NewExtractionResponse(res))
}
