package handlers

import (
	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	indexingService *service.IndexingService
	logger          *zap.Logger
}

func NewAdminHandler(indexingService *service.IndexingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		indexingService: indexingService,
		logger:          logger,
	}
}

// Reindex godoc
// @Summary Rebuild embeddings and term sets
// @Description Re-embeds patients whose latest note changed, embeds new notes and extracts terms for unprocessed notes
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ReindexResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/reindex [post]
func (h *AdminHandler) Reindex(c *fiber.Ctx) error {
	report, err := h.indexingService.Reindex(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Reindex failed")
	}
	return c.JSON(dto.NewReindexResponse(report))
}
