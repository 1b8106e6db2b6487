package handlers

import (
	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

func NewSearchHandler(searchService *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// SearchNotes godoc
// @Summary Semantic search over clinical notes
// @Description Embeds the query and returns the most similar notes, optionally with an AI summary of the top hits
// @Tags notes
// @Produce json
// @Param q query string true "Search query"
// @Param note_type query string false "Note type filter, e.g. Progress Note; All for no filter"
// @Param limit query int false "Maximum results" default(10)
// @Param summary query bool false "Generate an AI summary of the top notes"
// @Success 200 {object} dto.SearchNotesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /notes/search [get]
func (h *SearchHandler) SearchNotes(c *fiber.Ctx) error {
	var req dto.SearchNotesRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := dto.Validate(&req); err != nil {
		return respondError(c, h.logger, err, "Invalid query parameters")
	}

	noteType, err := service.ParseNoteType(req.NoteType)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.searchService.SearchNotes(c.Context(), req.Query, noteType, req.Limit)
	if err != nil {
		return respondError(c, h.logger, err, "Search failed")
	}
	if req.Summary {
		res.Summary = h.searchService.Summarize(c.Context(), res.Query, res.Hits)
	}

	return c.JSON(dto.NewSearchNotesResponse(res))
}
