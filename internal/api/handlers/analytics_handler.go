package handlers

import (
	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// Overview godoc
// @Summary Dataset overview
// @Tags analytics
// @Produce json
// @Success 200 {object} models.Overview
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	o, err := h.analyticsService.Overview(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load overview")
	}
	return c.JSON(o)
}

// Departments godoc
// @Summary Patients, encounters and notes per department
// @Tags analytics
// @Produce json
// @Success 200 {array} models.DepartmentStat
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) Departments(c *fiber.Ctx) error {
	stats, err := h.analyticsService.Departments(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load departments")
	}
	return c.JSON(stats)
}

// Diagnoses godoc
// @Summary Most frequent primary diagnoses
// @Tags analytics
// @Produce json
// @Success 200 {array} models.DiagnosisCount
// @Router /analytics/diagnoses [get]
func (h *AnalyticsHandler) Diagnoses(c *fiber.Ctx) error {
	dx, err := h.analyticsService.TopDiagnoses(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load diagnoses")
	}
	return c.JSON(dx)
}

// Ages godoc
// @Summary Patient age distribution
// @Tags analytics
// @Produce json
// @Success 200 {array} models.AgeBucket
// @Router /analytics/ages [get]
func (h *AnalyticsHandler) Ages(c *fiber.Ctx) error {
	ages, err := h.analyticsService.AgeDistribution(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load age distribution")
	}
	return c.JSON(ages)
}

// Activity godoc
// @Summary Notes written per day
// @Tags analytics
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {array} models.DailyActivity
// @Failure 400 {object} dto.ErrorResponse
// @Router /analytics/activity [get]
func (h *AnalyticsHandler) Activity(c *fiber.Ctx) error {
	var q dto.ActivityQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := dto.Validate(&q); err != nil {
		return respondError(c, h.logger, err, "Invalid query parameters")
	}

	activity, err := h.analyticsService.NoteActivity(c.Context(), q.Days)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load note activity")
	}
	return c.JSON(activity)
}
