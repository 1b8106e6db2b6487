package handlers

import (
	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PatientHandler struct {
	patientService *service.PatientService
	cohortService  *service.CohortService
	logger         *zap.Logger
}

func NewPatientHandler(patientService *service.PatientService, cohortService *service.CohortService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		cohortService:  cohortService,
		logger:         logger,
	}
}

// GetPatient godoc
// @Summary Patient summary
// @Description Demographics and encounter history of a patient, looked up by numeric id or MRN
// @Tags patients
// @Produce json
// @Param ref path string true "Patient id or MRN"
// @Success 200 {object} dto.PatientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{ref} [get]
func (h *PatientHandler) GetPatient(c *fiber.Ctx) error {
	details, err := h.patientService.Details(c.Context(), c.Params("ref"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load patient")
	}
	return c.JSON(dto.NewPatientResponse(details))
}

// SimilarPatients godoc
// @Summary Find similar patients
// @Description Patients whose latest-note embedding is at least min_similarity to the focal patient, most similar first
// @Tags cohort
// @Produce json
// @Param ref path string true "Patient id or MRN"
// @Param min_similarity query number false "Minimum cosine similarity in [0,1]; defaults to the server configuration"
// @Param max_results query int false "Maximum number of patients, 1 to 500"
// @Success 200 {object} dto.SimilarPatientsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{ref}/similar [get]
func (h *PatientHandler) SimilarPatients(c *fiber.Ctx) error {
	id, q, err := h.cohortArgs(c)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to resolve patient")
	}

	res, err := h.cohortService.FindSimilar(c.Context(), id, q.MinSimilarity, q.MaxResults)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to find similar patients")
	}
	return c.JSON(dto.NewSimilarPatientsResponse(res))
}

// MedicationProfile godoc
// @Summary Cohort medication profile
// @Description Medications ordered for the similar-patient cohort, ranked by how many cohort patients received them
// @Tags cohort
// @Produce json
// @Param ref path string true "Patient id or MRN"
// @Param threshold query number false "Similarity threshold in [0,1]; defaults to the server configuration"
// @Success 200 {object} dto.MedicationProfileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{ref}/cohort/medications [get]
func (h *PatientHandler) MedicationProfile(c *fiber.Ctx) error {
	id, q, err := h.cohortArgs(c)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to resolve patient")
	}

	res, err := h.cohortService.MedicationProfile(c.Context(), id, q.Threshold)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build medication profile")
	}
	return c.JSON(dto.NewMedicationProfileResponse(res))
}

// LabComparison godoc
// @Summary Compare labs with the cohort
// @Description The patient's latest lab values against the mean and standard deviation of the similar-patient cohort
// @Tags cohort
// @Produce json
// @Param ref path string true "Patient id or MRN"
// @Param threshold query number false "Similarity threshold in [0,1]; defaults to the server configuration"
// @Success 200 {object} dto.LabComparisonResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /patients/{ref}/cohort/labs [get]
func (h *PatientHandler) LabComparison(c *fiber.Ctx) error {
	id, q, err := h.cohortArgs(c)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to resolve patient")
	}

	res, err := h.cohortService.LabComparison(c.Context(), id, q.Threshold)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compare labs")
	}
	return c.JSON(dto.NewLabComparisonResponse(res))
}

func (h *PatientHandler) cohortArgs(c *fiber.Ctx) (int64, dto.CohortQuery, error) {
	var q dto.CohortQuery
	if err := c.QueryParser(&q); err != nil {
		return 0, q, fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := dto.Validate(&q); err != nil {
		return 0, q, err
	}
	p, err := h.patientService.Resolve(c.Context(), c.Params("ref"))
	if err != nil {
		return 0, q, err
	}
	return p.ID, q, nil
}
