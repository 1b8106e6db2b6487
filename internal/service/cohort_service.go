package service

import (
	"context"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/metrics"
	"clinical-intel/pkg/config"

	"go.uber.org/zap"
)

// CohortService resolves thresholds, checks the focal patient exists and
// instruments the cohort engine.
type CohortService struct {
	engine   *cohort.Engine
	patients *PatientService
	config   *config.CohortConfig
	logger   *zap.Logger
}

func NewCohortService(engine *cohort.Engine, patients *PatientService, cfg *config.CohortConfig, logger *zap.Logger) *CohortService {
	return &CohortService{
		engine:   engine,
		patients: patients,
		config:   cfg,
		logger:   logger,
	}
}

// threshold picks the request value, else the configured one. There is no
// built-in default.
func threshold(requested, configured *float64) (float64, error) {
	if requested != nil {
		return *requested, nil
	}
	if configured != nil {
		return *configured, nil
	}
	return 0, ErrThresholdRequired
}

func (s *CohortService) FindSimilar(ctx context.Context, patientID int64, minSimilarity *float64, maxResults *int) (*cohort.SimilarResult, error) {
	minSim, err := threshold(minSimilarity, s.config.SimilarMinSimilarity)
	if err != nil {
		return nil, err
	}
	limit := s.config.SimilarMaxResults
	if maxResults != nil {
		limit = *maxResults
	}
	if err := cohort.ValidateSimilarArgs(minSim, limit); err != nil {
		return nil, err
	}
	if err := s.patients.Exists(ctx, patientID); err != nil {
		return nil, err
	}

	done := metrics.TimeCohortOp("find_similar")
	res, err := s.engine.FindSimilarPatients(ctx, patientID, minSim, limit)
	done(err == nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Similar patients found",
		zap.Int64("patient_id", patientID),
		zap.Float64("min_similarity", minSim),
		zap.Int("results", len(res.Patients)),
		zap.Int("issues", len(res.Issues)),
	)
	return res, nil
}

func (s *CohortService) MedicationProfile(ctx context.Context, patientID int64, similarity *float64) (*cohort.MedicationProfile, error) {
	t, err := threshold(similarity, s.config.MedicationThreshold)
	if err != nil {
		return nil, err
	}
	if err := cohort.ValidateThreshold("threshold", t); err != nil {
		return nil, err
	}
	if err := s.patients.Exists(ctx, patientID); err != nil {
		return nil, err
	}

	done := metrics.TimeCohortOp("medication_profile")
	res, err := s.engine.MedicationProfile(ctx, patientID, t)
	done(err == nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cohort medication profile built",
		zap.Int64("patient_id", patientID),
		zap.Float64("threshold", t),
		zap.Int("cohort_size", res.CohortSize),
		zap.Int("medications", len(res.Medications)),
	)
	return res, nil
}

func (s *CohortService) LabComparison(ctx context.Context, patientID int64, similarity *float64) (*cohort.LabComparison, error) {
	t, err := threshold(similarity, s.config.LabThreshold)
	if err != nil {
		return nil, err
	}
	if err := cohort.ValidateThreshold("threshold", t); err != nil {
		return nil, err
	}
	if err := s.patients.Exists(ctx, patientID); err != nil {
		return nil, err
	}

	done := metrics.TimeCohortOp("lab_comparison")
	res, err := s.engine.LabComparison(ctx, patientID, t)
	done(err == nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cohort lab comparison built",
		zap.Int64("patient_id", patientID),
		zap.Float64("threshold", t),
		zap.Int("cohort_size", res.CohortSize),
		zap.Int("labs", len(res.Labs)),
		zap.Int("omitted", len(res.Omitted)),
	)
	return res, nil
}
