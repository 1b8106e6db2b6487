// Package cohort finds patients similar to a focal patient and summarises
// what their cohort was treated with and how their labs compare.
package cohort

import (
	"context"
	"errors"
	"fmt"
	"math"

	"clinical-intel/internal/extraction"
	"clinical-intel/internal/metrics"
	"clinical-intel/internal/models"
	"clinical-intel/internal/vectorindex"

	"go.uber.org/zap"
)

// MinLabContributors is the smallest cohort that yields a lab comparison.
const MinLabContributors = 3

// MinMedicationPatients is the smallest number of cohort patients on a
// medication for it to be reported.
const MinMedicationPatients = 2

// MaxSimilarResults caps max_results of FindSimilarPatients.
const MaxSimilarResults = 500

// Demographics is the patient header attached to a similarity row.
type Demographics struct {
	models.Patient
	PrimaryDiagnosis string
}

// Store is the read-only clinical data the engine aggregates over.
type Store interface {
	Demographics(ctx context.Context, patientIDs []int64) (map[int64]Demographics, error)
	TermSets(ctx context.Context, patientIDs []int64) (map[int64]extraction.TermSet, error)
	MedicationOrders(ctx context.Context, patientIDs []int64, classes []models.MedicationClass) ([]models.MedicationOrder, error)
	LabResults(ctx context.Context, patientIDs []int64) ([]models.LabResult, error)
}

// Engine holds no per-request state; one instance serves concurrent queries.
type Engine struct {
	index  vectorindex.Index
	store  Store
	logger *zap.Logger
}

func NewEngine(index vectorindex.Index, store Store, logger *zap.Logger) *Engine {
	return &Engine{index: index, store: store, logger: logger}
}

// member is a cohort patient with its similarity to the focal patient.
type member = vectorindex.Neighbor

// cohort returns the patients at or above threshold, focal excluded, capped at
// limit when limit > 0. A focal patient without embedding yields
// MissingEmbeddingError.
func (e *Engine) cohort(ctx context.Context, focalID int64, threshold float64, limit int) ([]member, error) {
	focal, err := e.index.Get(ctx, focalID)
	if errors.Is(err, vectorindex.ErrNotFound) {
		return nil, &MissingEmbeddingError{PatientID: focalID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding for patient %d: %w", focalID, err)
	}

	fetch := limit
	if limit > 0 && limit < math.MaxInt {
		// the focal patient is its own nearest neighbour
		fetch = limit + 1
	}
	neighbors, err := e.index.Nearest(ctx, focal, threshold, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar patients: %w", err)
	}

	out := make([]member, 0, len(neighbors))
	for _, n := range neighbors {
		if n.ID == focalID {
			continue
		}
		out = append(out, n)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ValidateThreshold rejects similarity thresholds outside [0, 1].
func ValidateThreshold(field string, v float64) error {
	if v < 0 || v > 1 || v != v {
		return &ThresholdOutOfRangeError{Field: field, Value: v}
	}
	return nil
}

// ValidateSimilarArgs checks the inputs of FindSimilarPatients.
func ValidateSimilarArgs(minSimilarity float64, maxResults int) error {
	if err := ValidateThreshold("min_similarity", minSimilarity); err != nil {
		return err
	}
	if maxResults <= 0 || maxResults > MaxSimilarResults {
		return &ThresholdOutOfRangeError{Field: "max_results", Value: float64(maxResults)}
	}
	return nil
}

func memberIDs(members []member) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func (e *Engine) issue(kind string, patientID int64, err error) DataQualityError {
	metrics.Default().IncDataQualityIssue(kind)
	e.logger.Warn("Data quality issue",
		zap.String("kind", kind),
		zap.Int64("patient_id", patientID),
		zap.Error(err),
	)
	return DataQualityError{Kind: kind, PatientID: patientID, Err: err}
}
