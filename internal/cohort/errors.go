package cohort

import (
	"errors"
	"fmt"
)

// ThresholdOutOfRangeError rejects a request before any data is read.
type ThresholdOutOfRangeError struct {
	Field string
	Value float64
}

func (e *ThresholdOutOfRangeError) Error() string {
	if e.Field == "max_results" {
		return fmt.Sprintf("max_results must be within [1, %d], got %v", MaxSimilarResults, e.Value)
	}
	return fmt.Sprintf("%s must be within [0, 1], got %v", e.Field, e.Value)
}

// MissingEmbeddingError means a patient has no stored embedding yet.
type MissingEmbeddingError struct {
	PatientID int64
}

func (e *MissingEmbeddingError) Error() string {
	return fmt.Sprintf("patient %d has no embedding", e.PatientID)
}

// InsufficientCohortError marks a lab test left out of a comparison.
type InsufficientCohortError struct {
	TestName     string
	Contributors int
	Required     int
}

func (e *InsufficientCohortError) Error() string {
	return fmt.Sprintf("lab %q has %d contributing cohort patients, need %d", e.TestName, e.Contributors, e.Required)
}

// DataCastError is a lab value that does not parse as a number.
type DataCastError struct {
	PatientID int64
	LabID     int64
	TestName  string
	Value     string
}

func (e *DataCastError) Error() string {
	return fmt.Sprintf("lab %d (%s) for patient %d has non-numeric value %q", e.LabID, e.TestName, e.PatientID, e.Value)
}

// Data quality issue kinds.
const (
	IssueNonNumericLab   = "non_numeric_lab"
	IssueNoFocalValue    = "no_focal_value"
	IssueMissingPatient  = "missing_patient"
	IssueBadMedication   = "bad_medication"
	IssueMissingFocalEmb = "missing_focal_embedding"
)

// DataQualityError is a per-row problem reported next to a result. It never
// aborts the aggregate it was found in.
type DataQualityError struct {
	Kind      string
	PatientID int64
	Err       error
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DataQualityError) Unwrap() error { return e.Err }

// IsThresholdError reports whether err is a rejected input.
func IsThresholdError(err error) bool {
	var target *ThresholdOutOfRangeError
	return errors.As(err, &target)
}
