package repository

import (
	"context"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/extraction"
	"clinical-intel/internal/models"
)

// CohortStore adapts the repositories to the read-only view the cohort
// engine aggregates over.
type CohortStore struct {
	patients    *PatientRepository
	terms       *TermRepository
	medications *MedicationRepository
	labs        *LabRepository
}

var _ cohort.Store = (*CohortStore)(nil)

func NewCohortStore(patients *PatientRepository, terms *TermRepository, medications *MedicationRepository, labs *LabRepository) *CohortStore {
	return &CohortStore{patients: patients, terms: terms, medications: medications, labs: labs}
}

func (s *CohortStore) Demographics(ctx context.Context, patientIDs []int64) (map[int64]cohort.Demographics, error) {
	return s.patients.Demographics(ctx, patientIDs)
}

func (s *CohortStore) TermSets(ctx context.Context, patientIDs []int64) (map[int64]extraction.TermSet, error) {
	raw, err := s.terms.LatestNoteTerms(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]extraction.TermSet, len(raw))
	for id, terms := range raw {
		out[id] = extraction.NewTermSet(terms...)
	}
	return out, nil
}

func (s *CohortStore) MedicationOrders(ctx context.Context, patientIDs []int64, classes []models.MedicationClass) ([]models.MedicationOrder, error) {
	return s.medications.ListByPatients(ctx, patientIDs, classes)
}

func (s *CohortStore) LabResults(ctx context.Context, patientIDs []int64) ([]models.LabResult, error) {
	return s.labs.ListByPatients(ctx, patientIDs)
}
