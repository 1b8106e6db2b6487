package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"clinical-intel/internal/models"
	"clinical-intel/internal/repository"

	"go.uber.org/zap"
)

type PatientService struct {
	patients PatientStore
	logger   *zap.Logger
}

func NewPatientService(patients PatientStore, logger *zap.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		logger:   logger,
	}
}

// Resolve accepts a numeric patient id or an MRN ("MRN00000042", "mrn 42").
func (s *PatientService) Resolve(ctx context.Context, ref string) (*models.Patient, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrInvalidPatientRef
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.byID(ctx, id)
	}

	upper := strings.ToUpper(ref)
	if !strings.HasPrefix(upper, "MRN") {
		return nil, ErrInvalidPatientRef
	}

	p, err := s.patients.GetByMRN(ctx, upper)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// some sources store the bare number
	bare := strings.TrimSpace(strings.TrimPrefix(upper, "MRN"))
	if bare == "" {
		return nil, ErrInvalidPatientRef
	}
	p, err = s.patients.GetByMRN(ctx, bare)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

func (s *PatientService) byID(ctx context.Context, id int64) (*models.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

// Exists reports ErrPatientNotFound for unknown ids.
func (s *PatientService) Exists(ctx context.Context, id int64) error {
	_, err := s.byID(ctx, id)
	return err
}

func (s *PatientService) Details(ctx context.Context, ref string) (*models.PatientDetails, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	d, err := s.patients.Details(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return d, err
}
