package service

import (
	"context"
	"testing"

	"clinical-intel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPatientService() (*PatientService, *mockPatientStore) {
	store := newMockPatientStore(
		models.Patient{ID: 42, MRN: "MRN00000042", AgeYears: 7, Gender: "F"},
		models.Patient{ID: 7, MRN: "00000007", AgeYears: 12, Gender: "M"},
	)
	return NewPatientService(store, zap.NewNop()), store
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantID  int64
		wantErr error
	}{
		{"numeric id", "42", 42, nil},
		{"numeric id with spaces", " 7 ", 7, nil},
		{"mrn", "MRN00000042", 42, nil},
		{"mrn lowercase", "mrn00000042", 42, nil},
		{"mrn stored bare", "MRN 00000007", 7, nil},
		{"unknown id", "99", 0, ErrPatientNotFound},
		{"unknown mrn", "MRN123", 0, ErrPatientNotFound},
		{"prefix only", "MRN", 0, ErrInvalidPatientRef},
		{"garbage", "patient-42", 0, ErrInvalidPatientRef},
		{"empty", "", 0, ErrInvalidPatientRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestPatientService()

			p, err := svc.Resolve(context.Background(), tt.ref)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestExists(t *testing.T) {
	svc, _ := newTestPatientService()

	assert.NoError(t, svc.Exists(context.Background(), 42))
	assert.ErrorIs(t, svc.Exists(context.Background(), 1), ErrPatientNotFound)
}

func TestDetails(t *testing.T) {
	svc, _ := newTestPatientService()

	d, err := svc.Details(context.Background(), "mrn00000042")

	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, 2, d.EncounterCount)
}
