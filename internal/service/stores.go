package service

import (
	"context"
	"time"

	"clinical-intel/internal/models"

	"github.com/google/uuid"
)

// The interfaces below are the repository methods each service needs.

type PatientStore interface {
	GetByID(ctx context.Context, id int64) (*models.Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*models.Patient, error)
	Details(ctx context.Context, id int64) (*models.PatientDetails, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

type NoteStore interface {
	GetByID(ctx context.Context, id int64) (*models.ClinicalNote, error)
	SearchSimilar(ctx context.Context, query []float32, noteType *models.NoteType, limit int) ([]models.NoteHit, error)
	LatestByPatient(ctx context.Context, patientIDs []int64) (map[int64]models.ClinicalNote, error)
	ListWithoutEmbedding(ctx context.Context, limit int) ([]models.ClinicalNote, error)
	ListWithoutTerms(ctx context.Context, limit int) ([]models.ClinicalNote, error)
	UpsertEmbedding(ctx context.Context, noteID, patientID int64, model string, vec []float32) error
}

type TermStore interface {
	ReplaceForNote(ctx context.Context, noteID int64, runID uuid.UUID, extractor string, terms []models.ExtractedTerm) error
	ListByNote(ctx context.Context, noteID int64) ([]models.MedicalTerm, error)
}

type EmbeddingStore interface {
	Save(ctx context.Context, e *models.PatientEmbedding) error
	Meta(ctx context.Context, patientIDs []int64) (map[int64]models.PatientEmbedding, error)
	All(ctx context.Context, fn func(patientID int64, vec []float32) error) error
}

type AnalyticsStore interface {
	Overview(ctx context.Context) (*models.Overview, error)
	Departments(ctx context.Context) ([]models.DepartmentStat, error)
	TopDiagnoses(ctx context.Context, limit int) ([]models.DiagnosisCount, error)
	AgeDistribution(ctx context.Context) ([]models.AgeBucket, error)
	NoteActivity(ctx context.Context, since time.Time) ([]models.DailyActivity, error)
}
