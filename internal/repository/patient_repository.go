package repository

import (
	"context"
	"errors"
	"fmt"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("not found")

type PatientRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPatientRepository(db *pgxpool.Pool, logger *zap.Logger) *PatientRepository {
	return &PatientRepository{
		db:     db,
		logger: logger,
	}
}

var patientColumns = []string{"patient_id", "mrn", "age_years", "gender", "race", "created_at"}

func (r *PatientRepository) Create(ctx context.Context, p *models.Patient) error {
	query := squirrel.Insert("patients").
		Columns("patient_id", "mrn", "age_years", "gender", "race").
		Values(p.ID, p.MRN, p.AgeYears, p.Gender, p.Race).
		Suffix("ON CONFLICT (patient_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	return r.getOne(ctx, squirrel.Eq{"patient_id": id})
}

func (r *PatientRepository) GetByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	return r.getOne(ctx, squirrel.Eq{"mrn": mrn})
}

func (r *PatientRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.Patient, error) {
	query := squirrel.Select(patientColumns...).
		From("patients").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Patient
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.MRN, &p.AgeYears, &p.Gender, &p.Race, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Details adds encounter history to the patient header.
func (r *PatientRepository) Details(ctx context.Context, id int64) (*models.PatientDetails, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &models.PatientDetails{Patient: *p}

	query := squirrel.Select(
		"COUNT(*)",
		"MAX(encounter_date)",
		"COALESCE(ARRAY_AGG(DISTINCT department ORDER BY department), '{}')",
		"COALESCE(ARRAY_AGG(DISTINCT primary_diagnosis ORDER BY primary_diagnosis), '{}')",
	).
		From("encounters").
		Where(squirrel.Eq{"patient_id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.EncounterCount, &d.LastEncounterDate, &d.Departments, &d.Diagnoses); err != nil {
		return nil, fmt.Errorf("failed to load encounter summary: %w", err)
	}

	latest, err := r.latestDiagnoses(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	d.PrimaryDiagnosis = latest[id]
	return d, nil
}

// Demographics returns patient headers with the diagnosis of each patient's
// most recent encounter.
func (r *PatientRepository) Demographics(ctx context.Context, ids []int64) (map[int64]cohort.Demographics, error) {
	out := make(map[int64]cohort.Demographics, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := squirrel.Select(patientColumns...).
		From("patients").
		Where(squirrel.Eq{"patient_id": ids}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.MRN, &p.AgeYears, &p.Gender, &p.Race, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = cohort.Demographics{Patient: p}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	diagnoses, err := r.latestDiagnoses(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, dx := range diagnoses {
		if d, ok := out[id]; ok {
			d.PrimaryDiagnosis = dx
			out[id] = d
		}
	}
	return out, nil
}

func (r *PatientRepository) latestDiagnoses(ctx context.Context, ids []int64) (map[int64]string, error) {
	query := squirrel.Select("DISTINCT ON (patient_id) patient_id", "primary_diagnosis").
		From("encounters").
		Where(squirrel.Eq{"patient_id": ids}).
		OrderBy("patient_id", "encounter_date DESC", "encounter_id DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var dx string
		if err := rows.Scan(&id, &dx); err != nil {
			return nil, err
		}
		out[id] = dx
	}
	return out, rows.Err()
}

func (r *PatientRepository) ListIDs(ctx context.Context) ([]int64, error) {
	sql, args, err := squirrel.Select("patient_id").
		From("patients").
		OrderBy("patient_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PatientRepository) CreateEncounter(ctx context.Context, e *models.Encounter) error {
	query := squirrel.Insert("encounters").
		Columns("encounter_id", "patient_id", "encounter_date", "department", "encounter_type", "primary_diagnosis").
		Values(e.ID, e.PatientID, e.EncounterDate, string(e.Department), e.EncounterType, e.PrimaryDiagnosis).
		Suffix("ON CONFLICT (encounter_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
