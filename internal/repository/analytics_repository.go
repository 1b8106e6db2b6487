package repository

import (
	"context"
	"time"

	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AnalyticsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAnalyticsRepository(db *pgxpool.Pool, logger *zap.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AnalyticsRepository) Overview(ctx context.Context) (*models.Overview, error) {
	var o models.Overview
	err := r.db.QueryRow(ctx, `SELECT
    (SELECT COUNT(*) FROM patients),
    (SELECT COUNT(*) FROM encounters),
    (SELECT COUNT(*) FROM clinical_notes),
    (SELECT MAX(note_date) FROM clinical_notes)`).
		Scan(&o.TotalPatients, &o.TotalEncounters, &o.TotalNotes, &o.LatestNote)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *AnalyticsRepository) Departments(ctx context.Context) ([]models.DepartmentStat, error) {
	sql, args, err := squirrel.Select(
		"e.department",
		"COUNT(DISTINCT e.patient_id) AS patient_count",
		"COUNT(DISTINCT e.encounter_id) AS encounter_count",
		"COUNT(DISTINCT n.note_id) AS note_count",
	).
		From("encounters e").
		LeftJoin("clinical_notes n ON n.encounter_id = e.encounter_id").
		GroupBy("e.department").
		OrderBy("patient_count DESC", "e.department").
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

	var stats []models.DepartmentStat
	for rows.Next() {
		var s models.DepartmentStat
		if err := rows.Scan(&s.Department, &s.PatientCount, &s.EncounterCount, &s.NoteCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *AnalyticsRepository) TopDiagnoses(ctx context.Context, limit int) ([]models.DiagnosisCount, error) {
	sql, args, err := squirrel.Select("primary_diagnosis", "COUNT(*) AS count").
		From("encounters").
		GroupBy("primary_diagnosis").
		OrderBy("count DESC", "primary_diagnosis").
		Limit(uint64(limit)).
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

	var out []models.DiagnosisCount
	for rows.Next() {
		var d models.DiagnosisCount
		if err := rows.Scan(&d.Diagnosis, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AgeDistribution counts patients per year of age.
func (r *AnalyticsRepository) AgeDistribution(ctx context.Context) ([]models.AgeBucket, error) {
	sql, args, err := squirrel.Select("age_years", "COUNT(*) AS count").
		From("patients").
		GroupBy("age_years").
		OrderBy("age_years").
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

	var out []models.AgeBucket
	for rows.Next() {
		var b models.AgeBucket
		if err := rows.Scan(&b.AgeYears, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// NoteActivity counts notes per day since the given time.
func (r *AnalyticsRepository) NoteActivity(ctx context.Context, since time.Time) ([]models.DailyActivity, error) {
	sql, args, err := squirrel.Select("date_trunc('day', note_date) AS date", "COUNT(*) AS note_count").
		From("clinical_notes").
		Where(squirrel.GtOrEq{"note_date": since}).
		GroupBy("date").
		OrderBy("date").
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

	var out []models.DailyActivity
	for rows.Next() {
		var a models.DailyActivity
		if err := rows.Scan(&a.Date, &a.NoteCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
