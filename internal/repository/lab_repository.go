package repository

import (
	"context"

	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LabRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLabRepository(db *pgxpool.Pool, logger *zap.Logger) *LabRepository {
	return &LabRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LabRepository) Create(ctx context.Context, l *models.LabResult) error {
	query := squirrel.Insert("lab_results").
		Columns("lab_id", "patient_id", "encounter_id", "test_name", "lab_value", "unit", "result_date").
		Values(l.ID, l.PatientID, l.EncounterID, l.TestName, l.Value, l.Unit, l.ResultDate).
		Suffix("ON CONFLICT (lab_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByPatients returns every lab row for the patients, raw values untouched.
func (r *LabRepository) ListByPatients(ctx context.Context, patientIDs []int64) ([]models.LabResult, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}

	query := squirrel.Select("lab_id", "patient_id", "encounter_id", "test_name", "lab_value", "unit", "result_date").
		From("lab_results").
		Where(squirrel.Eq{"patient_id": patientIDs}).
		OrderBy("patient_id", "test_name", "result_date", "lab_id").
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

	var labs []models.LabResult
	for rows.Next() {
		var l models.LabResult
		if err := rows.Scan(&l.ID, &l.PatientID, &l.EncounterID, &l.TestName, &l.Value, &l.Unit, &l.ResultDate); err != nil {
			return nil, err
		}
		labs = append(labs, l)
	}
	return labs, rows.Err()
}
