package repository

import (
	"context"

	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type MedicationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMedicationRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicationRepository {
	return &MedicationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *MedicationRepository) Create(ctx context.Context, m *models.MedicationOrder) error {
	query := squirrel.Insert("medication_orders").
		Columns("order_id", "patient_id", "encounter_id", "medication_name", "medication_class", "dose", "route", "order_date").
		Values(m.ID, m.PatientID, m.EncounterID, m.Name, string(m.Class), m.Dose, m.Route, m.OrderDate).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByPatients returns the patients' orders, optionally restricted to classes.
func (r *MedicationRepository) ListByPatients(ctx context.Context, patientIDs []int64, classes []models.MedicationClass) ([]models.MedicationOrder, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}

	query := squirrel.Select("order_id", "patient_id", "encounter_id", "medication_name", "medication_class", "dose", "route", "order_date").
		From("medication_orders").
		Where(squirrel.Eq{"patient_id": patientIDs}).
		OrderBy("patient_id", "order_date", "order_id").
		PlaceholderFormat(squirrel.Dollar)

	if len(classes) > 0 {
		names := make([]string, len(classes))
		for i, c := range classes {
			names[i] = string(c)
		}
		query = query.Where(squirrel.Eq{"medication_class": names})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.MedicationOrder
	for rows.Next() {
		var m models.MedicationOrder
		if err := rows.Scan(&m.ID, &m.PatientID, &m.EncounterID, &m.Name, &m.Class, &m.Dose, &m.Route, &m.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, m)
	}
	return orders, rows.Err()
}
