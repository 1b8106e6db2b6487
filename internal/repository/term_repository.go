package repository

import (
	"context"
	"fmt"
	"time"

	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TermRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTermRepository(db *pgxpool.Pool, logger *zap.Logger) *TermRepository {
	return &TermRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForNote swaps a note's term set for the output of a new extraction run.
func (r *TermRepository) ReplaceForNote(ctx context.Context, noteID int64, runID uuid.UUID, extractor string, terms []models.ExtractedTerm) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := squirrel.Delete("medical_terms").
		Where(squirrel.Eq{"note_id": noteID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete previous terms: %w", err)
	}

	if len(terms) > 0 {
		now := time.Now()
		insert := squirrel.Insert("medical_terms").
			Columns("term_id", "run_id", "note_id", "term", "category", "start_pos", "end_pos", "score", "extractor", "created_at").
			PlaceholderFormat(squirrel.Dollar)
		for _, t := range terms {
			insert = insert.Values(uuid.New(), runID, noteID, t.Term, string(t.Category), t.Start, t.End, t.Score, extractor, now)
		}

		sql, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert terms: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *TermRepository) ListByNote(ctx context.Context, noteID int64) ([]models.MedicalTerm, error) {
	sql, args, err := squirrel.Select("term_id", "run_id", "note_id", "term", "category", "start_pos", "end_pos", "score", "extractor", "created_at").
		From("medical_terms").
		Where(squirrel.Eq{"note_id": noteID}).
		OrderBy("start_pos", "end_pos").
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

	var terms []models.MedicalTerm
	for rows.Next() {
		var t models.MedicalTerm
		if err := rows.Scan(&t.ID, &t.RunID, &t.NoteID, &t.Term, &t.Category, &t.StartPos, &t.EndPos, &t.Score, &t.Extractor, &t.CreatedAt); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// LatestNoteTerms returns, per patient, the terms of that patient's most
// recent note, the same note their embedding is computed from.
func (r *TermRepository) LatestNoteTerms(ctx context.Context, patientIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}

	latest := squirrel.Select("DISTINCT ON (patient_id) patient_id", "note_id").
		From("clinical_notes").
		Where(squirrel.Eq{"patient_id": patientIDs}).
		OrderBy("patient_id", "note_date DESC", "note_id DESC")

	sql, args, err := squirrel.Select("l.patient_id", "t.term").
		FromSelect(latest, "l").
		Join("medical_terms t ON t.note_id = l.note_id").
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

	for rows.Next() {
		var id int64
		var term string
		if err := rows.Scan(&id, &term); err != nil {
			return nil, err
		}
		out[id] = append(out[id], term)
	}
	return out, rows.Err()
}
