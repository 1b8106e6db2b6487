package repository

import (
	"context"
	"errors"
	"time"

	"clinical-intel/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type NoteRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNoteRepository(db *pgxpool.Pool, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{
		db:     db,
		logger: logger,
	}
}

var noteColumns = []string{"n.note_id", "n.patient_id", "n.encounter_id", "n.note_type", "n.note_date", "n.author", "n.note_text"}

func scanNote(row pgx.Row, n *models.ClinicalNote, extra ...any) error {
	dest := []any{&n.ID, &n.PatientID, &n.EncounterID, &n.NoteType, &n.NoteDate, &n.Author, &n.Text}
	return row.Scan(append(dest, extra...)...)
}

func (r *NoteRepository) Create(ctx context.Context, n *models.ClinicalNote) error {
	query := squirrel.Insert("clinical_notes").
		Columns("note_id", "patient_id", "encounter_id", "note_type", "note_date", "author", "note_text").
		Values(n.ID, n.PatientID, n.EncounterID, string(n.NoteType), n.NoteDate, n.Author, n.Text).
		Suffix("ON CONFLICT (note_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*models.ClinicalNote, error) {
	sql, args, err := squirrel.Select(noteColumns...).
		From("clinical_notes n").
		Where(squirrel.Eq{"n.note_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var n models.ClinicalNote
	err = scanNote(r.db.QueryRow(ctx, sql, args...), &n)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// LatestByPatient returns each listed patient's most recent note. Patients
// without notes are absent from the map.
func (r *NoteRepository) LatestByPatient(ctx context.Context, patientIDs []int64) (map[int64]models.ClinicalNote, error) {
	out := make(map[int64]models.ClinicalNote, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}

	cols := append([]string{"DISTINCT ON (n.patient_id) n.note_id"}, noteColumns[1:]...)
	sql, args, err := squirrel.Select(cols...).
		From("clinical_notes n").
		Where(squirrel.Eq{"n.patient_id": patientIDs}).
		OrderBy("n.patient_id", "n.note_date DESC", "n.note_id DESC").
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
		var n models.ClinicalNote
		if err := scanNote(rows, &n); err != nil {
			return nil, err
		}
		out[n.PatientID] = n
	}
	return out, rows.Err()
}

// ListByPatient returns a patient's notes, newest first.
func (r *NoteRepository) ListByPatient(ctx context.Context, patientID int64, limit int) ([]models.ClinicalNote, error) {
	query := squirrel.Select(noteColumns...).
		From("clinical_notes n").
		Where(squirrel.Eq{"n.patient_id": patientID}).
		OrderBy("n.note_date DESC", "n.note_id DESC").
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		query = query.Limit(uint64(limit))
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

	var notes []models.ClinicalNote
	for rows.Next() {
		var n models.ClinicalNote
		if err := scanNote(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// SearchSimilar ranks embedded notes by cosine similarity to the query vector
// using the HNSW index on note_embeddings.
func (r *NoteRepository) SearchSimilar(ctx context.Context, query []float32, noteType *models.NoteType, limit int) ([]models.NoteHit, error) {
	vec := pgvector.NewVector(query)

	q := squirrel.Select(noteColumns...).
		Column(squirrel.Expr("1 - (e.embedding <=> ?::vector) AS score", vec)).
		From("note_embeddings e").
		Join("clinical_notes n ON n.note_id = e.note_id").
		OrderByClause("e.embedding <=> ?::vector", vec).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if noteType != nil {
		q = q.Where(squirrel.Eq{"n.note_type": string(*noteType)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []models.NoteHit
	for rows.Next() {
		var h models.NoteHit
		if err := scanNote(rows, &h.ClinicalNote, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ListWithoutEmbedding returns notes not yet in note_embeddings, oldest first.
func (r *NoteRepository) ListWithoutEmbedding(ctx context.Context, limit int) ([]models.ClinicalNote, error) {
	return r.listMissing(ctx, "note_embeddings", limit)
}

// ListWithoutTerms returns notes no extraction run has covered yet.
func (r *NoteRepository) ListWithoutTerms(ctx context.Context, limit int) ([]models.ClinicalNote, error) {
	return r.listMissing(ctx, "medical_terms", limit)
}

func (r *NoteRepository) listMissing(ctx context.Context, table string, limit int) ([]models.ClinicalNote, error) {
	query := squirrel.Select(noteColumns...).
		From("clinical_notes n").
		Where("NOT EXISTS (SELECT 1 FROM " + table + " x WHERE x.note_id = n.note_id)").
		OrderBy("n.note_date", "n.note_id").
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		query = query.Limit(uint64(limit))
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

	var notes []models.ClinicalNote
	for rows.Next() {
		var n models.ClinicalNote
		if err := scanNote(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) UpsertEmbedding(ctx context.Context, noteID, patientID int64, model string, vec []float32) error {
	sql, args, err := squirrel.Insert("note_embeddings").
		Columns("note_id", "patient_id", "model", "embedding", "updated_at").
		Values(noteID, patientID, model, squirrel.Expr("?::vector", pgvector.NewVector(vec)), time.Now()).
		Suffix("ON CONFLICT (note_id) DO UPDATE SET model = EXCLUDED.model, embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
