package repository

import (
	"context"
	"errors"
	"time"

	"clinical-intel/internal/embedding"
	"clinical-intel/internal/models"
	"clinical-intel/internal/vectorindex"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// EmbeddingRepository stores one latest-note embedding per patient. It also
// serves as the approximate vectorindex.Index backed by the HNSW index.
type EmbeddingRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var (
	_ vectorindex.Index  = (*EmbeddingRepository)(nil)
	_ vectorindex.Source = (*EmbeddingRepository)(nil)
)

func NewEmbeddingRepository(db *pgxpool.Pool, logger *zap.Logger) *EmbeddingRepository {
	return &EmbeddingRepository{
		db:     db,
		logger: logger,
	}
}

// Save writes the embedding together with the note it was computed from.
func (r *EmbeddingRepository) Save(ctx context.Context, e *models.PatientEmbedding) error {
	sql, args, err := squirrel.Insert("patient_embeddings").
		Columns("patient_id", "note_id", "note_date", "model", "embedding", "updated_at").
		Values(e.PatientID, e.NoteID, e.NoteDate, e.Model, squirrel.Expr("?::vector", pgvector.NewVector(e.Vector)), time.Now()).
		Suffix(`ON CONFLICT (patient_id) DO UPDATE SET
    note_id = EXCLUDED.note_id,
    note_date = EXCLUDED.note_date,
    model = EXCLUDED.model,
    embedding = EXCLUDED.embedding,
    updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Meta returns embedding bookkeeping (no vector) for the patients.
func (r *EmbeddingRepository) Meta(ctx context.Context, patientIDs []int64) (map[int64]models.PatientEmbedding, error) {
	out := make(map[int64]models.PatientEmbedding, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}

	sql, args, err := squirrel.Select("patient_id", "note_id", "note_date", "model", "updated_at").
		From("patient_embeddings").
		Where(squirrel.Eq{"patient_id": patientIDs}).
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
		var e models.PatientEmbedding
		if err := rows.Scan(&e.PatientID, &e.NoteID, &e.NoteDate, &e.Model, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out[e.PatientID] = e
	}
	return out, rows.Err()
}

// All streams every stored vector, used to warm the in-memory exact index.
func (r *EmbeddingRepository) All(ctx context.Context, fn func(patientID int64, vec []float32) error) error {
	sql, args, err := squirrel.Select("patient_id", "embedding::text").
		From("patient_embeddings").
		OrderBy("patient_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var vec pgvector.Vector
		if err := rows.Scan(&id, &vec); err != nil {
			return err
		}
		if err := fn(id, vec.Slice()); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ChangedSince streams the vectors written at or after since, letting another
// process's in-memory index catch up with this table.
func (r *EmbeddingRepository) ChangedSince(ctx context.Context, since time.Time, fn func(patientID int64, vec []float32, updatedAt time.Time) error) error {
	q := squirrel.Select("patient_id", "embedding::text", "updated_at").
		From("patient_embeddings").
		OrderBy("updated_at", "patient_id").
		PlaceholderFormat(squirrel.Dollar)
	if !since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"updated_at": since})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			vec       pgvector.Vector
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &vec, &updatedAt); err != nil {
			return err
		}
		if err := fn(id, vec.Slice(), updatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Upsert replaces the vector of an existing row. New rows go through Save,
// which also records the source note.
func (r *EmbeddingRepository) Upsert(ctx context.Context, id int64, vec []float32) error {
	sql, args, err := squirrel.Update("patient_embeddings").
		Set("embedding", squirrel.Expr("?::vector", pgvector.NewVector(vec))).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"patient_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vectorindex.ErrNotFound
	}
	return nil
}

func (r *EmbeddingRepository) Remove(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("patient_embeddings").
		Where(squirrel.Eq{"patient_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *EmbeddingRepository) Get(ctx context.Context, id int64) ([]float32, error) {
	sql, args, err := squirrel.Select("embedding::text").
		From("patient_embeddings").
		Where(squirrel.Eq{"patient_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var vec pgvector.Vector
	err = r.db.QueryRow(ctx, sql, args...).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, vectorindex.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return vec.Slice(), nil
}

// Nearest orders by cosine distance so that, with a limit, Postgres answers
// from the HNSW index. Results are approximate in that case. Zero-norm rows
// score 0 rather than NaN.
func (r *EmbeddingRepository) Nearest(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]vectorindex.Neighbor, error) {
	if embedding.IsZero(query) {
		return r.zeroQuery(ctx, minSimilarity, limit)
	}

	vec := pgvector.NewVector(query)
	similarity := "CASE WHEN vector_norm(embedding) = 0 THEN 0 ELSE 1 - (embedding <=> ?::vector) END"

	q := squirrel.Select("patient_id").
		Column(squirrel.Expr(similarity+" AS similarity", vec)).
		From("patient_embeddings").
		Where(squirrel.Expr(similarity+" >= ?", vec, minSimilarity)).
		OrderByClause("embedding <=> ?::vector", vec).
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		q = q.Limit(uint64(limit))
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

	var out []vectorindex.Neighbor
	for rows.Next() {
		var n vectorindex.Neighbor
		if err := rows.Scan(&n.ID, &n.Similarity); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vectorindex.SortNeighbors(out)
	return out, nil
}

// zeroQuery mirrors the exact index: a zero vector is 0-similar to everything.
func (r *EmbeddingRepository) zeroQuery(ctx context.Context, minSimilarity float64, limit int) ([]vectorindex.Neighbor, error) {
	if minSimilarity > 0 {
		return nil, nil
	}

	q := squirrel.Select("patient_id").
		From("patient_embeddings").
		OrderBy("patient_id").
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		q = q.Limit(uint64(limit))
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

	var out []vectorindex.Neighbor
	for rows.Next() {
		var n vectorindex.Neighbor
		if err := rows.Scan(&n.ID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *EmbeddingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM patient_embeddings").Scan(&n)
	return n, err
}
