package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"clinical-intel/internal/embedding"
	"clinical-intel/internal/lock"
	"clinical-intel/internal/models"
	"clinical-intel/internal/vectorindex"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IndexingService keeps patient embeddings, note embeddings and term sets in
// step with the clinical notes.
type IndexingService struct {
	patients   PatientStore
	notes      NoteStore
	embeddings EmbeddingStore
	embedder   embedding.Embedder
	extraction *ExtractionService
	// mirror is the in-memory index kept in sync with stored embeddings; nil
	// when queries go straight to Postgres.
	mirror  vectorindex.Index
	locker  lock.Locker
	workers int
	logger  *zap.Logger
}

const reindexLockKey = "clinical-intel:reindex"

func NewIndexingService(
	patients PatientStore,
	notes NoteStore,
	embeddings EmbeddingStore,
	embedder embedding.Embedder,
	extraction *ExtractionService,
	mirror vectorindex.Index,
	workers int,
	logger *zap.Logger,
) *IndexingService {
	if workers <= 0 {
		workers = 1
	}
	return &IndexingService{
		patients:   patients,
		notes:      notes,
		embeddings: embeddings,
		embedder:   embedder,
		extraction: extraction,
		mirror:     mirror,
		locker:     lock.NewLocal(),
		workers:    workers,
		logger:     logger,
	}
}

// UseLocker replaces the in-process reindex lock, e.g. with a Redis lock
// shared between instances.
func (s *IndexingService) UseLocker(l lock.Locker) {
	s.locker = l
}

type IndexingReport struct {
	Patients         int
	PatientsEmbedded int
	PatientsUpToDate int
	PatientsWithout  int
	PatientsFailed   int
	NotesEmbedded    int
	NotesExtracted   int
	NotesFailed      int
	Duration         time.Duration
}

// refresher is a mirror that knows how to load itself from storage.
type refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Warm loads every stored patient embedding into the mirror index.
func (s *IndexingService) Warm(ctx context.Context) (int, error) {
	if s.mirror == nil {
		return 0, nil
	}
	if r, ok := s.mirror.(refresher); ok {
		n, err := r.Refresh(ctx)
		if err != nil {
			return n, fmt.Errorf("failed to warm index: %w", err)
		}
		s.logger.Info("Similarity index warmed", zap.Int("patients", n))
		return n, nil
	}
	n := 0
	err := s.embeddings.All(ctx, func(id int64, vec []float32) error {
		n++
		return s.mirror.Upsert(ctx, id, vec)
	})
	if err != nil {
		return n, fmt.Errorf("failed to warm index: %w", err)
	}
	s.logger.Info("Similarity index warmed", zap.Int("patients", n))
	return n, nil
}

// Reindex brings every derived artifact up to date. Individual failures are
// logged and counted; only failures to read the work list abort the run.
func (s *IndexingService) Reindex(ctx context.Context) (*IndexingReport, error) {
	release, err := s.locker.Obtain(ctx, reindexLockKey)
	if errors.Is(err, lock.ErrLocked) {
		return nil, ErrReindexRunning
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release reindex lock", zap.Error(err))
		}
	}()

	start := time.Now()
	report := &IndexingReport{}

	if err := s.reindexPatients(ctx, report); err != nil {
		return nil, err
	}
	if err := s.embedNotes(ctx, report); err != nil {
		return nil, err
	}
	if err := s.extractNotes(ctx, report); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	s.logger.Info("Reindex completed",
		zap.Int("patients", report.Patients),
		zap.Int("patients_embedded", report.PatientsEmbedded),
		zap.Int("patients_failed", report.PatientsFailed),
		zap.Int("notes_embedded", report.NotesEmbedded),
		zap.Int("notes_extracted", report.NotesExtracted),
		zap.Int("notes_failed", report.NotesFailed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// reindexPatients recomputes the embedding of every patient whose latest
// note differs from the one their stored embedding came from.
func (s *IndexingService) reindexPatients(ctx context.Context, report *IndexingReport) error {
	ids, err := s.patients.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}
	report.Patients = len(ids)

	latest, err := s.notes.LatestByPatient(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load latest notes: %w", err)
	}
	meta, err := s.embeddings.Meta(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load embedding metadata: %w", err)
	}

	var stale []models.ClinicalNote
	for _, id := range ids {
		note, ok := latest[id]
		if !ok {
			report.PatientsWithout++
			continue
		}
		if m, ok := meta[id]; ok && m.NoteID == note.ID && m.Model == s.embedder.Name() {
			report.PatientsUpToDate++
			continue
		}
		stale = append(stale, note)
	}

	var embedded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, note := range stale {
		g.Go(func() error {
			if err := s.embedPatient(gctx, note); err != nil {
				failed.Add(1)
				s.logger.Error("Failed to embed patient",
					zap.Int64("patient_id", note.PatientID),
					zap.Int64("note_id", note.ID),
					zap.Error(err),
				)
				return nil
			}
			embedded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.PatientsEmbedded = int(embedded.Load())
	report.PatientsFailed = int(failed.Load())
	return ctx.Err()
}

func (s *IndexingService) embedPatient(ctx context.Context, note models.ClinicalNote) error {
	vec, err := embedding.EmbedOne(ctx, s.embedder, note.Text)
	if err != nil {
		return err
	}
	if err := s.embeddings.Save(ctx, &models.PatientEmbedding{
		PatientID: note.PatientID,
		NoteID:    note.ID,
		NoteDate:  note.NoteDate,
		Model:     s.embedder.Name(),
		Vector:    vec,
	}); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Upsert(ctx, note.PatientID, vec); err != nil {
			return fmt.Errorf("update index: %w", err)
		}
	}
	return nil
}

const noteBatchSize = 32

func (s *IndexingService) embedNotes(ctx context.Context, report *IndexingReport) error {
	notes, err := s.notes.ListWithoutEmbedding(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list notes without embeddings: %w", err)
	}

	var embedded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for start := 0; start < len(notes); start += noteBatchSize {
		batch := notes[start:min(start+noteBatchSize, len(notes))]
		g.Go(func() error {
			n, err := s.embedNoteBatch(gctx, batch)
			embedded.Add(int64(n))
			if err != nil {
				failed.Add(int64(len(batch) - n))
				s.logger.Error("Failed to embed note batch",
					zap.Int64("first_note_id", batch[0].ID),
					zap.Int("size", len(batch)),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.NotesEmbedded = int(embedded.Load())
	report.NotesFailed += int(failed.Load())
	return ctx.Err()
}

func (s *IndexingService) embedNoteBatch(ctx context.Context, batch []models.ClinicalNote) (int, error) {
	texts := make([]string, len(batch))
	for i, n := range batch {
		texts[i] = n.Text
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vecs) != len(batch) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d notes", len(vecs), len(batch))
	}
	for i, n := range batch {
		if err := s.notes.UpsertEmbedding(ctx, n.ID, n.PatientID, s.embedder.Name(), vecs[i]); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

// TODO: notes with no extractable terms are picked up again on every run;
// record empty runs in a separate extraction_runs table.
func (s *IndexingService) extractNotes(ctx context.Context, report *IndexingReport) error {
	if s.extraction == nil {
		return nil
	}
	notes, err := s.notes.ListWithoutTerms(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list notes without terms: %w", err)
	}

	var extracted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range notes {
		note := &notes[i]
		g.Go(func() error {
			if _, err := s.extraction.extractAndStore(gctx, note); err != nil {
				failed.Add(1)
				s.logger.Error("Failed to extract note terms", zap.Int64("note_id", note.ID), zap.Error(err))
				return nil
			}
			extracted.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.NotesExtracted = int(extracted.Load())
	report.NotesFailed += int(failed.Load())
	return ctx.Err()
}
