package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinical-intel/internal/extraction"
	"clinical-intel/internal/models"
	"clinical-intel/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExtractionService struct {
	extractor extraction.TermExtractor
	notes     NoteStore
	terms     TermStore
	logger    *zap.Logger
}

func NewExtractionService(extractor extraction.TermExtractor, notes NoteStore, terms TermStore, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		notes:     notes,
		terms:     terms,
		logger:    logger,
	}
}

type ExtractionResult struct {
	NoteID    int64
	RunID     uuid.UUID
	Extractor string
	Terms     []models.ExtractedTerm
	Groups    map[models.TermCategory][]models.ExtractedTerm
}

// ExtractText runs extraction on free text without persisting anything.
func (s *ExtractionService) ExtractText(ctx context.Context, text string) (*ExtractionResult, error) {
	text = sanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	terms, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract terms: %w", err)
	}
	if terms == nil {
		terms = []models.ExtractedTerm{}
	}

	return &ExtractionResult{
		Extractor: s.extractor.Name(),
		Terms:     terms,
		Groups:    extraction.GroupByCategory(terms),
	}, nil
}

// ExtractNote extracts a stored note and replaces its persisted term set.
func (s *ExtractionService) ExtractNote(ctx context.Context, noteID int64) (*ExtractionResult, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	return s.extractAndStore(ctx, note)
}

func (s *ExtractionService) extractAndStore(ctx context.Context, note *models.ClinicalNote) (*ExtractionResult, error) {
	res, err := s.ExtractText(ctx, note.Text)
	if errors.Is(err, ErrEmptyText) {
		res = &ExtractionResult{Extractor: s.extractor.Name(), Terms: []models.ExtractedTerm{}, Groups: map[models.TermCategory][]models.ExtractedTerm{}}
	} else if err != nil {
		return nil, err
	}

	res.NoteID = note.ID
	res.RunID = uuid.New()
	if err := s.terms.ReplaceForNote(ctx, note.ID, res.RunID, res.Extractor, res.Terms); err != nil {
		return nil, fmt.Errorf("failed to store terms for note %d: %w", note.ID, err)
	}

	s.logger.Info("Note terms extracted",
		zap.Int64("note_id", note.ID),
		zap.String("run_id", res.RunID.String()),
		zap.Int("terms", len(res.Terms)),
	)
	return res, nil
}
