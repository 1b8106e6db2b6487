package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"clinical-intel/internal/embedding"
	"clinical-intel/internal/extraction"
	"clinical-intel/internal/models"
	"clinical-intel/pkg/config"

	"go.uber.org/zap"
)

const (
	noResultsSummary   = "No results found for your query."
	llmDisabledSummary = "AI summary is unavailable: no language model is configured."
	summaryFailed      = "Unable to generate summary."
)

type SearchService struct {
	notes    NoteStore
	embedder embedding.Embedder
	llm      extraction.Completer
	config   *config.SearchConfig
	logger   *zap.Logger
}

// NewSearchService accepts a nil llm; summaries then fall back to a fixed message.
func NewSearchService(notes NoteStore, embedder embedding.Embedder, llm extraction.Completer, cfg *config.SearchConfig, logger *zap.Logger) *SearchService {
	return &SearchService{
		notes:    notes,
		embedder: embedder,
		llm:      llm,
		config:   cfg,
		logger:   logger,
	}
}

type SearchResult struct {
	Query      string
	Hits       []models.NoteHit
	ByNoteType map[models.NoteType]int
	Summary    string
}

// SearchNotes embeds the query and returns the closest notes. A zero limit
// means the configured default; larger limits are capped.
func (s *SearchService) SearchNotes(ctx context.Context, query string, noteType *models.NoteType, limit int) (*SearchResult, error) {
	query = strings.TrimSpace(sanitizeText(query))
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	result := &SearchResult{Query: query, Hits: []models.NoteHit{}, ByNoteType: map[models.NoteType]int{}}

	vec, err := embedding.EmbedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if embedding.IsZero(vec) {
		s.logger.Info("Query has no searchable terms", zap.String("query", query))
		return result, nil
	}

	hits, err := s.notes.SearchSimilar(ctx, vec, noteType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	result.Hits = append(result.Hits, hits...)
	for _, h := range hits {
		result.ByNoteType[h.NoteType]++
	}

	s.logger.Info("Note search completed",
		zap.String("query", query),
		zap.Int("limit", limit),
		zap.Int("results", len(hits)),
	)
	return result, nil
}

// Summarize asks the LLM to answer the query from the top hits. It never
// fails: problems degrade to a fixed message.
func (s *SearchService) Summarize(ctx context.Context, query string, hits []models.NoteHit) string {
	if len(hits) == 0 {
		return noResultsSummary
	}
	if s.llm == nil {
		return llmDisabledSummary
	}

	summary, err := s.llm.Complete(ctx, s.buildSummaryPrompt(query, hits))
	if err != nil || strings.TrimSpace(summary) == "" {
		if err == nil {
			err = errors.New("empty completion")
		}
		s.logger.Warn("Summary generation failed", zap.Error(err))
		return summaryFailed
	}
	return summary
}

func (s *SearchService) buildSummaryPrompt(query string, hits []models.NoteHit) string {
	top := hits
	if len(top) > s.config.SummaryNotes {
		top = top[:s.config.SummaryNotes]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following clinical notes, provide a concise summary answering the query: %q\n\nClinical Notes:\n", query)
	for i, h := range top {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Note %d: %s", i+1, excerpt(h.Text, s.config.ExcerptLength))
	}
	b.WriteString("\n\nSummary:")
	return b.String()
}

// excerpt cuts text to at most n characters without splitting a rune.
func excerpt(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// NoteTypeCounts orders the facet counts for display.
func NoteTypeCounts(by map[models.NoteType]int) []NoteTypeCount {
	out := make([]NoteTypeCount, 0, len(by))
	for t, n := range by {
		out = append(out, NoteTypeCount{NoteType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].NoteType < out[j].NoteType
	})
	return out
}

type NoteTypeCount struct {
	NoteType models.NoteType
	Count    int
}

// ParseNoteType validates a note type filter. Empty and "All" mean no filter.
func ParseNoteType(raw string) (*models.NoteType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	for _, t := range models.NoteTypes {
		if strings.EqualFold(raw, string(t)) {
			nt := t
			return &nt, nil
		}
	}
	return nil, fmt.Errorf("unknown note type %q", raw)
}
