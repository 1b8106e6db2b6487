package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clinical-intel/internal/embedding"
	"clinical-intel/internal/models"
	"clinical-intel/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{DefaultLimit: 10, MaxLimit: 50, SummaryNotes: 3, ExcerptLength: 500}
}

func hit(id int64, noteType models.NoteType, text string, score float64) models.NoteHit {
	return models.NoteHit{
		ClinicalNote: models.ClinicalNote{ID: id, PatientID: id * 10, NoteType: noteType, Text: text},
		Score:        score,
	}
}

func newTestSearchService(notes *mockNoteStore, llm *recordingCompleter) *SearchService {
	if llm == nil {
		return NewSearchService(notes, embedding.NewHashingEmbedder(64), nil, testSearchConfig(), zap.NewNop())
	}
	return NewSearchService(notes, embedding.NewHashingEmbedder(64), llm, testSearchConfig(), zap.NewNop())
}

func TestSearchNotes_EmptyQuery(t *testing.T) {
	svc := newTestSearchService(newMockNoteStore(), nil)

	_, err := svc.SearchNotes(context.Background(), "   ", nil, 0)

	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchNotes_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -3, 10},
		{"within range", 25, 25},
		{"capped at max", 500, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := newMockNoteStore()
			svc := newTestSearchService(notes, nil)

			_, err := svc.SearchNotes(context.Background(), "neutropenic fever", nil, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.want, notes.lastLimit)
		})
	}
}

func TestSearchNotes_QueryWithoutTermsSkipsStore(t *testing.T) {
	notes := newMockNoteStore()
	notes.hits = []models.NoteHit{hit(1, models.NoteTypeProgress, "x", 0.9)}
	svc := newTestSearchService(notes, nil)

	res, err := svc.SearchNotes(context.Background(), "the and of ?!", nil, 0)

	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.NotNil(t, res.Hits)
	assert.Equal(t, 0, notes.searches)
}

func TestSearchNotes_CountsByNoteType(t *testing.T) {
	notes := newMockNoteStore()
	notes.hits = []models.NoteHit{
		hit(1, models.NoteTypeProgress, "fever overnight", 0.91),
		hit(2, models.NoteTypeDischarge, "discharged home", 0.80),
		hit(3, models.NoteTypeProgress, "afebrile", 0.72),
	}
	svc := newTestSearchService(notes, nil)
	filter := models.NoteTypeProgress

	res, err := svc.SearchNotes(context.Background(), "fever", &filter, 0)

	require.NoError(t, err)
	assert.Len(t, res.Hits, 3)
	assert.Equal(t, 2, res.ByNoteType[models.NoteTypeProgress])
	assert.Equal(t, 1, res.ByNoteType[models.NoteTypeDischarge])
	require.NotNil(t, notes.lastType)
	assert.Equal(t, models.NoteTypeProgress, *notes.lastType)

	counts := NoteTypeCounts(res.ByNoteType)
	require.Len(t, counts, 2)
	assert.Equal(t, models.NoteTypeProgress, counts[0].NoteType)
	assert.Equal(t, 2, counts[0].Count)
}

func TestSummarize_Fallbacks(t *testing.T) {
	hits := []models.NoteHit{hit(1, models.NoteTypeProgress, "fever", 0.9)}
	ctx := context.Background()

	t.Run("no hits", func(t *testing.T) {
		llm := &recordingCompleter{reply: "unused"}
		svc := newTestSearchService(newMockNoteStore(), llm)
		assert.Equal(t, noResultsSummary, svc.Summarize(ctx, "fever", nil))
		assert.Empty(t, llm.prompts)
	})

	t.Run("no llm configured", func(t *testing.T) {
		svc := newTestSearchService(newMockNoteStore(), nil)
		assert.Equal(t, llmDisabledSummary, svc.Summarize(ctx, "fever", hits))
	})

	t.Run("llm error", func(t *testing.T) {
		svc := newTestSearchService(newMockNoteStore(), &recordingCompleter{err: errors.New("502")})
		assert.Equal(t, summaryFailed, svc.Summarize(ctx, "fever", hits))
	})

	t.Run("blank completion", func(t *testing.T) {
		svc := newTestSearchService(newMockNoteStore(), &recordingCompleter{reply: "  \n"})
		assert.Equal(t, summaryFailed, svc.Summarize(ctx, "fever", hits))
	})

	t.Run("success", func(t *testing.T) {
		svc := newTestSearchService(newMockNoteStore(), &recordingCompleter{reply: "Two febrile episodes."})
		assert.Equal(t, "Two febrile episodes.", svc.Summarize(ctx, "fever", hits))
	})
}

func TestSummarize_PromptUsesTopNotesOnly(t *testing.T) {
	llm := &recordingCompleter{reply: "ok"}
	svc := newTestSearchService(newMockNoteStore(), llm)
	hits := []models.NoteHit{
		hit(1, models.NoteTypeProgress, "first note", 0.9),
		hit(2, models.NoteTypeProgress, "second note", 0.8),
		hit(3, models.NoteTypeProgress, strings.Repeat("x", 600), 0.7),
		hit(4, models.NoteTypeProgress, "fourth note", 0.6),
	}

	svc.Summarize(context.Background(), "fever course", hits)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, `"fever course"`)
	assert.Contains(t, prompt, "Note 1: first note")
	assert.Contains(t, prompt, "Note 3: "+strings.Repeat("x", 500)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("x", 501))
	assert.NotContains(t, prompt, "fourth note")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "hé", excerpt("héllo", 2))
	assert.Equal(t, "температура", excerpt("температура 38.5", 11))
	assert.Equal(t, "anything", excerpt("anything", 0))
}

func TestParseNoteType(t *testing.T) {
	nt, err := ParseNoteType("")
	require.NoError(t, err)
	assert.Nil(t, nt)

	nt, err = ParseNoteType("All")
	require.NoError(t, err)
	assert.Nil(t, nt)

	nt, err = ParseNoteType("discharge summary")
	require.NoError(t, err)
	require.NotNil(t, nt)
	assert.Equal(t, models.NoteTypeDischarge, *nt)

	_, err = ParseNoteType("Radiology Report")
	assert.Error(t, err)
}
