package extraction

import (
	"context"
	"errors"
	"testing"

	"clinical-intel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultExtractor(t *testing.T) *DictionaryExtractor {
	t.Helper()
	dict, err := LoadDictionary("")
	require.NoError(t, err)
	return NewDictionaryExtractor(dict)
}

func TestDictionaryExtractorFindsTermsWithOffsets(t *testing.T) {
	text := "Day 8 of induction for B-cell ALL. Vincristine given; Neutropenic fever overnight, WBC 0.8."
	terms, err := defaultExtractor(t).Extract(context.Background(), text)
	require.NoError(t, err)

	byTerm := map[string]models.ExtractedTerm{}
	for _, term := range terms {
		assert.Equal(t, term.Term, text[term.Start:term.End])
		byTerm[term.Term] = term
	}

	assert.Equal(t, models.TermCategoryOncology, byTerm["induction"].Category)
	assert.Equal(t, models.TermCategoryOncology, byTerm["B-cell ALL"].Category)
	assert.Equal(t, models.TermCategoryMedication, byTerm["Vincristine"].Category)
	assert.Equal(t, models.TermCategoryLab, byTerm["WBC"].Category)

	// longest match wins over the bare "fever"
	assert.Contains(t, byTerm, "Neutropenic fever")
	assert.NotContains(t, byTerm, "fever")
}

func TestDictionaryExtractorRespectsWordBoundaries(t *testing.T) {
	dict, err := ParseDictionary([]byte("lab:\n  - ALT\nsymptom:\n  - rash\n"))
	require.NoError(t, err)

	terms, err := NewDictionaryExtractor(dict).Extract(context.Background(), "Although alternating, no crashes. ALT normal.")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "ALT", terms[0].Term)
}

func TestParseDictionaryFirstCategoryWins(t *testing.T) {
	dict, err := ParseDictionary([]byte("oncology:\n  - relapse\nsymptom:\n  - Relapse\n  - cough\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, dict.Len())

	terms, err := NewDictionaryExtractor(dict).Extract(context.Background(), "early relapse")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, models.TermCategoryOncology, terms[0].Category)
}

func TestParseDictionaryRejectsGarbage(t *testing.T) {
	_, err := ParseDictionary([]byte("- just\n- a list\n"))
	assert.Error(t, err)

	_, err = ParseDictionary([]byte("medication: []\n"))
	assert.Error(t, err)
}

func TestTermSetIntersect(t *testing.T) {
	a := NewTermSet("Vincristine", "5-FU", "fever")
	b := NewTermSet("vincristine", "5 fu", "cough", "")

	assert.Equal(t, 2, a.Intersect(b))
	assert.Equal(t, a.Intersect(b), b.Intersect(a))
	assert.Equal(t, []string{"5 fu", "cough", "vincristine"}, b.Sorted())
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory([]models.ExtractedTerm{
		{Term: "fever", Category: models.TermCategorySymptom},
		{Term: "WBC", Category: models.TermCategoryLab},
		{Term: "cough", Category: models.TermCategorySymptom},
	})
	require.Len(t, groups[models.TermCategorySymptom], 2)
	assert.Equal(t, "cough", groups[models.TermCategorySymptom][1].Term)
	assert.Len(t, groups[models.TermCategoryLab], 1)
}

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.reply, s.err }

func TestLLMExtractorAnchorsTerms(t *testing.T) {
	text := "Fever and cough. Started albuterol; fever resolved."
	reply := "```json\n[" +
		`{"term":"fever","category":"symptom"},` +
		`{"term":"fever","category":"symptom"},` +
		`{"term":"Albuterol","category":"Medication"},` +
		`{"term":"aspirin","category":"medication"},` +
		`{"term":"cough","category":"gossip"}` +
		"]\n```"

	terms, err := NewLLMExtractor(stubCompleter{reply: reply}).Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, terms, 3)

	assert.Equal(t, "Fever", terms[0].Term)
	assert.Equal(t, 0, terms[0].Start)
	assert.Equal(t, "albuterol", terms[1].Term)
	assert.Equal(t, models.TermCategoryMedication, terms[1].Category)
	assert.Equal(t, "fever", terms[2].Term)
	for _, term := range terms {
		assert.Equal(t, term.Term, text[term.Start:term.End])
		assert.Equal(t, llmTermScore, term.Score)
	}
}

func TestLLMExtractorErrors(t *testing.T) {
	_, err := NewLLMExtractor(stubCompleter{err: errors.New("quota")}).Extract(context.Background(), "fever")
	assert.ErrorContains(t, err, "quota")

	_, err = NewLLMExtractor(stubCompleter{reply: "I cannot help with that"}).Extract(context.Background(), "fever")
	assert.Error(t, err)
}

func TestMergePrefersHigherScore(t *testing.T) {
	text := "fever and cough"
	llm := NewLLMExtractor(stubCompleter{reply: `[{"term":"fever","category":"symptom"},{"term":"and cough","category":"symptom"}]`})
	m := NewMerge(defaultExtractor(t), llm)

	terms, err := m.Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, terms, 3)
	assert.Equal(t, "fever", terms[0].Term)
	assert.Equal(t, 1.0, terms[0].Score)
	assert.Equal(t, "and cough", terms[1].Term)
	assert.Equal(t, "cough", terms[2].Term)
	assert.Equal(t, "dictionary+llm", m.Name())
}
