package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clinical-intel/internal/models"
)

// Completer is the slice of an LLM client the extractor needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const llmTermScore = 0.8

// LLMExtractor asks a language model for entities and anchors every answer
// back onto the source text. Entities the model invents are dropped.
type LLMExtractor struct {
	llm Completer
}

func NewLLMExtractor(llm Completer) *LLMExtractor {
	return &LLMExtractor{llm: llm}
}

func (e *LLMExtractor) Name() string { return "llm" }

type llmEntity struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]models.ExtractedTerm, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	raw, err := e.llm.Complete(ctx, buildExtractionPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("llm extraction failed: %w", err)
	}

	entities, err := parseLLMEntities(raw)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)
	used := make(map[int]bool)
	var out []models.ExtractedTerm
	for _, ent := range entities {
		category, ok := knownCategory(ent.Category)
		if !ok || strings.TrimSpace(ent.Term) == "" {
			continue
		}
		start := locate(lower, strings.ToLower(ent.Term), used)
		if start < 0 {
			continue
		}
		end := start + len(ent.Term)
		if end > len(text) || !strings.EqualFold(text[start:end], ent.Term) {
			continue
		}
		used[start] = true
		out = append(out, models.ExtractedTerm{
			Term:     text[start:end],
			Category: category,
			Start:    start,
			End:      end,
			Score:    llmTermScore,
		})
	}
	SortByOffset(out)
	return out, nil
}

func buildExtractionPrompt(text string) string {
	return `Extract medical entities from the pediatric clinical note below.
Return ONLY a JSON array of objects with fields "term" and "category".
"term" must be copied exactly as it appears in the note.
"category" must be one of: medication, symptom, lab, oncology, diagnosis.

Note:
` + text
}

// parseLLMEntities tolerates the markdown fences models like to add.
func parseLLMEntities(raw string) ([]llmEntity, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "["); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, "]"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}

	var entities []llmEntity
	if err := json.Unmarshal([]byte(s), &entities); err != nil {
		return nil, fmt.Errorf("failed to parse llm entities: %w", err)
	}
	return entities, nil
}

func knownCategory(c string) (models.TermCategory, bool) {
	switch cat := models.TermCategory(strings.ToLower(strings.TrimSpace(c))); cat {
	case models.TermCategoryMedication, models.TermCategorySymptom, models.TermCategoryLab,
		models.TermCategoryOncology, models.TermCategoryDiagnosis:
		return cat, true
	}
	return "", false
}

// locate finds the first occurrence of term not already claimed.
func locate(lowerText, lowerTerm string, used map[int]bool) int {
	from := 0
	for {
		i := strings.Index(lowerText[from:], lowerTerm)
		if i < 0 {
			return -1
		}
		pos := from + i
		if !used[pos] {
			return pos
		}
		from = pos + 1
	}
}
