package dto

import (
	"clinical-intel/internal/models"
	"clinical-intel/internal/service"

	"github.com/google/uuid"
)

type ExtractTextRequest struct {
	Text string `json:"text" validate:"required,max=100000"`
}

type TermResponse struct {
	Term     string  `json:"term"`
	Category string  `json:"category"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Score    float64 `json:"score"`
}

type ExtractionResponse struct {
	NoteID     int64               `json:"note_id,omitempty"`
	RunID      string              `json:"run_id,omitempty"`
	Extractor  string              `json:"extractor"`
	Count      int                 `json:"count"`
	Terms      []TermResponse      `json:"terms"`
	ByCategory map[string][]string `json:"by_category"`
}

func NewExtractionResponse(res *service.ExtractionResult) ExtractionResponse {
	out := ExtractionResponse{
		NoteID:     res.NoteID,
		Extractor:  res.Extractor,
		Count:      len(res.Terms),
		Terms:      make([]TermResponse, 0, len(res.Terms)),
		ByCategory: make(map[string][]string, len(res.Groups)),
	}
	if res.RunID != uuid.Nil {
		out.RunID = res.RunID.String()
	}
	for _, t := range res.Terms {
		out.Terms = append(out.Terms, TermResponse{
			Term:     t.Term,
			Category: string(t.Category),
			Start:    t.Start,
			End:      t.End,
			Score:    t.Score,
		})
	}
	for cat, terms := range res.Groups {
		out.ByCategory[string(cat)] = termNames(terms)
	}
	return out
}

func termNames(terms []models.ExtractedTerm) []string {
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Term)
	}
	return names
}
