package dto

import (
	"time"

	"clinical-intel/internal/models"
	"clinical-intel/internal/service"
)

type SearchNotesRequest struct {
	Query    string `query:"q" validate:"required,max=1000"`
	NoteType string `query:"note_type"`
	Limit    int    `query:"limit" validate:"gte=0"`
	Summary  bool   `query:"summary"`
}

type NoteHitResponse struct {
	NoteID    int64     `json:"note_id"`
	PatientID int64     `json:"patient_id"`
	NoteType  string    `json:"note_type"`
	NoteDate  time.Time `json:"note_date"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
}

type NoteTypeCountResponse struct {
	NoteType string `json:"note_type"`
	Count    int    `json:"count"`
}

type SearchNotesResponse struct {
	Query     string                  `json:"query"`
	Count     int                     `json:"count"`
	Results   []NoteHitResponse       `json:"results"`
	NoteTypes []NoteTypeCountResponse `json:"note_types"`
	Summary   string                  `json:"summary,omitempty"`
}

func NewSearchNotesResponse(res *service.SearchResult) SearchNotesResponse {
	out := SearchNotesResponse{
		Query:     res.Query,
		Count:     len(res.Hits),
		Results:   make([]NoteHitResponse, 0, len(res.Hits)),
		NoteTypes: []NoteTypeCountResponse{},
		Summary:   res.Summary,
	}
	for _, h := range res.Hits {
		out.Results = append(out.Results, newNoteHit(h))
	}
	for _, c := range service.NoteTypeCounts(res.ByNoteType) {
		out.NoteTypes = append(out.NoteTypes, NoteTypeCountResponse{NoteType: string(c.NoteType), Count: c.Count})
	}
	return out
}

func newNoteHit(h models.NoteHit) NoteHitResponse {
	return NoteHitResponse{
		NoteID:    h.ID,
		PatientID: h.PatientID,
		NoteType:  string(h.NoteType),
		NoteDate:  h.NoteDate,
		Author:    h.Author,
		Text:      h.Text,
		Score:     h.Score,
	}
}
