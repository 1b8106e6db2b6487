package models

import (
	"time"

	"github.com/google/uuid"
)

type TermCategory string

const (
	TermCategoryMedication TermCategory = "medication"
	TermCategorySymptom    TermCategory = "symptom"
	TermCategoryLab        TermCategory = "lab"
	TermCategoryOncology   TermCategory = "oncology"
	TermCategoryDiagnosis  TermCategory = "diagnosis"
)

// ExtractedTerm is a term found in a text, with byte offsets into that text.
type ExtractedTerm struct {
	Term     string       `json:"term"`
	Category TermCategory `json:"category"`
	Start    int          `json:"start"`
	End      int          `json:"end"`
	Score    float64      `json:"score"`
}

// MedicalTerm is a persisted ExtractedTerm tied to the note it came from.
type MedicalTerm struct {
	ID        uuid.UUID    `db:"term_id"`
	RunID     uuid.UUID    `db:"run_id"`
	NoteID    int64        `db:"note_id"`
	Term      string       `db:"term"`
	Category  TermCategory `db:"category"`
	StartPos  int          `db:"start_pos"`
	EndPos    int          `db:"end_pos"`
	Score     float64      `db:"score"`
	Extractor string       `db:"extractor"`
	CreatedAt time.Time    `db:"created_at"`
}
