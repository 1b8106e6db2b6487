package models

import "time"

type NoteType string

const (
	NoteTypeProgress     NoteType = "Progress Note"
	NoteTypeHistory      NoteType = "H&P Note"
	NoteTypeDischarge    NoteType = "Discharge Summary"
	NoteTypeConsultation NoteType = "Consultation Note"
)

// NoteTypes lists the note types accepted by the search filter.
var NoteTypes = []NoteType{NoteTypeProgress, NoteTypeHistory, NoteTypeDischarge, NoteTypeConsultation}

type ClinicalNote struct {
	ID          int64     `db:"note_id"`
	PatientID   int64     `db:"patient_id"`
	EncounterID int64     `db:"encounter_id"`
	NoteType    NoteType  `db:"note_type"`
	NoteDate    time.Time `db:"note_date"`
	Author      string    `db:"author"`
	Text        string    `db:"note_text"`
}

// NoteHit is a clinical note returned by semantic search with its relevance score.
type NoteHit struct {
	ClinicalNote
	Score float64 `db:"score"`
}
