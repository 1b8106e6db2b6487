package models

import "time"

// PatientEmbedding is the single, latest-only embedding of a patient's most recent note.
type PatientEmbedding struct {
	PatientID int64     `db:"patient_id"`
	NoteID    int64     `db:"note_id"`
	NoteDate  time.Time `db:"note_date"`
	Model     string    `db:"model"`
	Vector    []float32 `db:"embedding"`
	UpdatedAt time.Time `db:"updated_at"`
}
