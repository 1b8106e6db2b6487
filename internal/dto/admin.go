package dto

import "clinical-intel/internal/service"

type ReindexResponse struct {
	Patients         int     `json:"patients"`
	PatientsEmbedded int     `json:"patients_embedded"`
	PatientsUpToDate int     `json:"patients_up_to_date"`
	PatientsWithout  int     `json:"patients_without_notes"`
	PatientsFailed   int     `json:"patients_failed"`
	NotesEmbedded    int     `json:"notes_embedded"`
	NotesExtracted   int     `json:"notes_extracted"`
	NotesFailed      int     `json:"notes_failed"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

func NewReindexResponse(r *service.IndexingReport) ReindexResponse {
	return ReindexResponse{
		Patients:         r.Patients,
		PatientsEmbedded: r.PatientsEmbedded,
		PatientsUpToDate: r.PatientsUpToDate,
		PatientsWithout:  r.PatientsWithout,
		PatientsFailed:   r.PatientsFailed,
		NotesEmbedded:    r.NotesEmbedded,
		NotesExtracted:   r.NotesExtracted,
		NotesFailed:      r.NotesFailed,
		DurationSeconds:  r.Duration.Seconds(),
	}
}

// ActivityQuery selects the note activity window in days.
type ActivityQuery struct {
	Days int `query:"days" validate:"gte=0,lte=3650"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
