package models

import "time"

type Overview struct {
	TotalPatients   int        `db:"total_patients" json:"total_patients"`
	TotalEncounters int        `db:"total_encounters" json:"total_encounters"`
	TotalNotes      int        `db:"total_notes" json:"total_notes"`
	LatestNote      *time.Time `db:"latest_note" json:"latest_note,omitempty"`
}

type DepartmentStat struct {
	Department     string `db:"department" json:"department"`
	PatientCount   int    `db:"patient_count" json:"patient_count"`
	EncounterCount int    `db:"encounter_count" json:"encounter_count"`
	NoteCount      int    `db:"note_count" json:"note_count"`
}

type DiagnosisCount struct {
	Diagnosis string `db:"primary_diagnosis" json:"diagnosis"`
	Count     int    `db:"count" json:"count"`
}

type AgeBucket struct {
	AgeYears int `db:"age_years" json:"age_years"`
	Count    int `db:"count" json:"count"`
}

type DailyActivity struct {
	Date      time.Time `db:"date" json:"date"`
	NoteCount int       `db:"note_count" json:"note_count"`
}
