package models

import "time"

type Patient struct {
	ID        int64     `db:"patient_id"`
	MRN       string    `db:"mrn"`
	AgeYears  int       `db:"age_years"`
	Gender    string    `db:"gender"`
	Race      string    `db:"race"`
	CreatedAt time.Time `db:"created_at"`
}

// PatientDetails is the patient header shown next to search and similarity results.
type PatientDetails struct {
	Patient
	EncounterCount    int        `db:"encounter_count"`
	LastEncounterDate *time.Time `db:"last_encounter_date"`
	Departments       []string   `db:"departments"`
	Diagnoses         []string   `db:"diagnoses"`
	PrimaryDiagnosis  string     `db:"primary_diagnosis"`
}
