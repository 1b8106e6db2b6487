package models

import "time"

type Department string

const (
	DepartmentOncology    Department = "Oncology"
	DepartmentPulmonology Department = "Pulmonology"
	DepartmentGastro      Department = "Gastroenterology"
	DepartmentEmergency   Department = "Emergency"
	DepartmentGeneralPeds Department = "General Pediatrics"
	DepartmentCardiology  Department = "Cardiology"
)

type Encounter struct {
	ID               int64      `db:"encounter_id"`
	PatientID        int64      `db:"patient_id"`
	EncounterDate    time.Time  `db:"encounter_date"`
	Department       Department `db:"department"`
	EncounterType    string     `db:"encounter_type"`
	PrimaryDiagnosis string     `db:"primary_diagnosis"`
}
