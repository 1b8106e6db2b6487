package models

import "time"

type MedicationClass string

const (
	MedicationClassChemotherapy MedicationClass = "Chemotherapy"
	MedicationClassGrowthFactor MedicationClass = "Growth Factor"
	MedicationClassAntiemetic   MedicationClass = "Antiemetic"
	MedicationClassAntibiotic   MedicationClass = "Antibiotic"
	MedicationClassAnalgesic    MedicationClass = "Analgesic"
	MedicationClassSteroid      MedicationClass = "Corticosteroid"
	MedicationClassBronchodil   MedicationClass = "Bronchodilator"
)

// CohortMedicationClasses are the classes considered clinically relevant for oncology cohorts.
var CohortMedicationClasses = []MedicationClass{
	MedicationClassChemotherapy,
	MedicationClassGrowthFactor,
	MedicationClassAntiemetic,
}

type MedicationOrder struct {
	ID          int64           `db:"order_id"`
	PatientID   int64           `db:"patient_id"`
	EncounterID int64           `db:"encounter_id"`
	Name        string          `db:"medication_name"`
	Class       MedicationClass `db:"medication_class"`
	Dose        string          `db:"dose"`
	Route       string          `db:"route"`
	OrderDate   time.Time       `db:"order_date"`
}
