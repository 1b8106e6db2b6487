package models

import "time"

// LabResult keeps the value exactly as it arrived from the source system.
// Values such as "pending" or ">1000" are valid rows that simply do not parse.
type LabResult struct {
	ID          int64     `db:"lab_id"`
	PatientID   int64     `db:"patient_id"`
	EncounterID int64     `db:"encounter_id"`
	TestName    string    `db:"test_name"`
	Value       string    `db:"lab_value"`
	Unit        string    `db:"unit"`
	ResultDate  time.Time `db:"result_date"`
}
