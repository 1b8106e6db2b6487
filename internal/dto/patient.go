package dto

import (
	"time"

	"clinical-intel/internal/models"
)

type PatientResponse struct {
	PatientID         int64      `json:"patient_id"`
	MRN               string     `json:"mrn"`
	AgeYears          int        `json:"age_years"`
	Gender            string     `json:"gender"`
	Race              string     `json:"race,omitempty"`
	EncounterCount    int        `json:"encounter_count"`
	LastEncounterDate *time.Time `json:"last_encounter_date,omitempty"`
	Departments       []string   `json:"departments"`
	Diagnoses         []string   `json:"diagnoses"`
	PrimaryDiagnosis  string     `json:"primary_diagnosis,omitempty"`
}

func NewPatientResponse(d *models.PatientDetails) PatientResponse {
	out := PatientResponse{
		PatientID:         d.ID,
		MRN:               d.MRN,
		AgeYears:          d.AgeYears,
		Gender:            d.Gender,
		Race:              d.Race,
		EncounterCount:    d.EncounterCount,
		LastEncounterDate: d.LastEncounterDate,
		Departments:       d.Departments,
		Diagnoses:         d.Diagnoses,
		PrimaryDiagnosis:  d.PrimaryDiagnosis,
	}
	if out.Departments == nil {
		out.Departments = []string{}
	}
	if out.Diagnoses == nil {
		out.Diagnoses = []string{}
	}
	return out
}
