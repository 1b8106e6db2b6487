package dto

import (
	"clinical-intel/internal/cohort"
)

// CohortQuery carries the optional overrides shared by the cohort endpoints.
// Unset thresholds fall back to the server configuration.
type CohortQuery struct {
	MinSimilarity *float64 `query:"min_similarity" validate:"omitempty,gte=0,lte=1"`
	MaxResults    *int     `query:"max_results" validate:"omitempty,gte=1,lte=500"`
	Threshold     *float64 `query:"threshold" validate:"omitempty,gte=0,lte=1"`
}

type IssueResponse struct {
	Kind      string `json:"kind"`
	PatientID int64  `json:"patient_id"`
	Message   string `json:"message"`
}

type SimilarPatientResponse struct {
	PatientID        int64   `json:"patient_id"`
	Similarity       float64 `json:"similarity"`
	AgeYears         int     `json:"age_years"`
	Gender           string  `json:"gender"`
	PrimaryDiagnosis string  `json:"primary_diagnosis"`
	SharedTerms      int     `json:"shared_terms"`
}

type SimilarPatientsResponse struct {
	PatientID     int64                    `json:"patient_id"`
	MinSimilarity float64                  `json:"min_similarity"`
	Count         int                      `json:"count"`
	Patients      []SimilarPatientResponse `json:"patients"`
	Issues        []IssueResponse          `json:"issues"`
}

type MedicationStatResponse struct {
	Name          string  `json:"medication_name"`
	Class         string  `json:"medication_class"`
	PatientCount  int     `json:"patient_count"`
	AvgSimilarity float64 `json:"avg_similarity"`
	Percent       float64 `json:"percent"`
}

type MedicationProfileResponse struct {
	PatientID   int64                    `json:"patient_id"`
	Threshold   float64                  `json:"threshold"`
	CohortSize  int                      `json:"cohort_size"`
	Medications []MedicationStatResponse `json:"medications"`
	Issues      []IssueResponse          `json:"issues"`
}

type LabStatResponse struct {
	TestName     string  `json:"test_name"`
	Unit         string  `json:"unit"`
	PatientValue float64 `json:"patient_value"`
	CohortMean   float64 `json:"cohort_mean"`
	CohortStdDev float64 `json:"cohort_std"`
	Contributors int     `json:"contributors"`
	Samples      int     `json:"samples"`
	Status       string  `json:"status"`
}

type OmittedLabResponse struct {
	TestName     string `json:"test_name"`
	Contributors int    `json:"contributors"`
	Required     int    `json:"required"`
}

type LabComparisonResponse struct {
	PatientID  int64                `json:"patient_id"`
	Threshold  float64              `json:"threshold"`
	CohortSize int                  `json:"cohort_size"`
	Labs       []LabStatResponse    `json:"labs"`
	Omitted    []OmittedLabResponse `json:"omitted"`
	Issues     []IssueResponse      `json:"issues"`
}

func newIssues(issues []cohort.DataQualityError) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, i := range issues {
		msg := ""
		if i.Err != nil {
			msg = i.Err.Error()
		}
		out = append(out, IssueResponse{Kind: i.Kind, PatientID: i.PatientID, Message: msg})
	}
	return out
}

func NewSimilarPatientsResponse(res *cohort.SimilarResult) SimilarPatientsResponse {
	out := SimilarPatientsResponse{
		PatientID:     res.FocalID,
		MinSimilarity: res.MinSimilarity,
		Count:         len(res.Patients),
		Patients:      make([]SimilarPatientResponse, 0, len(res.Patients)),
		Issues:        newIssues(res.Issues),
	}
	for _, p := range res.Patients {
		out.Patients = append(out.Patients, SimilarPatientResponse{
			PatientID:        p.PatientID,
			Similarity:       p.Similarity,
			AgeYears:         p.AgeYears,
			Gender:           p.Gender,
			PrimaryDiagnosis: p.PrimaryDiagnosis,
			SharedTerms:      p.SharedTerms,
		})
	}
	return out
}

func NewMedicationProfileResponse(res *cohort.MedicationProfile) MedicationProfileResponse {
	out := MedicationProfileResponse{
		PatientID:   res.FocalID,
		Threshold:   res.Threshold,
		CohortSize:  res.CohortSize,
		Medications: make([]MedicationStatResponse, 0, len(res.Medications)),
		Issues:      newIssues(res.Issues),
	}
	for _, m := range res.Medications {
		out.Medications = append(out.Medications, MedicationStatResponse{
			Name:          m.Name,
			Class:         string(m.Class),
			PatientCount:  m.PatientCount,
			AvgSimilarity: m.AvgSimilarity,
			Percent:       m.Percent,
		})
	}
	return out
}

func NewLabComparisonResponse(res *cohort.LabComparison) LabComparisonResponse {
	out := LabComparisonResponse{
		PatientID:  res.FocalID,
		Threshold:  res.Threshold,
		CohortSize: res.CohortSize,
		Labs:       make([]LabStatResponse, 0, len(res.Labs)),
		Omitted:    make([]OmittedLabResponse, 0, len(res.Omitted)),
		Issues:     newIssues(res.Issues),
	}
	for _, l := range res.Labs {
		out.Labs = append(out.Labs, LabStatResponse{
			TestName:     l.TestName,
			Unit:         l.Unit,
			PatientValue: l.FocalValue,
			CohortMean:   l.CohortMean,
			CohortStdDev: l.CohortStdDev,
			Contributors: l.Contributors,
			Samples:      l.Samples,
			Status:       string(l.Status),
		})
	}
	for _, o := range res.Omitted {
		out.Omitted = append(out.Omitted, OmittedLabResponse{
			TestName:     o.TestName,
			Contributors: o.Contributors,
			Required:     o.Required,
		})
	}
	return out
}
