package main

import (
	"bytes"
	"testing"

	"clinical-intel/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSimilar(t *testing.T) {
	var buf bytes.Buffer
	err := renderSimilar(&buf, dto.SimilarPatientsResponse{
		PatientID:     7,
		MinSimilarity: 0.6,
		Count:         1,
		Patients: []dto.SimilarPatientResponse{
			{PatientID: 12, Similarity: 0.91234, AgeYears: 6, Gender: "F", PrimaryDiagnosis: "B-cell ALL", SharedTerms: 3},
		},
		Issues: []dto.IssueResponse{{Kind: "missing_patient", PatientID: 40, Message: "no demographics"}},
	})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "1 patient(s) with similarity >= 0.60 to patient 7")
	assert.Contains(t, out, "0.912")
	assert.Contains(t, out, "B-cell ALL")
	assert.Contains(t, out, "[missing_patient] patient 40: no demographics")
}

func TestRenderLabs_Omitted(t *testing.T) {
	var buf bytes.Buffer
	err := renderLabs(&buf, dto.LabComparisonResponse{
		CohortSize: 2,
		Threshold:  0.7,
		Omitted:    []dto.OmittedLabResponse{{TestName: "LDH", Contributors: 2, Required: 3}},
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "omitted LDH: 2 of 3 required contributors")
}

func TestRenderExtraction_SortedCategories(t *testing.T) {
	var buf bytes.Buffer
	err := renderExtraction(&buf, dto.ExtractionResponse{
		Extractor: "dictionary",
		Count:     2,
		ByCategory: map[string][]string{
			"symptom":    {"fever"},
			"medication": {"vincristine"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "2 term(s) found by dictionary\n  medication: vincristine\n  symptom: fever\n", buf.String())
}
