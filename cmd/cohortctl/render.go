package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"clinical-intel/internal/dto"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderIssues(w io.Writer, issues []dto.IssueResponse) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d data quality issue(s):\n", len(issues))
	for _, i := range issues {
		fmt.Fprintf(w, "  [%s] patient %d: %s\n", i.Kind, i.PatientID, i.Message)
	}
}

func renderPatient(w io.Writer, p dto.PatientResponse) error {
	tw := table(w)
	fmt.Fprintf(tw, "Patient\t%d\n", p.PatientID)
	fmt.Fprintf(tw, "MRN\t%s\n", p.MRN)
	fmt.Fprintf(tw, "Age\t%d\n", p.AgeYears)
	fmt.Fprintf(tw, "Gender\t%s\n", p.Gender)
	fmt.Fprintf(tw, "Encounters\t%d\n", p.EncounterCount)
	if p.LastEncounterDate != nil {
		fmt.Fprintf(tw, "Last encounter\t%s\n", p.LastEncounterDate.Format("2006-01-02"))
	}
	fmt.Fprintf(tw, "Departments\t%s\n", strings.Join(p.Departments, ", "))
	fmt.Fprintf(tw, "Diagnoses\t%s\n", strings.Join(p.Diagnoses, "; "))
	return tw.Flush()
}

func renderSimilar(w io.Writer, r dto.SimilarPatientsResponse) error {
	fmt.Fprintf(w, "%d patient(s) with similarity >= %.2f to patient %d\n\n", r.Count, r.MinSimilarity, r.PatientID)
	tw := table(w)
	fmt.Fprintln(tw, "PATIENT\tSIMILARITY\tAGE\tGENDER\tDIAGNOSIS\tSHARED TERMS")
	for _, p := range r.Patients {
		fmt.Fprintf(tw, "%d\t%.3f\t%d\t%s\t%s\t%d\n", p.PatientID, p.Similarity, p.AgeYears, p.Gender, p.PrimaryDiagnosis, p.SharedTerms)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	renderIssues(w, r.Issues)
	return nil
}

func renderMedications(w io.Writer, r dto.MedicationProfileResponse) error {
	fmt.Fprintf(w, "Cohort of %d patient(s) at threshold %.2f\n\n", r.CohortSize, r.Threshold)
	tw := table(w)
	fmt.Fprintln(tw, "MEDICATION\tCLASS\tPATIENTS\tAVG SIMILARITY\tPERCENT")
	for _, m := range r.Medications {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\t%.1f%%\n", m.Name, m.Class, m.PatientCount, m.AvgSimilarity, m.Percent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	renderIssues(w, r.Issues)
	return nil
}

func renderLabs(w io.Writer, r dto.LabComparisonResponse) error {
	fmt.Fprintf(w, "Cohort of %d patient(s) at threshold %.2f\n\n", r.CohortSize, r.Threshold)
	tw := table(w)
	fmt.Fprintln(tw, "TEST\tPATIENT\tCOHORT MEAN\tSTD\tN\tSTATUS")
	for _, l := range r.Labs {
		fmt.Fprintf(tw, "%s\t%.2f %s\t%.2f\t%.2f\t%d\t%s\n", l.TestName, l.PatientValue, l.Unit, l.CohortMean, l.CohortStdDev, l.Contributors, l.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, o := range r.Omitted {
		fmt.Fprintf(w, "omitted %s: %d of %d required contributors\n", o.TestName, o.Contributors, o.Required)
	}
	renderIssues(w, r.Issues)
	return nil
}

func renderSearch(w io.Writer, r dto.SearchNotesResponse) error {
	fmt.Fprintf(w, "%d result(s) for %q\n\n", r.Count, r.Query)
	tw := table(w)
	fmt.Fprintln(tw, "SCORE\tNOTE\tPATIENT\tTYPE\tDATE")
	for _, h := range r.Results {
		fmt.Fprintf(tw, "%.3f\t%d\t%d\t%s\t%s\n", h.Score, h.NoteID, h.PatientID, h.NoteType, h.NoteDate.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "\nSummary:\n%s\n", r.Summary)
	}
	return nil
}

func renderExtraction(w io.Writer, r dto.ExtractionResponse) error {
	fmt.Fprintf(w, "%d term(s) found by %s\n", r.Count, r.Extractor)
	categories := make([]string, 0, len(r.ByCategory))
	for c := range r.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %s\n", c, strings.Join(r.ByCategory[c], ", "))
	}
	return nil
}
