// Package seed generates a deterministic synthetic pediatric dataset for
// demos and local development.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"clinical-intel/internal/models"
)

type Dataset struct {
	Patients    []models.Patient
	Encounters  []models.Encounter
	Notes       []models.ClinicalNote
	Labs        []models.LabResult
	Medications []models.MedicationOrder
}

type Options struct {
	Patients int
	Seed     uint64
	// Start is the date of the earliest encounter.
	Start time.Time
	// OddLabRate is the share of lab rows stored with a non-numeric value.
	OddLabRate float64
}

// Generate builds the same dataset for the same options.
func Generate(opts Options) *Dataset {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	g := &generator{rng: rng, opts: opts, ds: &Dataset{}}
	for i := 1; i <= opts.Patients; i++ {
		g.patient(int64(i))
	}
	return g.ds
}

type generator struct {
	rng  *rand.Rand
	opts Options
	ds   *Dataset

	encounterID int64
	noteID      int64
	labID       int64
	orderID     int64
}

func (g *generator) pickProfile() profile {
	total := 0
	for _, p := range profiles {
		total += p.weight
	}
	n := g.rng.IntN(total)
	for _, p := range profiles {
		if n < p.weight {
			return p
		}
		n -= p.weight
	}
	return profiles[len(profiles)-1]
}

func (g *generator) patient(id int64) {
	prof := g.pickProfile()
	gender := "F"
	if g.rng.IntN(2) == 0 {
		gender = "M"
	}
	p := models.Patient{
		ID:       id,
		MRN:      fmt.Sprintf("MRN%08d", id),
		AgeYears: prof.ageMin + g.rng.IntN(prof.ageMax-prof.ageMin+1),
		Gender:   gender,
		Race:     races[g.rng.IntN(len(races))],
	}
	g.ds.Patients = append(g.ds.Patients, p)

	visits := 1 + g.rng.IntN(3)
	date := g.opts.Start.AddDate(0, 0, g.rng.IntN(180))
	for v := 0; v < visits; v++ {
		g.encounter(p, prof, date, v, visits)
		date = date.AddDate(0, 0, 3+g.rng.IntN(30))
	}
}

func (g *generator) encounter(p models.Patient, prof profile, date time.Time, visit, visits int) {
	g.encounterID++
	enc := models.Encounter{
		ID:               g.encounterID,
		PatientID:        p.ID,
		EncounterDate:    date,
		Department:       prof.department,
		EncounterType:    "Inpatient",
		PrimaryDiagnosis: prof.diagnosis,
	}
	if prof.department == models.DepartmentEmergency {
		enc.EncounterType = "Emergency"
	}
	g.ds.Encounters = append(g.ds.Encounters, enc)

	noteType := models.NoteTypeProgress
	switch {
	case visit == 0:
		noteType = models.NoteTypeHistory
	case visit == visits-1:
		noteType = models.NoteTypeDischarge
	case g.rng.IntN(4) == 0:
		noteType = models.NoteTypeConsultation
	}
	g.noteID++
	g.ds.Notes = append(g.ds.Notes, models.ClinicalNote{
		ID:          g.noteID,
		PatientID:   p.ID,
		EncounterID: enc.ID,
		NoteType:    noteType,
		NoteDate:    date.Add(time.Duration(8+g.rng.IntN(10)) * time.Hour),
		Author:      authors[g.rng.IntN(len(authors))],
		Text:        g.noteText(p, prof),
	})

	for _, l := range prof.labs {
		g.labID++
		g.ds.Labs = append(g.ds.Labs, models.LabResult{
			ID:          g.labID,
			PatientID:   p.ID,
			EncounterID: enc.ID,
			TestName:    l.name,
			Value:       g.labValue(l),
			Unit:        l.unit,
			ResultDate:  date.Add(6 * time.Hour),
		})
	}

	for _, m := range prof.meds {
		if g.rng.Float64() < 0.4 {
			continue
		}
		g.orderID++
		g.ds.Medications = append(g.ds.Medications, models.MedicationOrder{
			ID:          g.orderID,
			PatientID:   p.ID,
			EncounterID: enc.ID,
			Name:        m.name,
			Class:       m.class,
			Dose:        m.dose,
			Route:       m.route,
			OrderDate:   date.Add(2 * time.Hour),
		})
	}
}

func (g *generator) noteText(p models.Patient, prof profile) string {
	sex := "girl"
	if p.Gender == "M" {
		sex = "boy"
	}
	findings := g.sample(prof.findings, 2)
	plans := g.sample(prof.plans, 2)

	var b strings.Builder
	fmt.Fprintf(&b, "%d-year-old %s with %s presenting with %s and %s. ", p.AgeYears, sex, prof.diagnosis, findings[0], findings[1])
	b.WriteString(exams[g.rng.IntN(len(exams))])
	fmt.Fprintf(&b, " Plan: %s; %s.", plans[0], plans[1])
	return b.String()
}

// sample picks n distinct items, or all of them when there are fewer.
func (g *generator) sample(items []string, n int) []string {
	idx := g.rng.Perm(len(items))
	out := make([]string, 0, n)
	for i := 0; i < n && i < len(idx); i++ {
		out = append(out, items[idx[i]])
	}
	for len(out) < n {
		out = append(out, items[0])
	}
	return out
}

func (g *generator) labValue(l lab) string {
	if g.rng.Float64() < g.opts.OddLabRate {
		return oddLabValues[g.rng.IntN(len(oddLabValues))]
	}
	v := math.Max(0, l.mean+g.rng.NormFloat64()*l.sd)
	if l.mean >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
