package cohort

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"clinical-intel/internal/models"
)

type MedicationStat struct {
	Name          string
	Class         models.MedicationClass
	PatientCount  int
	AvgSimilarity float64
	// Percent is this medication's share of all reported cohort usage.
	Percent float64
}

type MedicationProfile struct {
	FocalID     int64
	Threshold   float64
	CohortSize  int
	Medications []MedicationStat
	Issues      []DataQualityError
}

// MedicationProfile summarises oncology-relevant medications across the cohort.
func (e *Engine) MedicationProfile(ctx context.Context, focalID int64, threshold float64) (*MedicationProfile, error) {
	if err := ValidateThreshold("threshold", threshold); err != nil {
		return nil, err
	}

	profile := &MedicationProfile{FocalID: focalID, Threshold: threshold, Medications: []MedicationStat{}}

	members, err := e.cohort(ctx, focalID, threshold, 0)
	var missing *MissingEmbeddingError
	if errors.As(err, &missing) {
		profile.Issues = append(profile.Issues, e.issue(IssueMissingFocalEmb, focalID, err))
		return profile, nil
	}
	if err != nil {
		return nil, err
	}
	profile.CohortSize = len(members)
	if len(members) == 0 {
		return profile, nil
	}

	similarity := make(map[int64]float64, len(members))
	for _, m := range members {
		similarity[m.ID] = m.Similarity
	}

	orders, err := e.store.MedicationOrders(ctx, memberIDs(members), models.CohortMedicationClasses)
	if err != nil {
		return nil, fmt.Errorf("failed to load cohort medications: %w", err)
	}

	type medKey struct {
		name  string
		class models.MedicationClass
	}
	patients := make(map[medKey]map[int64]struct{})
	for _, o := range orders {
		if _, ok := similarity[o.PatientID]; !ok {
			continue
		}
		name := strings.TrimSpace(o.Name)
		if name == "" {
			profile.Issues = append(profile.Issues, e.issue(IssueBadMedication, o.PatientID,
				fmt.Errorf("medication order %d has no name", o.ID)))
			continue
		}
		k := medKey{name: name, class: o.Class}
		if patients[k] == nil {
			patients[k] = make(map[int64]struct{})
		}
		patients[k][o.PatientID] = struct{}{}
	}

	for k, ps := range patients {
		if len(ps) < MinMedicationPatients {
			continue
		}
		var sum float64
		for id := range ps {
			sum += similarity[id]
		}
		profile.Medications = append(profile.Medications, MedicationStat{
			Name:          k.name,
			Class:         k.class,
			PatientCount:  len(ps),
			AvgSimilarity: sum / float64(len(ps)),
		})
	}

	sort.Slice(profile.Medications, func(i, j int) bool {
		a, b := profile.Medications[i], profile.Medications[j]
		if a.PatientCount != b.PatientCount {
			return a.PatientCount > b.PatientCount
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Class < b.Class
	})

	counts := make([]int, len(profile.Medications))
	for i, m := range profile.Medications {
		counts[i] = m.PatientCount
	}
	for i, pct := range percentages(counts) {
		profile.Medications[i].Percent = pct
	}
	return profile, nil
}
