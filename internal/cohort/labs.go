package cohort

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"clinical-intel/internal/models"
)

type LabStatus string

const (
	LabAboveCohort LabStatus = "Above Cohort"
	LabBelowCohort LabStatus = "Below Cohort"
	LabWithinRange LabStatus = "Within Range"
)

// Classify places value relative to mean ± one standard deviation.
func Classify(value, mean, sd float64) LabStatus {
	switch {
	case value > mean+sd:
		return LabAboveCohort
	case value < mean-sd:
		return LabBelowCohort
	default:
		return LabWithinRange
	}
}

type LabStat struct {
	TestName     string
	Unit         string
	FocalValue   float64
	CohortMean   float64
	CohortStdDev float64
	Contributors int
	Samples      int
	Status       LabStatus
}

type LabComparison struct {
	FocalID    int64
	Threshold  float64
	CohortSize int
	Labs       []LabStat
	Omitted    []InsufficientCohortError
	Issues     []DataQualityError
}

// LabComparison compares the focal patient's latest value for each lab test
// against every numeric result of that test in the cohort.
func (e *Engine) LabComparison(ctx context.Context, focalID int64, threshold float64) (*LabComparison, error) {
	if err := ValidateThreshold("threshold", threshold); err != nil {
		return nil, err
	}

	res := &LabComparison{FocalID: focalID, Threshold: threshold, Labs: []LabStat{}}

	members, err := e.cohort(ctx, focalID, threshold, 0)
	var missing *MissingEmbeddingError
	if errors.As(err, &missing) {
		res.Issues = append(res.Issues, e.issue(IssueMissingFocalEmb, focalID, err))
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.CohortSize = len(members)

	focalLabs, err := e.store.LabResults(ctx, []int64{focalID})
	if err != nil {
		return nil, fmt.Errorf("failed to load labs for patient %d: %w", focalID, err)
	}
	focal := e.latestFocalValues(focalID, focalLabs, res)
	if len(focal) == 0 || len(members) == 0 {
		for _, test := range sortedTests(focal) {
			res.Omitted = append(res.Omitted, InsufficientCohortError{TestName: test, Required: MinLabContributors})
		}
		return res, nil
	}

	cohortLabs, err := e.store.LabResults(ctx, memberIDs(members))
	if err != nil {
		return nil, fmt.Errorf("failed to load cohort labs: %w", err)
	}

	inCohort := make(map[int64]bool, len(members))
	for _, m := range members {
		inCohort[m.ID] = true
	}

	values := make(map[string][]float64)
	contributors := make(map[string]map[int64]struct{})
	for _, lab := range cohortLabs {
		if !inCohort[lab.PatientID] {
			continue
		}
		if _, wanted := focal[lab.TestName]; !wanted {
			continue
		}
		v, ok := parseLabValue(lab.Value)
		if !ok {
			res.Issues = append(res.Issues, e.castIssue(lab))
			continue
		}
		values[lab.TestName] = append(values[lab.TestName], v)
		if contributors[lab.TestName] == nil {
			contributors[lab.TestName] = make(map[int64]struct{})
		}
		contributors[lab.TestName][lab.PatientID] = struct{}{}
	}

	for _, test := range sortedTests(focal) {
		n := len(contributors[test])
		if n < MinLabContributors {
			res.Omitted = append(res.Omitted, InsufficientCohortError{TestName: test, Contributors: n, Required: MinLabContributors})
			continue
		}
		mean, sd := meanStdDev(values[test])
		f := focal[test]
		res.Labs = append(res.Labs, LabStat{
			TestName:     test,
			Unit:         f.Unit,
			FocalValue:   f.value,
			CohortMean:   mean,
			CohortStdDev: sd,
			Contributors: n,
			Samples:      len(values[test]),
			Status:       Classify(f.value, mean, sd),
		})
	}
	return res, nil
}

type focalValue struct {
	models.LabResult
	value float64
}

// latestFocalValues keeps the most recent numeric result per test. Tests the
// focal patient only has non-numeric results for cannot be classified.
func (e *Engine) latestFocalValues(focalID int64, labs []models.LabResult, res *LabComparison) map[string]focalValue {
	latest := make(map[string]focalValue)
	seen := make(map[string]bool)
	for _, lab := range labs {
		if lab.PatientID != focalID {
			continue
		}
		seen[lab.TestName] = true
		v, ok := parseLabValue(lab.Value)
		if !ok {
			res.Issues = append(res.Issues, e.castIssue(lab))
			continue
		}
		cur, exists := latest[lab.TestName]
		if !exists || lab.ResultDate.After(cur.ResultDate) ||
			(lab.ResultDate.Equal(cur.ResultDate) && lab.ID > cur.ID) {
			latest[lab.TestName] = focalValue{LabResult: lab, value: v}
		}
	}
	tests := make([]string, 0, len(seen))
	for test := range seen {
		tests = append(tests, test)
	}
	sort.Strings(tests)
	for _, test := range tests {
		if _, ok := latest[test]; !ok {
			res.Issues = append(res.Issues, e.issue(IssueNoFocalValue, focalID,
				fmt.Errorf("no numeric %s result for the focal patient", test)))
		}
	}
	return latest
}

func (e *Engine) castIssue(lab models.LabResult) DataQualityError {
	return e.issue(IssueNonNumericLab, lab.PatientID, &DataCastError{
		PatientID: lab.PatientID,
		LabID:     lab.ID,
		TestName:  lab.TestName,
		Value:     lab.Value,
	})
}

func sortedTests(m map[string]focalValue) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
