package cohort

import (
	"context"
	"errors"
	"fmt"

	"clinical-intel/internal/extraction"

	"golang.org/x/sync/errgroup"
)

type SimilarPatient struct {
	PatientID        int64
	Similarity       float64
	AgeYears         int
	Gender           string
	PrimaryDiagnosis string
	SharedTerms      int
}

type SimilarResult struct {
	FocalID       int64
	MinSimilarity float64
	Patients      []SimilarPatient
	Issues        []DataQualityError
}

// FindSimilarPatients ranks other patients by cosine similarity of their
// latest-note embeddings to the focal patient's.
func (e *Engine) FindSimilarPatients(ctx context.Context, focalID int64, minSimilarity float64, maxResults int) (*SimilarResult, error) {
	if err := ValidateSimilarArgs(minSimilarity, maxResults); err != nil {
		return nil, err
	}

	result := &SimilarResult{FocalID: focalID, MinSimilarity: minSimilarity, Patients: []SimilarPatient{}}

	members, err := e.cohort(ctx, focalID, minSimilarity, maxResults)
	var missing *MissingEmbeddingError
	if errors.As(err, &missing) {
		result.Issues = append(result.Issues, e.issue(IssueMissingFocalEmb, focalID, err))
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return result, nil
	}

	ids := memberIDs(members)
	withFocal := append(append(make([]int64, 0, len(ids)+1), ids...), focalID)
	var (
		demographics map[int64]Demographics
		terms        map[int64]extraction.TermSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		demographics, err = e.store.Demographics(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load demographics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		terms, err = e.store.TermSets(gctx, withFocal)
		if err != nil {
			return fmt.Errorf("failed to load term sets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	focalTerms := terms[focalID]
	for _, m := range members {
		row := SimilarPatient{PatientID: m.ID, Similarity: m.Similarity}
		if d, ok := demographics[m.ID]; ok {
			row.AgeYears = d.AgeYears
			row.Gender = d.Gender
			row.PrimaryDiagnosis = d.PrimaryDiagnosis
		} else {
			result.Issues = append(result.Issues, e.issue(IssueMissingPatient, m.ID,
				fmt.Errorf("patient %d has an embedding but no demographics", m.ID)))
		}
		row.SharedTerms = focalTerms.Intersect(terms[m.ID])
		result.Patients = append(result.Patients, row)
	}
	return result, nil
}
