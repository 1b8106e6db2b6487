// Package extraction finds medical terms in clinical note text.
package extraction

import (
	"context"
	"sort"
	"strings"

	"clinical-intel/internal/models"
)

// TermExtractor returns the terms found in text with byte offsets into it.
type TermExtractor interface {
	Name() string
	Extract(ctx context.Context, text string) ([]models.ExtractedTerm, error)
}

// GroupByCategory buckets terms by category, keeping their order within each bucket.
func GroupByCategory(terms []models.ExtractedTerm) map[models.TermCategory][]models.ExtractedTerm {
	out := make(map[models.TermCategory][]models.ExtractedTerm)
	for _, t := range terms {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// TermSet is the unordered, case-folded set of term strings used for overlap counts.
type TermSet map[string]struct{}

func NewTermSet(terms ...string) TermSet {
	s := make(TermSet, len(terms))
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

func (s TermSet) Add(term string) {
	if norm := NormalizeTerm(term); norm != "" {
		s[norm] = struct{}{}
	}
}

// Intersect counts terms present in both sets.
func (s TermSet) Intersect(other TermSet) int {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	n := 0
	for t := range small {
		if _, ok := big[t]; ok {
			n++
		}
	}
	return n
}

func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NormalizeTerm lower-cases and collapses punctuation so "5-FU" and "5 fu" agree.
func NormalizeTerm(term string) string {
	return strings.Join(wordsOf(term), " ")
}

func wordsOf(s string) []string {
	spans := tokenize(s)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.norm
	}
	return out
}

// Merge runs each extractor and keeps one term per span, preferring the
// highest score. Output is ordered by start offset.
type Merge struct {
	extractors []TermExtractor
}

func NewMerge(extractors ...TermExtractor) *Merge {
	return &Merge{extractors: extractors}
}

func (m *Merge) Name() string {
	names := make([]string, len(m.extractors))
	for i, e := range m.extractors {
		names[i] = e.Name()
	}
	return strings.Join(names, "+")
}

func (m *Merge) Extract(ctx context.Context, text string) ([]models.ExtractedTerm, error) {
	type span struct{ start, end int }
	best := make(map[span]models.ExtractedTerm)
	for _, e := range m.extractors {
		terms, err := e.Extract(ctx, text)
		if err != nil {
			return nil, err
		}
		for _, t := range terms {
			k := span{t.Start, t.End}
			if cur, ok := best[k]; !ok || t.Score > cur.Score {
				best[k] = t
			}
		}
	}

	out := make([]models.ExtractedTerm, 0, len(best))
	for _, t := range best {
		out = append(out, t)
	}
	SortByOffset(out)
	return out, nil
}

func SortByOffset(terms []models.ExtractedTerm) {
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Start != terms[j].Start {
			return terms[i].Start < terms[j].Start
		}
		return terms[i].End < terms[j].End
	})
}
