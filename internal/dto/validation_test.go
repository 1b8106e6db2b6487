package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CohortQuery(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	tests := []struct {
		name    string
		query   CohortQuery
		wantMsg string
	}{
		{name: "empty", query: CohortQuery{}},
		{name: "bounds inclusive", query: CohortQuery{MinSimilarity: f(0), MaxResults: n(500), Threshold: f(1)}},
		{name: "similarity above one", query: CohortQuery{MinSimilarity: f(1.2)}, wantMsg: "min_similarity must be at most 1"},
		{name: "negative threshold", query: CohortQuery{Threshold: f(-0.1)}, wantMsg: "threshold must be at least 0"},
		{name: "zero results", query: CohortQuery{MaxResults: n(0)}, wantMsg: "max_results must be at least 1"},
		{name: "too many results", query: CohortQuery{MaxResults: n(1 << 40)}, wantMsg: "max_results must be at most 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.query)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Messages, tt.wantMsg)
		})
	}
}

func TestValidate_UsesRequestFieldNames(t *testing.T) {
	err := Validate(&SearchNotesRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"q is required"}, verr.Messages)
}
