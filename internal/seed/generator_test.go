package seed

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Patients:   40,
		Seed:       7,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		OddLabRate: 0.05,
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(testOptions())
	b := Generate(testOptions())

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("datasets differ (-first +second):\n%s", diff)
	}

	other := testOptions()
	other.Seed = 8
	assert.NotEqual(t, a.Notes[0].Text, Generate(other).Notes[0].Text)
}

func TestGenerate_ReferentialIntegrity(t *testing.T) {
	ds := Generate(testOptions())

	require.Len(t, ds.Patients, 40)
	patients := make(map[int64]bool)
	for _, p := range ds.Patients {
		patients[p.ID] = true
		assert.Regexp(t, `^MRN\d{8}$`, p.MRN)
		assert.GreaterOrEqual(t, p.AgeYears, 1)
		assert.LessOrEqual(t, p.AgeYears, 17)
	}

	encounters := make(map[int64]int64)
	for _, e := range ds.Encounters {
		require.True(t, patients[e.PatientID])
		encounters[e.ID] = e.PatientID
	}
	assert.GreaterOrEqual(t, len(ds.Notes), len(ds.Patients))
	for _, n := range ds.Notes {
		assert.Equal(t, encounters[n.EncounterID], n.PatientID)
		assert.NotEmpty(t, n.Text)
	}
	for _, m := range ds.Medications {
		assert.Equal(t, encounters[m.EncounterID], m.PatientID)
	}
}

func TestGenerate_OddLabValues(t *testing.T) {
	opts := testOptions()
	opts.OddLabRate = 0
	for _, l := range Generate(opts).Labs {
		_, err := strconv.ParseFloat(l.Value, 64)
		assert.NoError(t, err, l.Value)
	}

	opts.OddLabRate = 1
	for _, l := range Generate(opts).Labs {
		_, err := strconv.ParseFloat(l.Value, 64)
		assert.Error(t, err, l.Value)
	}
}
