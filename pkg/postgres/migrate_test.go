package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	migrations, err := LoadMigrations(256)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	assert.Equal(t, 1, migrations[0].Version)
}

func TestLoadMigrations_SubstitutesDimensions(t *testing.T) {
	migrations, err := LoadMigrations(384)
	require.NoError(t, err)

	var found bool
	for _, m := range migrations {
		assert.NotContains(t, m.SQL, "{{dims}}", m.Name)
		if strings.Contains(m.SQL, "vector(384)") {
			found = true
		}
	}
	assert.True(t, found, "expected a vector(384) column")
}
