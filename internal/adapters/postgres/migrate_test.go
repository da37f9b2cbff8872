package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_OrderedAndPaired(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ms), 2)

	for i, m := range ms {
		assert.NotEmpty(t, m.Up, m.Version)
		assert.NotEmpty(t, m.Down, m.Version)
		if i > 0 {
			assert.Less(t, ms[i-1].Version, m.Version)
		}
	}
	assert.True(t, strings.Contains(ms[len(ms)-1].Up, "slew_history"))
}

func TestMigrations_HistoryStoresGeometry(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	last := ms[len(ms)-1]
	assert.Equal(t, "003_slew_history_geometry", last.Version)
	assert.Contains(t, last.Up, "GEOMETRY(POINT, 4326)")
}
