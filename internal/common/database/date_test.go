package database_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daymatch/daymatch-backend/internal/common/database"
)

func TestDateScan(t *testing.T) {
	t.Run("driver time.Time normalizes to YYYY-MM-DD", func(t *testing.T) {
		// DATE columns arrive from the driver as midnight-UTC time.Time
		// values; the day must read back as it was written, not as an
		// RFC3339 timestamp.
		var d database.Date
		require.NoError(t, d.Scan(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, database.Date("2026-08-15"), d)
	})

	t.Run("byte and string forms pass through", func(t *testing.T) {
		var d database.Date
		require.NoError(t, d.Scan([]byte("2026-08-15")))
		assert.Equal(t, database.Date("2026-08-15"), d)

		require.NoError(t, d.Scan("2026-08-16"))
		assert.Equal(t, database.Date("2026-08-16"), d)
	})

	t.Run("unsupported source is an error", func(t *testing.T) {
		var d database.Date
		assert.Error(t, d.Scan(42))
	})
}

func TestDateValue(t *testing.T) {
	v, err := database.Date("2026-08-15").Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-15", v)
}

func TestDateJSON(t *testing.T) {
	payload, err := json.Marshal(database.Date("2026-08-15"))
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-15"`, string(payload))
}
