package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		ok        bool
		precision Precision
		want      time.Time
	}{
		{"year", "2025", true, PrecisionYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"year month", "2025-03", true, PrecisionMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"full", "2025-03-14", true, PrecisionDay, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"empty", "", false, "", time.Time{}},
		{"too short", "202", false, "", time.Time{}},
		{"odd length", "2025-3", false, "", time.Time{}},
		{"timestamp", "2025-03-14T10:00:00Z", false, "", time.Time{}},
		{"letters in year", "20x5", false, "", time.Time{}},
		{"bad month", "2025-13", false, "", time.Time{}},
		{"bad day", "2025-02-30", false, "", time.Time{}},
		{"slashes", "2025/03/14", false, "", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.True(t, got.IsZero())
				return
			}
			assert.Equal(t, tt.precision, got.Precision)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	d, ok := ParseDate("2026-07")
	require.True(t, ok)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-07"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)

	var fromTimestamp Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-07-04T12:30:00Z"`), &fromTimestamp))
	assert.Equal(t, PrecisionDay, fromTimestamp.Precision)
	assert.Equal(t, "2026-07-04", fromTimestamp.String())

	var zero Date
	b, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	assert.Error(t, json.Unmarshal([]byte(`"July 2026"`), &back))
}

func TestDateFromParts(t *testing.T) {
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PrecisionMonth, DateFromParts(ts, "month").Precision)
	assert.Equal(t, PrecisionDay, DateFromParts(ts, "").Precision)
}
