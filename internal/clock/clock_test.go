package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/clock"
)

func TestParseRunAt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"z suffix", "2026-01-02T03:04:05Z", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"explicit offset", "2026-01-02T03:04:05+00:00", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"naive datetime", "2026-01-02T03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"naive date", "2026-01-02", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"non-utc offset normalized", "2026-01-02T03:04:05-05:00", time.Date(2026, 1, 2, 8, 4, 5, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := clock.ParseRunAt(tc.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseRunAt_Invalid(t *testing.T) {
	_, err := clock.ParseRunAt("not a date")
	assert.Error(t, err)

	_, err = clock.ParseRunAt("")
	assert.Error(t, err)
}

// FormatUTC feeds lexicographically-compared TEXT columns, so byte order
// must agree with chronological order across a whole-second boundary
// (a zero-fraction instant used to sort after a fractional one in the
// same second, since 'Z' > '.').
func TestFormatUTC_LexicographicOrderMatchesTime(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 12, 0, 5, 0, time.UTC)
	later := time.Date(2026, 1, 1, 12, 0, 5, 300_000_000, time.UTC)

	assert.Less(t, clock.FormatUTC(earlier), clock.FormatUTC(later))

	reparsed, err := clock.ParseRunAt(clock.FormatUTC(earlier))
	require.NoError(t, err)
	assert.True(t, reparsed.Equal(earlier))
}

// Property 2: backoff bounds.
func TestBackoffDelay_Bounds(t *testing.T) {
	for attempts := 0; attempts < 10; attempts++ {
		for _, base := range []float64{1.1, 2.0, 5.0} {
			for _, maxBackoff := range []float64{1, 10, 3600} {
				d := clock.BackoffDelay(attempts, base, maxBackoff)
				assert.Greater(t, d, time.Duration(0))

				upperBound := time.Duration((maxBackoff + 0.5*base + 0.001) * float64(time.Second))
				assert.LessOrEqual(t, d, upperBound)

				expected := mathPow(base, attempts)
				if expected <= maxBackoff {
					assert.GreaterOrEqual(t, d, time.Duration(expected*float64(time.Second)))
				}
			}
		}
	}
}

// Property 3: jitter produces distinct values across repeated calls.
func TestBackoffDelay_Jitter(t *testing.T) {
	seen := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		d := clock.BackoffDelay(3, 2.0, 3600)
		seen[d] = true
	}
	assert.GreaterOrEqual(t, len(seen), 2, "expected at least two distinct delays across 10 samples")
}

func mathPow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
