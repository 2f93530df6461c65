// Package clock centralizes time handling for the queue: UTC canonicalization,
// ISO-8601 parsing, and backoff-with-jitter.
package clock

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// Now returns the current instant, canonicalized to UTC.
//
// Every timestamp that crosses the store boundary goes through this
// function rather than a bare time.Now(), so the whole repository layer
// is free of naive-timezone bugs (see tools/linters/timeutc).
func Now() time.Time {
	return time.Now().UTC()
}

// ParseRunAt parses a run_at value supplied by a client. Accepts RFC3339
// with a trailing "Z" or an explicit "+00:00" offset; a string with no
// offset at all is interpreted as UTC, matching spec.md's "naive strings
// are interpreted as UTC."
func ParseRunAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty run_at")
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	// No offset/zone present at all: treat as a naive UTC timestamp.
	if !strings.ContainsAny(s, "Zz+") && strings.Count(s, "-") <= 2 {
		layouts := []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("invalid run_at %q: not a recognized ISO-8601 timestamp", s)
}

// storageLayout is a fixed-width RFC3339-nanosecond layout: always nine
// fractional digits, zero-padded. RFC3339Nano itself trims trailing zeros
// (and drops the fractional part entirely for a whole-second instant),
// which makes the lexicographic ordering SQLite uses on the TEXT columns
// disagree with chronological order right at second boundaries — a
// zero-fraction "...:05Z" would sort after a fractional "...:05.3Z" since
// 'Z' > '.'. Fixed width keeps byte order == time order.
const storageLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatUTC renders t in storageLayout, the wire and storage format for
// every timestamp in the queue.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(storageLayout)
}

// BackoffDelay computes the exponential-backoff-with-jitter delay for a job
// that has failed `attempts` times.
//
//	delay = min(maxBackoffS, base^attempts) + uniform_random(0, 0.5*base)
//
// The cap is applied before jitter; jitter is always added, so the result is
// never less than the (possibly capped) exponential term.
func BackoffDelay(attempts int, base, maxBackoffS float64) time.Duration {
	if base < 1.0 {
		base = 1.0
	}
	if maxBackoffS <= 0 {
		maxBackoffS = 3600
	}

	exp := math.Pow(base, float64(attempts))
	if exp > maxBackoffS {
		exp = maxBackoffS
	}

	jitter := rand.Float64() * 0.5 * base
	delaySeconds := exp + jitter

	return time.Duration(delaySeconds * float64(time.Second))
}
