/*
errors.go - Centralized error types for the analytics engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is().

ERROR PHILOSOPHY:
  The engine errors only on caller mistakes (bad percentile, bad window
  size, malformed time key). Data conditions that a relational engine
  would render as NULL - empty partitions, missing lag rows, division by
  zero in derived ratios - never error here either: they surface as
  absent values (nil pointers, invalid NullDecimals).

SEE ALSO:
  - window.go: Uses ErrInvalidPercentile, ErrInvalidWindow, ErrInvalidOffset
  - timekey.go: Uses ErrInvalidTimeKey
*/
package analytics

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPercentile is returned when a percentile argument falls
	// outside [0, 1].
	ErrInvalidPercentile = errors.New("percentile must be within [0, 1]")

	// ErrInvalidWindow is returned for moving-average window sizes < 1.
	ErrInvalidWindow = errors.New("window size must be at least 1")

	// ErrInvalidOffset is returned for negative lag/lead offsets.
	ErrInvalidOffset = errors.New("offset must be non-negative")

	// ErrInvalidTimeKey is returned when an integer key does not decode to
	// a valid year/quarter pair.
	ErrInvalidTimeKey = errors.New("invalid time key")
)
