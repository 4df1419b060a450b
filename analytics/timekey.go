/*
timekey.go - Year/quarter time-key codec

PURPOSE:
  Facts position themselves in time with a single integer key encoding both
  calendar year and quarter. This file defines the canonical encoding and
  the arithmetic the reports need (ordering, stepping, labels).

ENCODING:
  key = year*10 + quarter, quarter in 1..4. 2020-Q3 encodes as 20203.
  This is the only encoding the engine accepts; keys with a quarter digit
  outside 1..4 are invalid and rejected at the boundary.

SEE ALSO:
  - types.go: Record carries a TimeKey
  - reports/quarterly.go: Quarter-ordered trend report
*/
package analytics

import "fmt"

// TimeKey encodes a calendar year and quarter as year*10 + quarter.
type TimeKey int

// NewTimeKey builds a TimeKey, rejecting quarters outside 1..4 and
// non-positive years.
func NewTimeKey(year, quarter int) (TimeKey, error) {
	if year <= 0 {
		return 0, fmt.Errorf("%w: year %d", ErrInvalidTimeKey, year)
	}
	if quarter < 1 || quarter > 4 {
		return 0, fmt.Errorf("%w: quarter %d", ErrInvalidTimeKey, quarter)
	}
	return TimeKey(year*10 + quarter), nil
}

// ParseTimeKey validates a raw integer key.
func ParseTimeKey(raw int) (TimeKey, error) {
	return NewTimeKey(raw/10, raw%10)
}

func (k TimeKey) Year() int    { return int(k) / 10 }
func (k TimeKey) Quarter() int { return int(k) % 10 }

// Valid reports whether the key decodes to a real year/quarter pair.
func (k TimeKey) Valid() bool {
	return k.Year() > 0 && k.Quarter() >= 1 && k.Quarter() <= 4
}

// Label renders the key as "2020-Q3".
func (k TimeKey) Label() string {
	return fmt.Sprintf("%d-Q%d", k.Year(), k.Quarter())
}

// Next returns the following quarter, rolling over year boundaries.
func (k TimeKey) Next() TimeKey {
	if k.Quarter() == 4 {
		return TimeKey((k.Year()+1)*10 + 1)
	}
	return k + 1
}

// Before reports chronological order. The encoding sorts numerically, so
// integer comparison suffices for valid keys.
func (k TimeKey) Before(other TimeKey) bool {
	return k < other
}
