/*
Package analytics provides the core aggregation and window-function engine.

PURPOSE:
  This package contains domain-agnostic algorithms for computing grouped
  aggregates and ordered analytic values over in-memory record sets. It is
  the computational core behind the aid reports: CUBE-style rollups, dense
  ranking, percentiles, lag/lead, and moving averages, without a relational
  engine in the loop.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: A denormalized fact row (attributes + nullable measure)
  - AggregatedRow: The result of grouping records by an attribute subset
  - AllValues: The sentinel marking an attribute rolled away in a subtotal

DESIGN PRINCIPLES:
  1. Purity: Every operation is records-in, rows-out. No shared state.
  2. Precision: Monetary math uses decimal.Decimal, never float64.
  3. Determinism: Ties are broken by stable input position, so two runs
     over the same snapshot always produce identical output.
  4. Null discipline: Absent measures contribute nothing to sums and are
     excluded from average denominators.

USAGE:
  rows := analytics.Aggregate(records, analytics.AggregateInput{
      Attributes: []string{"country", "year"},
      Rollup:     true,
  })

SEE ALSO:
  - aggregate.go: Grouping engine (exact combinations and CUBE rollup)
  - window.go: Partitioned analytic functions
  - timekey.go: Year/quarter time-key codec
*/
package analytics

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD - Denormalized input row
// =============================================================================

// Record is one fact row decorated with its resolved dimensional attributes.
// Attrs values are plain strings (dimension names, labels, rendered years);
// the measure is nullable because source transactions may carry no value.
type Record struct {
	// FactID identifies the underlying transaction. Distinct counting of
	// transactions within a group is done over this field.
	FactID string

	// Time is the fact's year/quarter position.
	Time TimeKey

	// Attrs maps attribute names to values, e.g. "country" -> "Kenya".
	Attrs map[string]string

	// Value is the measure being aggregated. Unset means NULL.
	Value decimal.NullDecimal
}

// Attr returns the named attribute value, or "" when the record does not
// carry it.
func (r Record) Attr(name string) string {
	return r.Attrs[name]
}

// SomeValue wraps a concrete decimal as a present NullDecimal.
func SomeValue(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NoValue is the absent measure.
func NoValue() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// =============================================================================
// AGGREGATED ROW - Output of the grouping engine
// =============================================================================

// AllValues marks an attribute that was rolled away in a subtotal row: the
// row aggregates over every value of that attribute.
const AllValues = "ALL"

// AggregatedRow is one group produced by Aggregate.
//
// INVARIANTS:
//   - Total == Average × non-null row count (exact, since Average is derived)
//   - Transactions ≤ Rows
//   - Subtotal[a] == true exactly when Keys[a] == AllValues
type AggregatedRow struct {
	// Keys holds the grouping value per attribute. Rolled-away attributes
	// carry AllValues.
	Keys map[string]string

	// Subtotal flags, one per grouping attribute: true when the attribute
	// was excluded from this grouping set (CUBE subtotal semantics).
	Subtotal map[string]bool

	// Transactions counts distinct FactIDs in the group.
	Transactions int

	// Rows counts input records in the group.
	Rows int

	// Total is the sum of present measures. Null measures contribute zero.
	Total decimal.Decimal

	// Average is Total divided by the number of present measures; absent
	// when the group holds no present measure at all.
	Average decimal.NullDecimal

	// Distinct holds per-attribute distinct value counts for the attributes
	// requested via AggregateInput.DistinctOver.
	Distinct map[string]int
}

// Key returns the grouping value for an attribute.
func (a AggregatedRow) Key(attr string) string {
	return a.Keys[attr]
}

// IsGrandTotal reports whether every grouping attribute was rolled away.
func (a AggregatedRow) IsGrandTotal() bool {
	for _, sub := range a.Subtotal {
		if !sub {
			return false
		}
	}
	return true
}
