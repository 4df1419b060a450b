/*
aggregate.go - Grouping and CUBE rollup engine

PURPOSE:
  Computes grouped aggregates (distinct transaction count, sum, average,
  optional per-attribute distinct counts) over a record set, either for the
  exact combination of grouping attributes or for every subset of them
  (CUBE rollup semantics).

CUBE SEMANTICS:
  A rollup over n attributes produces 2^n grouping sets. In the grouping
  set that excludes attribute B, a row for {A=x} aggregates over ALL values
  of B; the output marks B with the AllValues sentinel and flags it as a
  subtotal. The grouping set that excludes everything is the grand total.

NULL HANDLING:
  A record with an absent measure contributes zero to the group total and
  is excluded from the average denominator. It still counts toward Rows
  and toward distinct transaction/attribute counts. Callers that want
  SQL-style "WHERE value IS NOT NULL" pre-filtering apply DropNullValues
  before aggregating.

DETERMINISM:
  Output order is first-seen order of each group, grouping sets in subset
  mask order. Re-running over the same input yields byte-identical output.

SEE ALSO:
  - types.go: Record and AggregatedRow definitions
  - window.go: Analytic functions consuming aggregated rows
*/
package analytics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATION INPUT
// =============================================================================

// AggregateInput configures one grouping pass.
type AggregateInput struct {
	// Attributes to group by, in output order.
	Attributes []string

	// Rollup selects CUBE semantics: aggregates for every subset of
	// Attributes, including the grand total. When false, only the exact
	// combination is computed.
	Rollup bool

	// DistinctOver lists additional attributes whose distinct value count
	// should be carried per group (e.g. distinct recipient countries per
	// donor/year).
	DistinctOver []string
}

// DropNullValues returns the records whose measure is present. This is the
// standard pre-filter applied by every report before aggregation.
func DropNullValues(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Value.Valid {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// GROUPING ENGINE
// =============================================================================

type groupState struct {
	keys     map[string]string
	subtotal map[string]bool
	facts    map[string]struct{}
	rows     int
	sum      decimal.Decimal
	nonNull  int
	distinct map[string]map[string]struct{}
}

// Aggregate groups records per the input and computes aggregates for each
// group. An empty record set yields an empty result; for a rollup it yields
// only the (empty) grouping sets that saw at least one record, i.e. nothing.
func Aggregate(records []Record, in AggregateInput) []AggregatedRow {
	masks := []uint{fullMask(len(in.Attributes))}
	if in.Rollup {
		masks = allMasks(len(in.Attributes))
	}

	var order []string
	states := make(map[string]*groupState)

	for _, mask := range masks {
		for _, rec := range records {
			id := groupID(mask, rec, in.Attributes)
			st, ok := states[id]
			if !ok {
				st = newGroupState(mask, rec, in)
				states[id] = st
				order = append(order, id)
			}
			st.rows++
			if rec.FactID != "" {
				st.facts[rec.FactID] = struct{}{}
			}
			if rec.Value.Valid {
				st.sum = st.sum.Add(rec.Value.Decimal)
				st.nonNull++
			}
			for _, attr := range in.DistinctOver {
				st.distinct[attr][rec.Attr(attr)] = struct{}{}
			}
		}
	}

	out := make([]AggregatedRow, 0, len(order))
	for _, id := range order {
		out = append(out, states[id].row(in))
	}
	return out
}

func newGroupState(mask uint, rec Record, in AggregateInput) *groupState {
	st := &groupState{
		keys:     make(map[string]string, len(in.Attributes)),
		subtotal: make(map[string]bool, len(in.Attributes)),
		facts:    make(map[string]struct{}),
		distinct: make(map[string]map[string]struct{}, len(in.DistinctOver)),
	}
	for i, attr := range in.Attributes {
		if mask&(1<<uint(i)) != 0 {
			st.keys[attr] = rec.Attr(attr)
			st.subtotal[attr] = false
		} else {
			st.keys[attr] = AllValues
			st.subtotal[attr] = true
		}
	}
	for _, attr := range in.DistinctOver {
		st.distinct[attr] = make(map[string]struct{})
	}
	return st
}

func (st *groupState) row(in AggregateInput) AggregatedRow {
	row := AggregatedRow{
		Keys:         st.keys,
		Subtotal:     st.subtotal,
		Transactions: len(st.facts),
		Rows:         st.rows,
		Total:        st.sum,
	}
	if st.nonNull > 0 {
		row.Average = SomeValue(st.sum.Div(decimal.NewFromInt(int64(st.nonNull))))
	}
	if len(in.DistinctOver) > 0 {
		row.Distinct = make(map[string]int, len(st.distinct))
		for attr, vals := range st.distinct {
			row.Distinct[attr] = len(vals)
		}
	}
	return row
}

// groupID builds the state-map key for a record under one grouping set.
// The mask is encoded in full so grouping sets beyond eight attributes stay
// distinct. 0x1f is the ASCII unit separator, safe against attribute values
// that contain printable delimiters.
func groupID(mask uint, rec Record, attrs []string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(mask), 10))
	for i, attr := range attrs {
		b.WriteByte(0x1f)
		if mask&(1<<uint(i)) != 0 {
			b.WriteString(rec.Attr(attr))
		} else {
			b.WriteString(AllValues)
		}
	}
	return b.String()
}

func fullMask(n int) uint {
	return (1 << uint(n)) - 1
}

// allMasks enumerates every subset of n attributes, grand total first.
func allMasks(n int) []uint {
	masks := make([]uint, 0, 1<<uint(n))
	for m := uint(0); m < 1<<uint(n); m++ {
		masks = append(masks, m)
	}
	return masks
}
