/*
window.go - Partitioned analytic (window) functions

PURPOSE:
  Computes ordered, partition-scoped analytic values over a row slice:
  dense rank, percent rank, lag/lead, first value, moving averages,
  continuous percentiles, and partition sums. These are the window
  functions the report assemblers need, reproduced outside a relational
  engine.

EXECUTION MODEL:
  Two passes, mirroring how a query engine materializes window frames:
  1. Partition the input by key, preserving input order within partitions.
  2. Run the operation per partition and write each result back to the
     source row's slice position.
  Every function therefore returns a slice aligned index-for-index with
  its input - the caller joins results back by position.

ORDERING:
  Lag, Lead and MovingAverage read the slice order as the frame order, so
  callers sort first (OrderBy). Rank, percentile and first-value functions
  order internally by the supplied value or comparator. Ties always fall
  back to input position, keeping results reproducible.

SEE ALSO:
  - aggregate.go: Produces the rows these functions typically consume
  - reports/: The four assemblers composing aggregation with windows
*/
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTITIONING
// =============================================================================

// partitionIndices groups row positions by partition key. Partition order is
// first appearance; positions within a partition stay ascending.
func partitionIndices[T any](rows []T, key func(T) string) ([]string, map[string][]int) {
	var order []string
	parts := make(map[string][]int)
	for i, r := range rows {
		k := key(r)
		if _, ok := parts[k]; !ok {
			order = append(order, k)
		}
		parts[k] = append(parts[k], i)
	}
	return order, parts
}

// OrderBy returns a stably sorted copy of rows. Equal rows keep their input
// order, which is what makes the frame-order functions deterministic.
func OrderBy[T any](rows []T, less func(a, b T) bool) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// =============================================================================
// RANKING
// =============================================================================

// DenseRank assigns 1-based ranks within each partition by the row's value.
// Rows sharing a value share a rank and the next distinct value takes the
// next rank - no gaps. descending=true ranks the largest value 1.
func DenseRank[T any](rows []T, partition func(T) string, value func(T) decimal.Decimal, descending bool) []int {
	ranks := make([]int, len(rows))
	_, parts := partitionIndices(rows, partition)
	for _, idxs := range parts {
		distinct := make([]decimal.Decimal, 0, len(idxs))
		seen := make(map[string]struct{}, len(idxs))
		for _, i := range idxs {
			v := value(rows[i])
			if _, ok := seen[v.String()]; !ok {
				seen[v.String()] = struct{}{}
				distinct = append(distinct, v)
			}
		}
		sort.Slice(distinct, func(a, b int) bool {
			if descending {
				return distinct[a].GreaterThan(distinct[b])
			}
			return distinct[a].LessThan(distinct[b])
		})
		rankOf := make(map[string]int, len(distinct))
		for pos, v := range distinct {
			rankOf[v.String()] = pos + 1
		}
		for _, i := range idxs {
			ranks[i] = rankOf[value(rows[i]).String()]
		}
	}
	return ranks
}

// PercentRank computes (rank-1)/(n-1) per row with ascending-order ranks,
// where rank-1 is the count of partition rows with a strictly smaller value.
// Single-row partitions yield 0.
func PercentRank[T any](rows []T, partition func(T) string, value func(T) decimal.Decimal) []float64 {
	out := make([]float64, len(rows))
	_, parts := partitionIndices(rows, partition)
	for _, idxs := range parts {
		if len(idxs) <= 1 {
			continue
		}
		vals := make([]decimal.Decimal, len(idxs))
		for j, i := range idxs {
			vals[j] = value(rows[i])
		}
		sorted := make([]decimal.Decimal, len(vals))
		copy(sorted, vals)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].LessThan(sorted[b]) })
		for j, i := range idxs {
			below := sort.Search(len(sorted), func(k int) bool {
				return !sorted[k].LessThan(vals[j])
			})
			out[i] = float64(below) / float64(len(idxs)-1)
		}
	}
	return out
}

// =============================================================================
// FRAME NAVIGATION
// =============================================================================

// Lag returns, per row, the picked value from the row offset positions
// earlier in its partition, nil when no such row exists. Offset 0 is the
// identity. Slice order is the frame order.
func Lag[T, V any](rows []T, partition func(T) string, offset int, pick func(T) V) ([]*V, error) {
	return shifted(rows, partition, offset, pick, false)
}

// Lead mirrors Lag in the forward direction.
func Lead[T, V any](rows []T, partition func(T) string, offset int, pick func(T) V) ([]*V, error) {
	return shifted(rows, partition, offset, pick, true)
}

func shifted[T, V any](rows []T, partition func(T) string, offset int, pick func(T) V, forward bool) ([]*V, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	out := make([]*V, len(rows))
	_, parts := partitionIndices(rows, partition)
	for _, idxs := range parts {
		for pos, i := range idxs {
			src := pos - offset
			if forward {
				src = pos + offset
			}
			if src < 0 || src >= len(idxs) {
				continue
			}
			v := pick(rows[idxs[src]])
			out[i] = &v
		}
	}
	return out, nil
}

// FirstValue broadcasts, per row, the picked value of the first row of its
// partition under the supplied ordering (which may differ from the slice
// order). Ties keep the earlier input row first.
func FirstValue[T, V any](rows []T, partition func(T) string, less func(a, b T) bool, pick func(T) V) []V {
	out := make([]V, len(rows))
	_, parts := partitionIndices(rows, partition)
	for _, idxs := range parts {
		first := idxs[0]
		for _, i := range idxs[1:] {
			if less(rows[i], rows[first]) {
				first = i
			}
		}
		v := pick(rows[first])
		for _, i := range idxs {
			out[i] = v
		}
	}
	return out
}

// =============================================================================
// MOVING AVERAGE
// =============================================================================

// MovingAverage computes, per position, the mean of the value at that
// position and up to window-1 preceding values in slice (global) order. The
// frame shrinks at the head of the slice rather than yielding nulls.
func MovingAverage(values []decimal.Decimal, window int) ([]decimal.Decimal, error) {
	if window < 1 {
		return nil, ErrInvalidWindow
	}
	out := make([]decimal.Decimal, len(values))
	running := decimal.Zero
	for i, v := range values {
		running = running.Add(v)
		if i >= window {
			running = running.Sub(values[i-window])
		}
		span := i + 1
		if span > window {
			span = window
		}
		out[i] = running.Div(decimal.NewFromInt(int64(span)))
	}
	return out, nil
}

// =============================================================================
// PERCENTILES AND PARTITION TOTALS
// =============================================================================

// PercentileCont computes the continuous (linearly interpolated) percentile
// of the row values within each partition: for sorted values v[0..n-1] and
// rank r = p*(n-1), the result is v[floor(r)] + frac(r)*(v[ceil(r)]-v[floor(r)]).
// Returns one value per partition key; empty partitions cannot occur.
func PercentileCont[T any](rows []T, partition func(T) string, value func(T) decimal.Decimal, p float64) (map[string]decimal.Decimal, error) {
	if p < 0 || p > 1 {
		return nil, ErrInvalidPercentile
	}
	out := make(map[string]decimal.Decimal)
	_, parts := partitionIndices(rows, partition)
	for key, idxs := range parts {
		vals := make([]decimal.Decimal, len(idxs))
		for j, i := range idxs {
			vals[j] = value(rows[i])
		}
		sort.Slice(vals, func(a, b int) bool { return vals[a].LessThan(vals[b]) })
		out[key] = interpolate(vals, p)
	}
	return out, nil
}

func interpolate(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	r := p * float64(n-1)
	lo := int(r)
	hi := lo
	if lo < n-1 {
		hi = lo + 1
	}
	frac := r - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	delta := sorted[hi].Sub(sorted[lo]).Mul(decimal.NewFromFloat(frac))
	return sorted[lo].Add(delta)
}

// SumOverPartition broadcasts the partition total of the row values back to
// every row, aligned by input position. Used for percent-of-total columns.
func SumOverPartition[T any](rows []T, partition func(T) string, value func(T) decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(rows))
	_, parts := partitionIndices(rows, partition)
	for _, idxs := range parts {
		total := decimal.Zero
		for _, i := range idxs {
			total = total.Add(value(rows[i]))
		}
		for _, i := range idxs {
			out[i] = total
		}
	}
	return out
}
