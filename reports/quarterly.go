/*
quarterly.go - Quarterly trend report

PURPOSE:
  Tracks total aid per quarter with trailing 4-quarter and 8-quarter
  moving averages, quarter-over-quarter growth, distinct recipient
  countries, and a trend classification of each quarter against its 4Q
  moving average.

QUARTER ORDER:
  Quarter labels ("2021-Q3") sort chronologically as strings, so the
  global frame order for the moving averages is a plain lexical sort.
  The moving windows shrink at the head of the series rather than
  yielding nulls.

TREND CLASSIFICATION:
  total > 1.05 x 4Q average  -> "Above Trend"
  total < 0.95 x 4Q average  -> "Below Trend"
  otherwise                  -> "Stable"
  The first quarter has no prior frame and reads "N/A".

SEE ALSO:
  - analytics/window.go: MovingAverage, Lag
  - types.go: QuarterlyRow
*/
package reports

import (
	lo "github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/warehouse"
)

const (
	TrendAbove  = "Above Trend"
	TrendBelow  = "Below Trend"
	TrendStable = "Stable"
	TrendNone   = "N/A"
)

// Quarterly computes the quarterly trend report.
func Quarterly(ds *warehouse.Dataset, opts Options) []QuarterlyRow {
	records := prepare(ds, opts, false)

	aggregated := analytics.Aggregate(records, analytics.AggregateInput{
		Attributes:   []string{warehouse.AttrQuarter},
		DistinctOver: []string{warehouse.AttrCountry},
	})
	if len(aggregated) == 0 {
		return nil
	}

	ordered := analytics.OrderBy(aggregated, func(a, b analytics.AggregatedRow) bool {
		return a.Key(warehouse.AttrQuarter) < b.Key(warehouse.AttrQuarter)
	})

	totals := lo.Map(ordered, func(r analytics.AggregatedRow, _ int) decimal.Decimal { return r.Total })
	ma4, _ := analytics.MovingAverage(totals, 4)
	ma8, _ := analytics.MovingAverage(totals, 8)

	// One global partition: every quarter trails the one before it.
	previous, _ := analytics.Lag(ordered,
		func(analytics.AggregatedRow) string { return "" },
		1,
		func(r analytics.AggregatedRow) decimal.Decimal { return r.Total })

	out := make([]QuarterlyRow, 0, len(ordered))
	for i, row := range ordered {
		out = append(out, QuarterlyRow{
			YearQuarter:        row.Key(warehouse.AttrQuarter),
			TotalAid:           row.Total,
			Transactions:       row.Transactions,
			AvgTransaction:     row.Average,
			CountriesReceiving: row.Distinct[warehouse.AttrCountry],
			MovingAvg4Q:        ma4[i],
			MovingAvg8Q:        ma8[i],
			QoQGrowth:          growthPercent(row.Total, previous[i]),
			TrendStatus:        classifyTrend(row.Total, ma4[i], previous[i] == nil),
		})
	}
	if opts.TopN > 0 && len(out) > opts.TopN {
		// Trend reports truncate from the front: the most recent quarters win.
		out = out[len(out)-opts.TopN:]
	}
	return out
}

func classifyTrend(total, ma4 decimal.Decimal, first bool) string {
	if first || ma4.IsZero() {
		return TrendNone
	}
	ratio := total.Div(ma4)
	switch {
	case ratio.GreaterThan(decimal.NewFromFloat(1.05)):
		return TrendAbove
	case ratio.LessThan(decimal.NewFromFloat(0.95)):
		return TrendBelow
	default:
		return TrendStable
	}
}
