/*
donors.go - Donor performance report

PURPOSE:
  Measures each donor organization per year: total contribution, distinct
  project count, distinct recipient countries, rank among that year's
  donors, year-over-year growth, performance against the average donor,
  and the contribution as a share of the donor's own best year. Rows
  below a monetary floor are dropped after the windows are computed.

PIPELINE:
  join -> drop null values -> year-range filter
       -> Aggregate by (donor, org type, year), distinct over country
       -> sort by (donor, year) for frame order
       -> DenseRank per year / Lag(1) per donor / partition averages
          per year / FirstValue(max) per donor
       -> monetary floor filter -> sort by year, rank -> top-N per year

SEE ALSO:
  - analytics/window.go: Lag, FirstValue, SumOverPartition
  - types.go: DonorRow
*/
package reports

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/warehouse"
)

// Donors computes the donor performance report.
func Donors(ds *warehouse.Dataset, opts Options) []DonorRow {
	records := prepare(ds, opts, false)

	aggregated := analytics.Aggregate(records, analytics.AggregateInput{
		Attributes:   []string{warehouse.AttrDonor, warehouse.AttrDonorType, warehouse.AttrYear},
		DistinctOver: []string{warehouse.AttrCountry},
	})
	if len(aggregated) == 0 {
		return nil
	}

	// Frame order for Lag: each donor's years ascending.
	ordered := analytics.OrderBy(aggregated, func(a, b analytics.AggregatedRow) bool {
		if a.Key(warehouse.AttrDonor) != b.Key(warehouse.AttrDonor) {
			return a.Key(warehouse.AttrDonor) < b.Key(warehouse.AttrDonor)
		}
		return a.Key(warehouse.AttrYear) < b.Key(warehouse.AttrYear)
	})

	byYear := func(r analytics.AggregatedRow) string { return r.Key(warehouse.AttrYear) }
	byDonor := func(r analytics.AggregatedRow) string { return r.Key(warehouse.AttrDonor) }
	total := func(r analytics.AggregatedRow) decimal.Decimal { return r.Total }

	ranks := analytics.DenseRank(ordered, byYear, total, true)
	previous, _ := analytics.Lag(ordered, byDonor, 1, total)
	yearTotals := analytics.SumOverPartition(ordered, byYear, total)
	bestYears := analytics.FirstValue(ordered, byDonor,
		func(a, b analytics.AggregatedRow) bool { return a.Total.GreaterThan(b.Total) },
		total)

	yearCounts := make(map[string]int, len(ordered))
	for _, row := range ordered {
		yearCounts[byYear(row)]++
	}

	var out []DonorRow
	for i, row := range ordered {
		if row.Total.LessThan(opts.DonorFloor) {
			continue
		}
		year, _ := strconv.Atoi(row.Key(warehouse.AttrYear))
		avg := yearTotals[i].Div(decimal.NewFromInt(int64(yearCounts[byYear(row)])))
		out = append(out, DonorRow{
			Donor:             row.Key(warehouse.AttrDonor),
			OrgType:           row.Key(warehouse.AttrDonorType),
			Year:              year,
			TotalContribution: row.Total,
			Projects:          row.Transactions,
			CountriesServed:   row.Distinct[warehouse.AttrCountry],
			DonorRank:         ranks[i],
			YoYGrowth:         growthPercent(row.Total, previous[i]),
			PerformanceVsAvg:  shareOf(row.Total, avg),
			PercentOfBestYear: shareOf(row.Total, bestYears[i]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].DonorRank != out[j].DonorRank {
			return out[i].DonorRank < out[j].DonorRank
		}
		return out[i].Donor < out[j].Donor
	})
	if opts.TopN > 0 {
		out = truncatePerYear(out, opts.TopN, func(r DonorRow) int { return r.Year })
	}
	return out
}
