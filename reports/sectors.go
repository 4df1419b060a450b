/*
sectors.go - Sub-sector ranking report with percentile cutoff

PURPOSE:
  Ranks sub-sectors within each year by total aid and keeps only the
  heavy hitters: rows whose total sits at or above a configurable
  percentile (default the 85th) of their year's totals. Each surviving
  row carries its dense rank, its share of the year's aid, and its
  percent rank.

PIPELINE:
  join -> drop null values -> year-range filter
       -> Aggregate by (sector category, sub-sector, year)
       -> DenseRank / SumOverPartition / PercentRank per year
       -> PercentileCont cutoff per year
       -> sort by year, then total descending

WINDOWS BEFORE FILTERS:
  All window values are computed over the full aggregated set before the
  percentile cutoff applies, so a kept row's rank still reflects the rows
  the cutoff removed.

SEE ALSO:
  - analytics/window.go: The window functions composed here
  - types.go: SectorRow
*/
package reports

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/warehouse"
)

// Sectors computes the sector ranking report.
func Sectors(ds *warehouse.Dataset, opts Options) []SectorRow {
	records := prepare(ds, opts, false)

	aggregated := analytics.Aggregate(records, analytics.AggregateInput{
		Attributes: []string{warehouse.AttrSectorCategory, warehouse.AttrSubSector, warehouse.AttrYear},
	})
	if len(aggregated) == 0 {
		return nil
	}

	byYear := func(r analytics.AggregatedRow) string { return r.Key(warehouse.AttrYear) }
	total := func(r analytics.AggregatedRow) decimal.Decimal { return r.Total }

	ranks := analytics.DenseRank(aggregated, byYear, total, true)
	yearTotals := analytics.SumOverPartition(aggregated, byYear, total)
	pctRanks := analytics.PercentRank(aggregated, byYear, total)

	// A zero cutoff degenerates to the minimum, keeping every row.
	thresholds, err := analytics.PercentileCont(aggregated, byYear, total, opts.PercentileCutoff)
	if err != nil {
		// Out-of-range cutoffs are a caller bug; fall back to keeping
		// everything rather than failing the report.
		thresholds = map[string]decimal.Decimal{}
	}

	var out []SectorRow
	for i, row := range aggregated {
		threshold, ok := thresholds[byYear(row)]
		if ok && row.Total.LessThan(threshold) {
			continue
		}
		year, _ := strconv.Atoi(row.Key(warehouse.AttrYear))
		share := 0.0
		if s := shareOf(row.Total, yearTotals[i]); s != nil {
			share = *s
		}
		out = append(out, SectorRow{
			SectorCategory: row.Key(warehouse.AttrSectorCategory),
			SubSector:      row.Key(warehouse.AttrSubSector),
			Year:           year,
			TotalAid:       row.Total,
			Transactions:   row.Transactions,
			AvgTransaction: row.Average,
			SectorRank:     ranks[i],
			PercentOfTotal: share,
			PercentileRank: pctRanks[i],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if !out[i].TotalAid.Equal(out[j].TotalAid) {
			return out[i].TotalAid.GreaterThan(out[j].TotalAid)
		}
		return out[i].SubSector < out[j].SubSector
	})
	if opts.TopN > 0 {
		out = truncatePerYear(out, opts.TopN, func(r SectorRow) int { return r.Year })
	}
	return out
}

// truncatePerYear keeps at most n rows per year, relying on the slice being
// sorted year-first.
func truncatePerYear[T any](rows []T, n int, year func(T) int) []T {
	out := rows[:0]
	count := 0
	last := 0
	for i, r := range rows {
		if i == 0 || year(r) != last {
			last = year(r)
			count = 0
		}
		count++
		if count <= n {
			out = append(out, r)
		}
	}
	return out
}
