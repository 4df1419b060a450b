/*
distribution.go - Country aid distribution report (cube rollup)

PURPOSE:
  Answers "how much aid went where, overall". A CUBE rollup over
  {country, year} produces every grouping combination; the report keeps
  the per-country all-years subtotals plus the grand total, so the sum of
  the country lines always reconciles against the final line.

PIPELINE:
  join -> drop null/non-positive values -> year-range filter
       -> Aggregate(rollup over country, year)
       -> keep rows with year rolled away
       -> sort by total descending, top-N, grand total last

SEE ALSO:
  - analytics/aggregate.go: CUBE semantics
  - types.go: DistributionRow
*/
package reports

import (
	"sort"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/warehouse"
)

// Distribution computes the country distribution report.
func Distribution(ds *warehouse.Dataset, opts Options) []DistributionRow {
	records := prepare(ds, opts, true)

	aggregated := analytics.Aggregate(records, analytics.AggregateInput{
		Attributes: []string{warehouse.AttrCountry, warehouse.AttrYear},
		Rollup:     true,
	})

	var countries []DistributionRow
	var grand *DistributionRow
	for _, row := range aggregated {
		// Only the all-years grouping sets matter here: per-country
		// subtotals and the grand total.
		if !row.Subtotal[warehouse.AttrYear] {
			continue
		}
		out := DistributionRow{
			Country:        row.Key(warehouse.AttrCountry),
			TotalAid:       row.Total,
			Transactions:   row.Transactions,
			AvgTransaction: row.Average,
		}
		if row.Subtotal[warehouse.AttrCountry] {
			out.GrandTotal = true
			grand = &out
			continue
		}
		countries = append(countries, out)
	}

	sort.SliceStable(countries, func(i, j int) bool {
		if !countries[i].TotalAid.Equal(countries[j].TotalAid) {
			return countries[i].TotalAid.GreaterThan(countries[j].TotalAid)
		}
		return countries[i].Country < countries[j].Country
	})
	if opts.TopN > 0 && len(countries) > opts.TopN {
		countries = countries[:opts.TopN]
	}

	if grand != nil {
		countries = append(countries, *grand)
	}
	return countries
}

// prepare joins the snapshot and applies the shared pre-aggregation policy:
// null values always go; positiveOnly additionally drops zero and negative
// amounts; the year range comes from the options.
func prepare(ds *warehouse.Dataset, opts Options, positiveOnly bool) []analytics.Record {
	records := analytics.DropNullValues(ds.Join())
	out := records[:0]
	for _, r := range records {
		if positiveOnly && !r.Value.Decimal.IsPositive() {
			continue
		}
		if !opts.yearInRange(r.Time.Year()) {
			continue
		}
		out = append(out, r)
	}
	return out
}
