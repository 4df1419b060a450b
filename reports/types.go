/*
Package reports assembles the four aid reports.

PURPOSE:
  Each report is a pure pipeline over a warehouse snapshot:

    join -> pre-filter -> aggregate -> window functions -> post-filter -> sort

  No report holds state; the same snapshot always yields the same rows.

THE FOUR REPORTS:
  Distribution:  Aid distribution cube by country (CUBE rollup, grand total)
  Sectors:       Sub-sector rankings per year with percentile cutoff
  Donors:        Donor performance per year (rank, YoY growth, best-year share)
  Quarterly:     Quarterly trend with 4Q/8Q moving averages

NULL AND EMPTY SEMANTICS:
  Facts without a value are excluded before aggregation in every report.
  Ratios without a defined denominator (no previous year, zero baseline)
  surface as nil pointers, rendered "N/A" at the presentation layer.
  Empty snapshots yield empty reports, never errors.

SEE ALSO:
  - analytics/: The aggregation and window engine underneath
  - warehouse/: Snapshot and join view
  - api/: HTTP surface serving these rows
*/
package reports

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options carries the knobs sharable across reports. The zero value of a
// field means "no constraint"; DefaultOptions fills the thresholds the
// reports were designed around.
type Options struct {
	// FromYear/ToYear bound the calendar years considered (inclusive).
	// Zero means unbounded on that side.
	FromYear int
	ToYear   int

	// TopN truncates ranked output. Zero keeps everything. For the donor
	// report the truncation applies per year (rank <= TopN).
	TopN int

	// PercentileCutoff keeps sector rows whose yearly total sits at or
	// above this percentile of their year's totals.
	PercentileCutoff float64

	// DonorFloor drops donor/year rows contributing less than this amount.
	DonorFloor decimal.Decimal
}

// DefaultOptions returns the standard report thresholds.
func DefaultOptions() Options {
	return Options{
		PercentileCutoff: 0.85,
		DonorFloor:       decimal.NewFromInt(1_000_000),
	}
}

// yearInRange applies the inclusive year bounds.
func (o Options) yearInRange(year int) bool {
	if o.FromYear != 0 && year < o.FromYear {
		return false
	}
	if o.ToYear != 0 && year > o.ToYear {
		return false
	}
	return true
}

// =============================================================================
// REPORT ROWS
// =============================================================================

// DistributionRow is one line of the country distribution report.
type DistributionRow struct {
	// Country name, or "ALL" on the grand-total row.
	Country        string
	TotalAid       decimal.Decimal
	Transactions   int
	AvgTransaction decimal.NullDecimal

	// GrandTotal marks the all-countries row.
	GrandTotal bool
}

// SectorRow is one line of the sector ranking report.
type SectorRow struct {
	SectorCategory string
	SubSector      string
	Year           int
	TotalAid       decimal.Decimal
	Transactions   int
	AvgTransaction decimal.NullDecimal

	// SectorRank is the dense rank of this sub-sector's total within its
	// year, largest total first.
	SectorRank int

	// PercentOfTotal is this row's share of its year's total aid, 0..100.
	PercentOfTotal float64

	// PercentileRank is the ascending percent rank of the total within its
	// year, 0..1.
	PercentileRank float64
}

// DonorRow is one line of the donor performance report.
type DonorRow struct {
	Donor             string
	OrgType           string
	Year              int
	TotalContribution decimal.Decimal

	// Projects counts distinct aid transactions.
	Projects int

	// CountriesServed counts distinct recipient countries.
	CountriesServed int

	// DonorRank is the dense rank of the contribution within the year.
	DonorRank int

	// YoYGrowth is the percent change versus the donor's previous year;
	// nil when there is no previous year or it contributed zero.
	YoYGrowth *float64

	// PerformanceVsAvg is the contribution as a percentage of the average
	// donor contribution in the same year; nil when undefined.
	PerformanceVsAvg *float64

	// PercentOfBestYear is the contribution as a percentage of the donor's
	// best year; nil when undefined.
	PercentOfBestYear *float64
}

// QuarterlyRow is one line of the quarterly trend report.
type QuarterlyRow struct {
	// YearQuarter labels the quarter, e.g. "2021-Q3".
	YearQuarter    string
	TotalAid       decimal.Decimal
	Transactions   int
	AvgTransaction decimal.NullDecimal

	// CountriesReceiving counts distinct recipient countries this quarter.
	CountriesReceiving int

	// MovingAvg4Q/8Q are trailing moving averages over the quarter order,
	// shrinking at the head of the series.
	MovingAvg4Q decimal.Decimal
	MovingAvg8Q decimal.Decimal

	// QoQGrowth is the percent change versus the previous quarter; nil for
	// the first quarter or a zero baseline.
	QoQGrowth *float64

	// TrendStatus classifies the quarter against its 4Q moving average:
	// "Above Trend", "Below Trend", "Stable", or "N/A" for the first
	// quarter.
	TrendStatus string
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// growthPercent computes (current-previous)/previous*100, nil when previous
// is absent or zero. Mirrors relational NULLIF(previous, 0) guards.
func growthPercent(current decimal.Decimal, previous *decimal.Decimal) *float64 {
	if previous == nil || previous.IsZero() {
		return nil
	}
	g, _ := current.Sub(*previous).
		Div(*previous).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return &g
}

// shareOf computes part/whole*100, nil when the denominator is zero.
func shareOf(part, whole decimal.Decimal) *float64 {
	if whole.IsZero() {
		return nil
	}
	s, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return &s
}
