package reports_test

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/reports"
	"github.com/warp/aid-analytics/warehouse"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================
// A two-country, two-sector warehouse small enough to verify report math by
// hand. Individual tests add the facts they need.

func fixture() *warehouse.Dataset {
	return &warehouse.Dataset{
		Countries: []warehouse.Country{
			{Key: "c-x", Name: "Xandia"},
			{Key: "c-y", Name: "Yara"},
		},
		Sectors: []warehouse.Sector{
			{Key: "s-health", Category: "Health"},
			{Key: "s-edu", Category: "Education"},
		},
		SubSectors: []warehouse.SubSector{
			{Key: "ss-clinics", Name: "Clinics", SectorKey: "s-health"},
			{Key: "ss-vaccines", Name: "Vaccines", SectorKey: "s-health"},
			{Key: "ss-schools", Name: "Schools", SectorKey: "s-edu"},
		},
		Providers: []warehouse.ProviderOrg{
			{Key: "p-alpha", Name: "Alpha Fund", Type: "Government"},
			{Key: "p-beta", Name: "Beta Trust", Type: "NGO"},
		},
		Recipients: []warehouse.RecipientOrg{
			{Key: "r-x", CountryKey: "c-x"},
			{Key: "r-y", CountryKey: "c-y"},
		},
	}
}

var factN int

func addFact(ds *warehouse.Dataset, recipient, provider, subSector string, year, quarter int, value float64) {
	factN++
	tk, _ := analytics.NewTimeKey(year, quarter)
	ds.Facts = append(ds.Facts, warehouse.AidFact{
		FactID:          "f-" + strconv.Itoa(factN),
		RecipientOrgKey: recipient,
		ProviderOrgKey:  provider,
		SubSectorKey:    subSector,
		Time:            tk,
		ValueUSD:        analytics.SomeValue(decimal.NewFromFloat(value)),
	})
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// =============================================================================
// DISTRIBUTION REPORT
// =============================================================================

func TestDistribution_CountryTotalsAndGrandTotal(t *testing.T) {
	// GIVEN: Xandia gets 100 + 300, Yara gets 200
	// THEN: Country rows sorted by total descending, grand total last

	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2021, 1, 300)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2020, 1, 200)

	rows := reports.Distribution(ds, reports.Options{})
	require.Len(t, rows, 3)

	assert.Equal(t, "Xandia", rows[0].Country)
	assert.True(t, rows[0].TotalAid.Equal(money(400)))
	assert.Equal(t, 2, rows[0].Transactions)
	assert.True(t, rows[0].AvgTransaction.Decimal.Equal(money(200)))

	assert.Equal(t, "Yara", rows[1].Country)
	assert.True(t, rows[1].TotalAid.Equal(money(200)))

	grand := rows[2]
	assert.True(t, grand.GrandTotal)
	assert.Equal(t, analytics.AllValues, grand.Country)
	assert.True(t, grand.TotalAid.Equal(money(600)))
	assert.Equal(t, 3, grand.Transactions)
}

func TestDistribution_DropsNullAndNonPositiveValues(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, -50)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 0)
	nullFact := ds.Facts[0]
	nullFact.FactID = "f-null"
	nullFact.ValueUSD = analytics.NoValue()
	ds.Facts = append(ds.Facts, nullFact)

	rows := reports.Distribution(ds, reports.Options{})
	require.Len(t, rows, 2)
	assert.True(t, rows[0].TotalAid.Equal(money(100)), "only the positive fact counts")
	assert.Equal(t, 1, rows[0].Transactions)
}

func TestDistribution_TopNKeepsGrandTotal(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 900)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2020, 1, 100)

	rows := reports.Distribution(ds, reports.Options{TopN: 1})
	require.Len(t, rows, 2)
	assert.Equal(t, "Xandia", rows[0].Country)
	assert.True(t, rows[1].GrandTotal)
	assert.True(t, rows[1].TotalAid.Equal(money(1000)), "grand total ignores the truncation")
}

func TestDistribution_YearRangeFilter(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2019, 1, 111)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 222)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2021, 1, 333)

	rows := reports.Distribution(ds, reports.Options{FromYear: 2020, ToYear: 2020})
	require.Len(t, rows, 2)
	assert.True(t, rows[0].TotalAid.Equal(money(222)))
}

func TestDistribution_EmptyDatasetYieldsEmptyReport(t *testing.T) {
	assert.Empty(t, reports.Distribution(fixture(), reports.Options{}))
}

// =============================================================================
// SECTOR REPORT
// =============================================================================

func TestSectors_RanksAndPercentileCutoff(t *testing.T) {
	// GIVEN: Three sub-sectors in 2020 totaling 100, 200, 300
	// WHEN: Cutoff at the 85th percentile (threshold ~270)
	// THEN: Only the 300 row survives, ranked 1 with a 50% share

	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-vaccines", 2020, 1, 200)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2020, 1, 300)

	rows := reports.Sectors(ds, reports.Options{PercentileCutoff: 0.85})
	require.Len(t, rows, 1)

	top := rows[0]
	assert.Equal(t, "Education", top.SectorCategory)
	assert.Equal(t, "Schools", top.SubSector)
	assert.Equal(t, 2020, top.Year)
	assert.True(t, top.TotalAid.Equal(money(300)))
	assert.Equal(t, 1, top.SectorRank)
	assert.InDelta(t, 50.0, top.PercentOfTotal, 1e-9)
	assert.InDelta(t, 1.0, top.PercentileRank, 1e-9)
}

func TestSectors_ZeroCutoffKeepsEverything(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-vaccines", 2020, 1, 200)

	rows := reports.Sectors(ds, reports.Options{})
	require.Len(t, rows, 2)
	// Sorted by total descending within the year.
	assert.Equal(t, "Vaccines", rows[0].SubSector)
	assert.Equal(t, 1, rows[0].SectorRank)
	assert.Equal(t, "Clinics", rows[1].SubSector)
	assert.Equal(t, 2, rows[1].SectorRank)
}

func TestSectors_RanksArePerYear(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2021, 1, 700)
	addFact(ds, "r-x", "p-alpha", "ss-vaccines", 2021, 1, 50)

	rows := reports.Sectors(ds, reports.Options{})
	require.Len(t, rows, 3)

	assert.Equal(t, 2020, rows[0].Year)
	assert.Equal(t, 1, rows[0].SectorRank, "sole 2020 row ranks first in its year")
	assert.Equal(t, 2021, rows[1].Year)
	assert.Equal(t, 1, rows[1].SectorRank)
	assert.Equal(t, 2, rows[2].SectorRank)
}

// =============================================================================
// DONOR REPORT
// =============================================================================

func TestDonors_RankGrowthAndBestYear(t *testing.T) {
	// GIVEN: Alpha Fund contributes 100 (2020) then 150 (2021);
	//        Beta Trust contributes 300 (2021)
	// THEN: Ranks are per year, YoY growth tracks each donor's own years,
	//       and best-year shares use the donor's maximum

	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2021, 1, 150)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2021, 1, 300)

	rows := reports.Donors(ds, reports.Options{})
	require.Len(t, rows, 3)

	alpha2020 := rows[0]
	assert.Equal(t, "Alpha Fund", alpha2020.Donor)
	assert.Equal(t, "Government", alpha2020.OrgType)
	assert.Equal(t, 2020, alpha2020.Year)
	assert.Equal(t, 1, alpha2020.DonorRank)
	assert.Nil(t, alpha2020.YoYGrowth, "no previous year")
	require.NotNil(t, alpha2020.PercentOfBestYear)
	assert.InDelta(t, 100.0/150.0*100, *alpha2020.PercentOfBestYear, 1e-9)

	beta2021 := rows[1]
	assert.Equal(t, "Beta Trust", beta2021.Donor)
	assert.Equal(t, 1, beta2021.DonorRank)
	assert.Nil(t, beta2021.YoYGrowth)
	require.NotNil(t, beta2021.PerformanceVsAvg)
	assert.InDelta(t, 300.0/225.0*100, *beta2021.PerformanceVsAvg, 1e-9)

	alpha2021 := rows[2]
	assert.Equal(t, "Alpha Fund", alpha2021.Donor)
	assert.Equal(t, 2, alpha2021.DonorRank)
	require.NotNil(t, alpha2021.YoYGrowth)
	assert.InDelta(t, 50.0, *alpha2021.YoYGrowth, 1e-9)
	require.NotNil(t, alpha2021.PercentOfBestYear)
	assert.InDelta(t, 100.0, *alpha2021.PercentOfBestYear, 1e-9)
}

func TestDonors_CountsProjectsAndCountries(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 10)
	addFact(ds, "r-x", "p-alpha", "ss-vaccines", 2020, 2, 20)
	addFact(ds, "r-y", "p-alpha", "ss-schools", 2020, 3, 30)

	rows := reports.Donors(ds, reports.Options{})
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Projects)
	assert.Equal(t, 2, rows[0].CountriesServed)
}

func TestDonors_MonetaryFloorDropsSmallContributors(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 2_000_000)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2020, 1, 500)

	rows := reports.Donors(ds, reports.Options{DonorFloor: money(1_000_000)})
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha Fund", rows[0].Donor)
	// Rank was computed before the floor applied: Alpha was already first.
	assert.Equal(t, 1, rows[0].DonorRank)
}

// =============================================================================
// QUARTERLY REPORT
// =============================================================================

func TestQuarterly_MovingAveragesShrinkAtHead(t *testing.T) {
	// GIVEN: Quarterly totals 10, 20, 30, 40, 50
	// THEN: 4Q moving averages are 10, 15, 20, 25, 35

	ds := fixture()
	totals := []float64{10, 20, 30, 40, 50}
	year, quarter := 2020, 1
	for _, v := range totals {
		addFact(ds, "r-x", "p-alpha", "ss-clinics", year, quarter, v)
		quarter++
		if quarter > 4 {
			year, quarter = year+1, 1
		}
	}

	rows := reports.Quarterly(ds, reports.Options{})
	require.Len(t, rows, 5)

	wantMA4 := []int64{10, 15, 20, 25, 35}
	for i, want := range wantMA4 {
		assert.True(t, rows[i].MovingAvg4Q.Equal(money(want)),
			"quarter %s: expected 4Q average %d, got %v", rows[i].YearQuarter, want, rows[i].MovingAvg4Q)
	}

	assert.Equal(t, "2020-Q1", rows[0].YearQuarter)
	assert.Equal(t, "2021-Q1", rows[4].YearQuarter)
}

func TestQuarterly_GrowthAndTrend(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 100)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 2, 150)
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 3, 60)

	rows := reports.Quarterly(ds, reports.Options{})
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].QoQGrowth)
	assert.Equal(t, reports.TrendNone, rows[0].TrendStatus)

	require.NotNil(t, rows[1].QoQGrowth)
	assert.InDelta(t, 50.0, *rows[1].QoQGrowth, 1e-9)
	// 150 vs 4Q average 125 is >5% above.
	assert.Equal(t, reports.TrendAbove, rows[1].TrendStatus)

	require.NotNil(t, rows[2].QoQGrowth)
	assert.InDelta(t, -60.0, *rows[2].QoQGrowth, 1e-9)
	// 60 vs 4Q average ~103 is well below trend.
	assert.Equal(t, reports.TrendBelow, rows[2].TrendStatus)
}

func TestQuarterly_CountsDistinctCountries(t *testing.T) {
	ds := fixture()
	addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, 1, 10)
	addFact(ds, "r-y", "p-beta", "ss-schools", 2020, 1, 20)
	addFact(ds, "r-x", "p-alpha", "ss-vaccines", 2020, 2, 30)

	rows := reports.Quarterly(ds, reports.Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].CountriesReceiving)
	assert.Equal(t, 1, rows[1].CountriesReceiving)
}

func TestQuarterly_TopNKeepsMostRecentQuarters(t *testing.T) {
	ds := fixture()
	for q := 1; q <= 4; q++ {
		addFact(ds, "r-x", "p-alpha", "ss-clinics", 2020, q, float64(q))
	}

	rows := reports.Quarterly(ds, reports.Options{TopN: 2})
	require.Len(t, rows, 2)
	assert.Equal(t, "2020-Q3", rows[0].YearQuarter)
	assert.Equal(t, "2020-Q4", rows[1].YearQuarter)
}

// =============================================================================
// DEMO DATASET SMOKE PROPERTIES
// =============================================================================

func TestReports_DemoDatasetReconciles(t *testing.T) {
	ds := warehouse.DemoDataset()

	dist := reports.Distribution(ds, reports.Options{})
	require.NotEmpty(t, dist)

	grand := dist[len(dist)-1]
	require.True(t, grand.GrandTotal)

	countrySum := decimal.Zero
	for _, row := range dist[:len(dist)-1] {
		countrySum = countrySum.Add(row.TotalAid)
	}
	assert.True(t, countrySum.Equal(grand.TotalAid),
		"country rows must sum to the grand total: %v vs %v", countrySum, grand.TotalAid)

	quarterly := reports.Quarterly(ds, reports.Options{})
	assert.Len(t, quarterly, 20, "five years of four quarters")

	donors := reports.Donors(ds, reports.Options{})
	require.NotEmpty(t, donors)
	for _, d := range donors {
		assert.GreaterOrEqual(t, d.DonorRank, 1)
		assert.LessOrEqual(t, d.CountriesServed, len(ds.Countries))
	}
}
