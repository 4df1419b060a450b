/*
seed.go - Demo dataset for testing and demonstrations

PURPOSE:

	Builds a small, deterministic warehouse snapshot covering several
	countries, sectors, donors and five years of quarters. Tests and the
	demo server use it to exercise every report without external data.

SHAPE:

	6 countries, 4 sectors with 8 sub-sectors, 6 donor organizations,
	8 recipient organizations, facts for every (recipient, sub-sector,
	donor-subset, quarter) combination from 2019-Q1 through 2023-Q4.
	A handful of facts carry null values or dangling keys so the join
	and null policies stay exercised.

DETERMINISM:

	Values are a fixed arithmetic blend of the loop indices - no RNG, no
	clock. The same snapshot is produced on every call, which keeps report
	tests byte-stable.

SEE ALSO:
  - memory.go: Typically loaded with this dataset
  - reports/: Consumers
*/
package warehouse

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
)

// DemoDataset builds the deterministic demo snapshot.
func DemoDataset() *Dataset {
	ds := &Dataset{
		Countries: []Country{
			{Key: "c-ke", Name: "Kenya"},
			{Key: "c-et", Name: "Ethiopia"},
			{Key: "c-bd", Name: "Bangladesh"},
			{Key: "c-np", Name: "Nepal"},
			{Key: "c-pe", Name: "Peru"},
			{Key: "c-ua", Name: "Ukraine"},
		},
		Sectors: []Sector{
			{Key: "s-health", Category: "Health"},
			{Key: "s-edu", Category: "Education"},
			{Key: "s-agri", Category: "Agriculture"},
			{Key: "s-infra", Category: "Infrastructure"},
		},
		SubSectors: []SubSector{
			{Key: "ss-primary-care", Name: "Primary Care", SectorKey: "s-health"},
			{Key: "ss-vaccination", Name: "Vaccination", SectorKey: "s-health"},
			{Key: "ss-primary-edu", Name: "Primary Education", SectorKey: "s-edu"},
			{Key: "ss-vocational", Name: "Vocational Training", SectorKey: "s-edu"},
			{Key: "ss-irrigation", Name: "Irrigation", SectorKey: "s-agri"},
			{Key: "ss-seeds", Name: "Seed Programs", SectorKey: "s-agri"},
			{Key: "ss-roads", Name: "Rural Roads", SectorKey: "s-infra"},
			{Key: "ss-water", Name: "Water Systems", SectorKey: "s-infra"},
		},
		Providers: []ProviderOrg{
			{Key: "p-gfa", Name: "Global Fund Alliance", Type: "Multilateral"},
			{Key: "p-nordaid", Name: "NordAid", Type: "Government"},
			{Key: "p-helv", Name: "Helvetia Development", Type: "Government"},
			{Key: "p-bright", Name: "Bright Futures Trust", Type: "Foundation"},
			{Key: "p-terra", Name: "TerraWorks", Type: "NGO"},
			{Key: "p-unity", Name: "Unity Relief", Type: "NGO"},
		},
		Recipients: []RecipientOrg{
			{Key: "r-ke-1", CountryKey: "c-ke"},
			{Key: "r-ke-2", CountryKey: "c-ke"},
			{Key: "r-et-1", CountryKey: "c-et"},
			{Key: "r-bd-1", CountryKey: "c-bd"},
			{Key: "r-np-1", CountryKey: "c-np"},
			{Key: "r-pe-1", CountryKey: "c-pe"},
			{Key: "r-ua-1", CountryKey: "c-ua"},
			{Key: "r-ua-2", CountryKey: "c-ua"},
		},
	}

	seq := 0
	for year := 2019; year <= 2023; year++ {
		for quarter := 1; quarter <= 4; quarter++ {
			tk, _ := analytics.NewTimeKey(year, quarter)
			for ri, recipient := range ds.Recipients {
				for si, sub := range ds.SubSectors {
					// Each recipient/sub-sector pair draws from two donors.
					for d := 0; d < 2; d++ {
						pi := (ri + si + d) % len(ds.Providers)
						seq++
						fact := AidFact{
							FactID:          fmt.Sprintf("aid-%06d", seq),
							RecipientOrgKey: recipient.Key,
							ProviderOrgKey:  ds.Providers[pi].Key,
							SubSectorKey:    sub.Key,
							Time:            tk,
						}
						// A fixed slice of facts stays unvalued, mirroring
						// transactions reported without amounts.
						if seq%37 != 0 {
							amount := 50_000 +
								(ri+1)*(si+2)*9_000 +
								(pi+1)*4_000 +
								(year-2019)*11_000 +
								quarter*1_500
							fact.ValueUSD = analytics.SomeValue(decimal.NewFromInt(int64(amount)))
						}
						ds.Facts = append(ds.Facts, fact)
					}
				}
			}
		}
	}

	// Unresolvable keys: these rows must vanish in the join view.
	ds.Facts = append(ds.Facts,
		AidFact{
			FactID:          "aid-dangling-recipient",
			RecipientOrgKey: "r-missing",
			ProviderOrgKey:  "p-gfa",
			SubSectorKey:    "ss-water",
			Time:            analytics.TimeKey(20231),
			ValueUSD:        analytics.SomeValue(decimal.NewFromInt(75_000)),
		},
		AidFact{
			FactID:          "aid-dangling-subsector",
			RecipientOrgKey: "r-ke-1",
			ProviderOrgKey:  "p-gfa",
			SubSectorKey:    "ss-missing",
			Time:            analytics.TimeKey(20231),
			ValueUSD:        analytics.SomeValue(decimal.NewFromInt(75_000)),
		},
	)

	return ds
}
