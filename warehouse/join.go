/*
join.go - Record join view (fact denormalization)

PURPOSE:
  Pairs each fact with its resolved dimensional attributes, producing the
  flat records the analytics engine consumes. Facts whose foreign keys do
  not all resolve are dropped - inner-join semantics, not an error.

RESOLUTION CHAIN:
  fact -> recipient org -> country
  fact -> sub-sector -> sector
  fact -> provider org
  Facts with an invalid time key are dropped the same way unresolvable
  keys are.

OUTPUT ORDER:
  Input fact order. Downstream stages re-sort as they need.

SEE ALSO:
  - warehouse.go: Row types
  - analytics/types.go: The Record this produces
*/
package warehouse

import (
	"strconv"

	lo "github.com/samber/lo"

	"github.com/warp/aid-analytics/analytics"
)

// =============================================================================
// ATTRIBUTE NAMES - The vocabulary joined records speak
// =============================================================================

const (
	AttrCountry        = "country"
	AttrSectorCategory = "sector_category"
	AttrSubSector      = "sub_sector"
	AttrDonor          = "donor"
	AttrDonorType      = "donor_type"
	AttrYear           = "year"
	AttrQuarter        = "quarter"
)

// =============================================================================
// JOIN VIEW
// =============================================================================

// Join denormalizes the snapshot's facts against its dimensions. Each output
// record carries the full attribute set; facts failing any dimension lookup
// are silently excluded.
func (d *Dataset) Join() []analytics.Record {
	countries := lo.SliceToMap(d.Countries, func(c Country) (string, Country) { return c.Key, c })
	sectors := lo.SliceToMap(d.Sectors, func(s Sector) (string, Sector) { return s.Key, s })
	subSectors := lo.SliceToMap(d.SubSectors, func(s SubSector) (string, SubSector) { return s.Key, s })
	providers := lo.SliceToMap(d.Providers, func(p ProviderOrg) (string, ProviderOrg) { return p.Key, p })
	recipients := lo.SliceToMap(d.Recipients, func(r RecipientOrg) (string, RecipientOrg) { return r.Key, r })

	records := make([]analytics.Record, 0, len(d.Facts))
	for _, fact := range d.Facts {
		if !fact.Time.Valid() {
			continue
		}
		recipient, ok := recipients[fact.RecipientOrgKey]
		if !ok {
			continue
		}
		country, ok := countries[recipient.CountryKey]
		if !ok {
			continue
		}
		subSector, ok := subSectors[fact.SubSectorKey]
		if !ok {
			continue
		}
		sector, ok := sectors[subSector.SectorKey]
		if !ok {
			continue
		}
		provider, ok := providers[fact.ProviderOrgKey]
		if !ok {
			continue
		}

		records = append(records, analytics.Record{
			FactID: fact.FactID,
			Time:   fact.Time,
			Attrs: map[string]string{
				AttrCountry:        country.Name,
				AttrSectorCategory: sector.Category,
				AttrSubSector:      subSector.Name,
				AttrDonor:          provider.Name,
				AttrDonorType:      provider.Type,
				AttrYear:           strconv.Itoa(fact.Time.Year()),
				AttrQuarter:        fact.Time.Label(),
			},
			Value: fact.ValueUSD,
		})
	}
	return records
}
