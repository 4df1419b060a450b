/*
Package warehouse defines the star-schema boundary of the aid analytics
engine.

PURPOSE:
  Models the fact and dimension rows of the aid data warehouse
  (transactions joined to countries, sectors, sub-sectors, provider
  organizations and recipient organizations) and the Source interface
  through which report pipelines obtain an immutable snapshot of them.

KEY TYPES:
  AidFact:     One aid transaction (nullable USD value, time key, FKs)
  Dataset:     A read-only snapshot of facts plus all dimensions
  Source:      Where snapshots come from (memory, SQLite)

JOIN SEMANTICS:
  Dataset.Join denormalizes facts against the dimensions with inner-join
  semantics: a fact whose foreign keys do not all resolve is silently
  dropped, never an error. See join.go.

IMPLEMENTATIONS:
  - memory.go: In-memory Source for tests and demos
  - sqlite/:   SQLite-backed Source

SEE ALSO:
  - analytics/: The engine consuming joined records
  - reports/:  The four report assemblers
*/
package warehouse

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
)

// =============================================================================
// FACT AND DIMENSION ROWS
// =============================================================================

// AidFact is one aid transaction from the fact table.
type AidFact struct {
	FactID          string
	RecipientOrgKey string
	ProviderOrgKey  string
	SubSectorKey    string
	Time            analytics.TimeKey
	ValueUSD        decimal.NullDecimal
}

// Country dimension row.
type Country struct {
	Key  string
	Name string
}

// Sector dimension row (top-level category).
type Sector struct {
	Key      string
	Category string
}

// SubSector dimension row, child of a Sector.
type SubSector struct {
	Key       string
	Name      string
	SectorKey string
}

// ProviderOrg dimension row (the donor side).
type ProviderOrg struct {
	Key  string
	Name string
	Type string
}

// RecipientOrg dimension row, located in a Country.
type RecipientOrg struct {
	Key        string
	CountryKey string
}

// =============================================================================
// DATASET SNAPSHOT
// =============================================================================

// Dataset is an immutable snapshot of the warehouse. Report pipelines read
// it, never mutate it.
type Dataset struct {
	Facts      []AidFact
	Countries  []Country
	Sectors    []Sector
	SubSectors []SubSector
	Providers  []ProviderOrg
	Recipients []RecipientOrg
}

// Stats summarizes a snapshot for the API surface.
type Stats struct {
	Facts      int `json:"facts"`
	Countries  int `json:"countries"`
	Sectors    int `json:"sectors"`
	SubSectors int `json:"sub_sectors"`
	Providers  int `json:"providers"`
	Recipients int `json:"recipients"`
}

// Stats counts the snapshot's rows.
func (d *Dataset) Stats() Stats {
	return Stats{
		Facts:      len(d.Facts),
		Countries:  len(d.Countries),
		Sectors:    len(d.Sectors),
		SubSectors: len(d.SubSectors),
		Providers:  len(d.Providers),
		Recipients: len(d.Recipients),
	}
}

// =============================================================================
// SOURCE - Where snapshots come from
// =============================================================================

// Source supplies warehouse snapshots.
type Source interface {
	// Snapshot returns the current warehouse contents. The returned
	// Dataset must not alias mutable internal state.
	Snapshot(ctx context.Context) (*Dataset, error)
}
