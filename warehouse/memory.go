/*
memory.go - In-memory Source (for testing/dev)

PURPOSE:
  Holds a warehouse snapshot in memory behind the Source interface.
  Tests and the demo server load it with a Dataset and serve reports
  without a database in the loop.

SEE ALSO:
  - warehouse.go: Source interface
  - sqlite/: The database-backed Source
*/
package warehouse

import (
	"context"
	"sync"
)

// Memory is a thread-safe in-memory Source.
type Memory struct {
	mu sync.RWMutex
	ds Dataset
}

// NewMemory creates an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{}
}

// Replace swaps the held snapshot wholesale.
func (m *Memory) Replace(ds *Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = cloneDataset(ds)
}

// Snapshot returns a copy of the held dataset. The copy never aliases the
// internal slices, so callers can hold it across Replace calls.
func (m *Memory) Snapshot(_ context.Context) (*Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := cloneDataset(&m.ds)
	return &out, nil
}

func cloneDataset(ds *Dataset) Dataset {
	return Dataset{
		Facts:      append([]AidFact(nil), ds.Facts...),
		Countries:  append([]Country(nil), ds.Countries...),
		Sectors:    append([]Sector(nil), ds.Sectors...),
		SubSectors: append([]SubSector(nil), ds.SubSectors...),
		Providers:  append([]ProviderOrg(nil), ds.Providers...),
		Recipients: append([]RecipientOrg(nil), ds.Recipients...),
	}
}
