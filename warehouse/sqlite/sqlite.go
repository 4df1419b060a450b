/*
Package sqlite provides a SQLite-backed implementation of warehouse.Source.

PURPOSE:
  Persists the star schema (fact_aid_transactions plus its five dimension
  tables) in SQLite and serves immutable snapshots of it to the report
  pipelines. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  fact_aid_transactions: One row per aid transaction (nullable value_usd)
  dim_country, dim_sector, dim_sub_sector,
  dim_provider_org, dim_recipient_org: Dimension tables

SNAPSHOT SEMANTICS:
  Snapshot() reads every table in one read transaction and returns plain
  slices. The report pipelines never query the database themselves; all
  joining and aggregation happens in memory against the snapshot.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around bulk loads. SQLite is opened
  with WAL so snapshot reads do not block a concurrent load.

USAGE:
  store, err := sqlite.New("./data/aid.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ds, err := store.Snapshot(ctx)

SEE ALSO:
  - warehouse/warehouse.go: Row types and Source interface
  - warehouse/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/warehouse"
)

// Store implements warehouse.Source on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the star schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dim_country (
		country_key TEXT PRIMARY KEY,
		country_name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dim_sector (
		sector_key TEXT PRIMARY KEY,
		sector_category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dim_sub_sector (
		sub_sector_key TEXT PRIMARY KEY,
		sub_sector_name TEXT NOT NULL,
		sector_key TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dim_provider_org (
		provider_org_key TEXT PRIMARY KEY,
		provider_name TEXT NOT NULL,
		provider_type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dim_recipient_org (
		recipient_org_key TEXT PRIMARY KEY,
		country_key TEXT NOT NULL
	);

	-- Fact table. value_usd stays nullable: transactions can be reported
	-- without an amount.
	CREATE TABLE IF NOT EXISTS fact_aid_transactions (
		aid_fact_key TEXT PRIMARY KEY,
		recipient_org_key TEXT NOT NULL,
		provider_org_key TEXT NOT NULL,
		sub_sector_key TEXT NOT NULL,
		time_key INTEGER NOT NULL,
		value_usd TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fact_time
		ON fact_aid_transactions(time_key);
	CREATE INDEX IF NOT EXISTS idx_fact_recipient
		ON fact_aid_transactions(recipient_org_key);
	CREATE INDEX IF NOT EXISTS idx_fact_provider
		ON fact_aid_transactions(provider_org_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BULK LOAD
// =============================================================================

// Load replaces the warehouse contents with the given dataset atomically.
func (s *Store) Load(ctx context.Context, ds *warehouse.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load: %w", err)
	}
	defer tx.Rollback()

	tables := []string{
		"fact_aid_transactions", "dim_country", "dim_sector",
		"dim_sub_sector", "dim_provider_org", "dim_recipient_org",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, c := range ds.Countries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_country (country_key, country_name) VALUES (?, ?)`,
			c.Key, c.Name); err != nil {
			return fmt.Errorf("failed to insert country: %w", err)
		}
	}
	for _, sec := range ds.Sectors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_sector (sector_key, sector_category) VALUES (?, ?)`,
			sec.Key, sec.Category); err != nil {
			return fmt.Errorf("failed to insert sector: %w", err)
		}
	}
	for _, sub := range ds.SubSectors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_sub_sector (sub_sector_key, sub_sector_name, sector_key) VALUES (?, ?, ?)`,
			sub.Key, sub.Name, sub.SectorKey); err != nil {
			return fmt.Errorf("failed to insert sub-sector: %w", err)
		}
	}
	for _, p := range ds.Providers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_provider_org (provider_org_key, provider_name, provider_type) VALUES (?, ?, ?)`,
			p.Key, p.Name, p.Type); err != nil {
			return fmt.Errorf("failed to insert provider: %w", err)
		}
	}
	for _, r := range ds.Recipients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dim_recipient_org (recipient_org_key, country_key) VALUES (?, ?)`,
			r.Key, r.CountryKey); err != nil {
			return fmt.Errorf("failed to insert recipient: %w", err)
		}
	}
	for _, f := range ds.Facts {
		var value any
		if f.ValueUSD.Valid {
			value = f.ValueUSD.Decimal.String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fact_aid_transactions
			(aid_fact_key, recipient_org_key, provider_org_key, sub_sector_key, time_key, value_usd)
			VALUES (?, ?, ?, ?, ?, ?)`,
			f.FactID, f.RecipientOrgKey, f.ProviderOrgKey, f.SubSectorKey, int(f.Time), value); err != nil {
			return fmt.Errorf("failed to insert fact: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot reads the full warehouse contents.
func (s *Store) Snapshot(ctx context.Context) (*warehouse.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds := &warehouse.Dataset{}

	if err := s.queryRows(ctx, `SELECT country_key, country_name FROM dim_country ORDER BY country_key`,
		func(rows *sql.Rows) error {
			var c warehouse.Country
			if err := rows.Scan(&c.Key, &c.Name); err != nil {
				return err
			}
			ds.Countries = append(ds.Countries, c)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := s.queryRows(ctx, `SELECT sector_key, sector_category FROM dim_sector ORDER BY sector_key`,
		func(rows *sql.Rows) error {
			var sec warehouse.Sector
			if err := rows.Scan(&sec.Key, &sec.Category); err != nil {
				return err
			}
			ds.Sectors = append(ds.Sectors, sec)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := s.queryRows(ctx, `SELECT sub_sector_key, sub_sector_name, sector_key FROM dim_sub_sector ORDER BY sub_sector_key`,
		func(rows *sql.Rows) error {
			var sub warehouse.SubSector
			if err := rows.Scan(&sub.Key, &sub.Name, &sub.SectorKey); err != nil {
				return err
			}
			ds.SubSectors = append(ds.SubSectors, sub)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := s.queryRows(ctx, `SELECT provider_org_key, provider_name, provider_type FROM dim_provider_org ORDER BY provider_org_key`,
		func(rows *sql.Rows) error {
			var p warehouse.ProviderOrg
			if err := rows.Scan(&p.Key, &p.Name, &p.Type); err != nil {
				return err
			}
			ds.Providers = append(ds.Providers, p)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := s.queryRows(ctx, `SELECT recipient_org_key, country_key FROM dim_recipient_org ORDER BY recipient_org_key`,
		func(rows *sql.Rows) error {
			var r warehouse.RecipientOrg
			if err := rows.Scan(&r.Key, &r.CountryKey); err != nil {
				return err
			}
			ds.Recipients = append(ds.Recipients, r)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := s.queryRows(ctx, `
		SELECT aid_fact_key, recipient_org_key, provider_org_key, sub_sector_key, time_key, value_usd
		FROM fact_aid_transactions
		ORDER BY aid_fact_key`,
		func(rows *sql.Rows) error {
			var f warehouse.AidFact
			var timeKey int
			var value sql.NullString
			if err := rows.Scan(&f.FactID, &f.RecipientOrgKey, &f.ProviderOrgKey, &f.SubSectorKey, &timeKey, &value); err != nil {
				return err
			}
			f.Time = analytics.TimeKey(timeKey)
			if value.Valid {
				d, err := decimal.NewFromString(value.String)
				if err != nil {
					return fmt.Errorf("bad value_usd for %s: %w", f.FactID, err)
				}
				f.ValueUSD = analytics.SomeValue(d)
			}
			ds.Facts = append(ds.Facts, f)
			return nil
		}); err != nil {
		return nil, err
	}

	return ds, nil
}

func (s *Store) queryRows(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
