/*
Package config loads the server configuration.

PURPOSE:
  Parses the optional YAML configuration file controlling the listen
  address, the database path, and the default report thresholds.
  Command-line flags in cmd/server override whatever the file sets.

FORMAT (config.yaml):
  server:
    addr: ":8080"
  database:
    path: "./data/aid.db"   # ":memory:" or "demo" for the seed dataset
  reports:
    percentile_cutoff: 0.85
    donor_floor_usd: "1000000"
    top_n: 20

SEE ALSO:
  - cmd/server/main.go: Flag merging and startup
*/
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/aid-analytics/reports"
)

// Config is the structure of config.yaml. Only the fields the server needs
// are modeled.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Reports struct {
		PercentileCutoff float64 `yaml:"percentile_cutoff"`
		DonorFloorUSD    string  `yaml:"donor_floor_usd"`
		TopN             int     `yaml:"top_n"`
	} `yaml:"reports"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Database.Path = "demo"
	return c
}

// Load parses the YAML configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

// ReportOptions converts the configured thresholds into report defaults,
// falling back to the standard thresholds where unset.
func (c *Config) ReportOptions() (reports.Options, error) {
	opts := reports.DefaultOptions()
	if c.Reports.PercentileCutoff != 0 {
		if c.Reports.PercentileCutoff < 0 || c.Reports.PercentileCutoff > 1 {
			return opts, fmt.Errorf("percentile_cutoff must be within [0, 1]")
		}
		opts.PercentileCutoff = c.Reports.PercentileCutoff
	}
	if c.Reports.DonorFloorUSD != "" {
		floor, err := decimal.NewFromString(c.Reports.DonorFloorUSD)
		if err != nil {
			return opts, fmt.Errorf("invalid donor_floor_usd: %w", err)
		}
		opts.DonorFloor = floor
	}
	opts.TopN = c.Reports.TopN
	return opts, nil
}
