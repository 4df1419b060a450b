/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned to clients. These types decouple
  the report rows from the external API contract and carry both raw
  numerics (for programmatic consumers) and formatted presentation
  columns (for direct display).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Wrappers carrying rows plus echo of the applied options

VALIDATION:
  Query-parameter validation is done in handlers, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Builds these from report rows
  - reports/format.go: The formatting helpers applied here
*/
package api

import (
	"github.com/warp/aid-analytics/reports"
	"github.com/warp/aid-analytics/warehouse"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// DistributionDTO is one country line of the distribution report.
type DistributionDTO struct {
	Country           string `json:"country"`
	TotalAid          string `json:"total_aid"`
	TotalAidFormatted string `json:"total_aid_formatted"`
	Transactions      int    `json:"transactions"`
	AvgTransaction    string `json:"avg_transaction_size"`
	GrandTotal        bool   `json:"grand_total,omitempty"`
}

// SectorDTO is one line of the sector ranking report.
type SectorDTO struct {
	SectorCategory  string  `json:"sector_category"`
	SubSector       string  `json:"sub_sector_name"`
	Year            int     `json:"year"`
	TotalAid        string  `json:"total_aid"`
	Transactions    int     `json:"transactions"`
	SectorRank      int     `json:"sector_rank"`
	PercentOfTotal  string  `json:"percent_of_total_aid"`
	PercentileRank  float64 `json:"percentile_rank"`
	AvgTransaction  string  `json:"avg_transaction_size"`
}

// DonorDTO is one line of the donor performance report.
type DonorDTO struct {
	Donor             string `json:"donor_organization"`
	OrgType           string `json:"org_type"`
	Year              int    `json:"year"`
	TotalContribution string `json:"total_contribution"`
	Projects          int    `json:"projects"`
	CountriesServed   int    `json:"countries_served"`
	DonorRank         int    `json:"donor_rank"`
	YoYGrowth         string `json:"yoy_growth"`
	PerformanceVsAvg  string `json:"performance_vs_avg"`
	PercentOfBestYear string `json:"percent_of_best_year"`
}

// QuarterlyDTO is one line of the quarterly trend report.
type QuarterlyDTO struct {
	YearQuarter        string `json:"year_quarter"`
	TotalAid           string `json:"total_aid"`
	Transactions       int    `json:"transaction_count"`
	AvgTransaction     string `json:"avg_transaction"`
	CountriesReceiving int    `json:"countries_receiving_aid"`
	MovingAvg4Q        string `json:"moving_avg_4q"`
	MovingAvg8Q        string `json:"moving_avg_8q"`
	QoQGrowth          string `json:"qoq_growth"`
	TrendStatus        string `json:"trend_status"`
}

// ReportResponse wraps report rows with the options that produced them.
type ReportResponse[T any] struct {
	Rows    []T            `json:"rows"`
	Count   int            `json:"count"`
	Options OptionsEchoDTO `json:"options"`
}

// OptionsEchoDTO echoes the effective report options back to the client.
type OptionsEchoDTO struct {
	FromYear         int     `json:"from_year,omitempty"`
	ToYear           int     `json:"to_year,omitempty"`
	TopN             int     `json:"top_n,omitempty"`
	PercentileCutoff float64 `json:"percentile_cutoff,omitempty"`
	DonorFloor       string  `json:"donor_floor,omitempty"`
}

// DatasetDTO summarizes the loaded snapshot.
type DatasetDTO struct {
	Stats warehouse.Stats `json:"stats"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// ROW CONVERSIONS
// =============================================================================

func toDistributionDTO(r reports.DistributionRow) DistributionDTO {
	return DistributionDTO{
		Country:           r.Country,
		TotalAid:          r.TotalAid.StringFixed(2),
		TotalAidFormatted: reports.FormatUSD(r.TotalAid),
		Transactions:      r.Transactions,
		AvgTransaction:    reports.FormatNullUSD(r.AvgTransaction),
		GrandTotal:        r.GrandTotal,
	}
}

func toSectorDTO(r reports.SectorRow) SectorDTO {
	share := r.PercentOfTotal
	return SectorDTO{
		SectorCategory: r.SectorCategory,
		SubSector:      r.SubSector,
		Year:           r.Year,
		TotalAid:       r.TotalAid.StringFixed(2),
		Transactions:   r.Transactions,
		SectorRank:     r.SectorRank,
		PercentOfTotal: reports.FormatPercent(&share),
		PercentileRank: r.PercentileRank,
		AvgTransaction: reports.FormatNullUSD(r.AvgTransaction),
	}
}

func toDonorDTO(r reports.DonorRow) DonorDTO {
	return DonorDTO{
		Donor:             r.Donor,
		OrgType:           r.OrgType,
		Year:              r.Year,
		TotalContribution: r.TotalContribution.StringFixed(2),
		Projects:          r.Projects,
		CountriesServed:   r.CountriesServed,
		DonorRank:         r.DonorRank,
		YoYGrowth:         reports.FormatPercent(r.YoYGrowth),
		PerformanceVsAvg:  reports.FormatPercent(r.PerformanceVsAvg),
		PercentOfBestYear: reports.FormatPercent(r.PercentOfBestYear),
	}
}

func toQuarterlyDTO(r reports.QuarterlyRow) QuarterlyDTO {
	return QuarterlyDTO{
		YearQuarter:        r.YearQuarter,
		TotalAid:           r.TotalAid.StringFixed(2),
		Transactions:       r.Transactions,
		AvgTransaction:     reports.FormatNullUSD(r.AvgTransaction),
		CountriesReceiving: r.CountriesReceiving,
		MovingAvg4Q:        r.MovingAvg4Q.StringFixed(2),
		MovingAvg8Q:        r.MovingAvg8Q.StringFixed(2),
		QoQGrowth:          reports.FormatPercent(r.QoQGrowth),
		TrendStatus:        r.TrendStatus,
	}
}
