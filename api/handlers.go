/*
handlers.go - HTTP API handlers for the aid report engine

PURPOSE:
  Exposes the report pipelines via REST API. Handles HTTP
  request/response, query-parameter parsing, JSON serialization, and
  delegates all computation to the reports package.

ENDPOINTS:
  Reports:
    GET /api/reports/distribution  Country distribution cube
    GET /api/reports/sectors       Sub-sector rankings per year
    GET /api/reports/donors        Donor performance per year
    GET /api/reports/quarterly     Quarterly trend

  Meta:
    GET /api/dataset               Snapshot statistics
    GET /api/health                Liveness probe

QUERY PARAMETERS (reports):
  from, to     Inclusive calendar year bounds
  top          Top-N truncation
  percentile   Sector percentile cutoff, 0..1 (sectors only)
  floor        Donor monetary floor in USD (donors only)

REQUEST FLOW:
  1. Parse and validate query parameters
  2. Take a snapshot from the Source
  3. Run the report pipeline
  4. Serialize DTO rows

ERROR HANDLING:
  - 400: Malformed query parameters
  - 500: Snapshot failures (database unreachable)
  Report pipelines themselves cannot fail: an empty snapshot yields an
  empty rows array.

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	lo "github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/aid-analytics/reports"
	"github.com/warp/aid-analytics/warehouse"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Source   warehouse.Source
	Defaults reports.Options
	Log      *logrus.Logger
}

// NewHandler creates a handler serving reports from the given source.
func NewHandler(source warehouse.Source, defaults reports.Options, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Source: source, Defaults: defaults, Log: log}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetDistribution serves the country distribution report.
func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ds := h.snapshot(w, r)
	if ds == nil {
		return
	}
	rows := lo.Map(reports.Distribution(ds, opts),
		func(row reports.DistributionRow, _ int) DistributionDTO { return toDistributionDTO(row) })
	writeJSON(w, http.StatusOK, ReportResponse[DistributionDTO]{
		Rows: rows, Count: len(rows), Options: echoOptions(opts),
	})
}

// GetSectors serves the sector ranking report.
func (h *Handler) GetSectors(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ds := h.snapshot(w, r)
	if ds == nil {
		return
	}
	rows := lo.Map(reports.Sectors(ds, opts),
		func(row reports.SectorRow, _ int) SectorDTO { return toSectorDTO(row) })
	writeJSON(w, http.StatusOK, ReportResponse[SectorDTO]{
		Rows: rows, Count: len(rows), Options: echoOptions(opts),
	})
}

// GetDonors serves the donor performance report.
func (h *Handler) GetDonors(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ds := h.snapshot(w, r)
	if ds == nil {
		return
	}
	rows := lo.Map(reports.Donors(ds, opts),
		func(row reports.DonorRow, _ int) DonorDTO { return toDonorDTO(row) })
	writeJSON(w, http.StatusOK, ReportResponse[DonorDTO]{
		Rows: rows, Count: len(rows), Options: echoOptions(opts),
	})
}

// GetQuarterly serves the quarterly trend report.
func (h *Handler) GetQuarterly(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ds := h.snapshot(w, r)
	if ds == nil {
		return
	}
	rows := lo.Map(reports.Quarterly(ds, opts),
		func(row reports.QuarterlyRow, _ int) QuarterlyDTO { return toQuarterlyDTO(row) })
	writeJSON(w, http.StatusOK, ReportResponse[QuarterlyDTO]{
		Rows: rows, Count: len(rows), Options: echoOptions(opts),
	})
}

// =============================================================================
// META HANDLERS
// =============================================================================

// GetDataset serves snapshot statistics.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.snapshot(w, r)
	if ds == nil {
		return
	}
	writeJSON(w, http.StatusOK, DatasetDTO{Stats: ds.Stats()})
}

// GetHealth is the liveness probe.
func (h *Handler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// INTERNALS
// =============================================================================

// snapshot loads the dataset, writing a 500 on failure. A nil return means
// the response was already written.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) *warehouse.Dataset {
	ds, err := h.Source.Snapshot(r.Context())
	if err != nil {
		h.Log.WithFields(logrus.Fields{
			"path": r.URL.Path,
		}).WithError(err).Error("snapshot failed")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("snapshot unavailable"))
		return nil
	}
	return ds
}

// parseOptions merges query parameters over the configured defaults.
func (h *Handler) parseOptions(r *http.Request) (reports.Options, error) {
	opts := h.Defaults
	q := r.URL.Query()

	var err error
	if opts.FromYear, err = intParam(q.Get("from"), opts.FromYear); err != nil {
		return opts, fmt.Errorf("invalid 'from': %w", err)
	}
	if opts.ToYear, err = intParam(q.Get("to"), opts.ToYear); err != nil {
		return opts, fmt.Errorf("invalid 'to': %w", err)
	}
	if opts.TopN, err = intParam(q.Get("top"), opts.TopN); err != nil {
		return opts, fmt.Errorf("invalid 'top': %w", err)
	}
	if raw := q.Get("percentile"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 || p > 1 {
			return opts, fmt.Errorf("invalid 'percentile': must be within [0, 1]")
		}
		opts.PercentileCutoff = p
	}
	if raw := q.Get("floor"); raw != "" {
		f, err := decimal.NewFromString(raw)
		if err != nil || f.IsNegative() {
			return opts, fmt.Errorf("invalid 'floor': must be a non-negative amount")
		}
		opts.DonorFloor = f
	}
	return opts, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func echoOptions(opts reports.Options) OptionsEchoDTO {
	echo := OptionsEchoDTO{
		FromYear:         opts.FromYear,
		ToYear:           opts.ToYear,
		TopN:             opts.TopN,
		PercentileCutoff: opts.PercentileCutoff,
	}
	if !opts.DonorFloor.IsZero() {
		echo.DonorFloor = opts.DonorFloor.StringFixed(2)
	}
	return echo
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
