package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/aid-analytics/api"
	"github.com/warp/aid-analytics/reports"
	"github.com/warp/aid-analytics/warehouse"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := warehouse.NewMemory()
	mem.Replace(warehouse.DemoDataset())

	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := api.NewHandler(mem, reports.DefaultOptions(), log)
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

func TestGetDistribution_ReturnsCountryRowsAndGrandTotal(t *testing.T) {
	server := newTestServer(t)

	var body api.ReportResponse[api.DistributionDTO]
	resp := getJSON(t, server.URL+"/api/reports/distribution", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Rows)
	assert.Equal(t, body.Count, len(body.Rows))

	last := body.Rows[len(body.Rows)-1]
	assert.True(t, last.GrandTotal)
	assert.Contains(t, last.TotalAidFormatted, "$")
}

func TestGetSectors_RespectsYearBounds(t *testing.T) {
	server := newTestServer(t)

	var body api.ReportResponse[api.SectorDTO]
	resp := getJSON(t, server.URL+"/api/reports/sectors?from=2021&to=2021", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Rows)
	for _, row := range body.Rows {
		assert.Equal(t, 2021, row.Year)
	}
	assert.Equal(t, 2021, body.Options.FromYear)
}

func TestGetDonors_AppliesFloorParameter(t *testing.T) {
	server := newTestServer(t)

	var all api.ReportResponse[api.DonorDTO]
	getJSON(t, server.URL+"/api/reports/donors?floor=0", &all)

	var floored api.ReportResponse[api.DonorDTO]
	getJSON(t, server.URL+"/api/reports/donors?floor=999999999", &floored)

	assert.Greater(t, all.Count, floored.Count)
}

func TestGetQuarterly_RowsAreChronological(t *testing.T) {
	server := newTestServer(t)

	var body api.ReportResponse[api.QuarterlyDTO]
	resp := getJSON(t, server.URL+"/api/reports/quarterly", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Greater(t, len(body.Rows), 1)
	for i := 1; i < len(body.Rows); i++ {
		assert.Less(t, body.Rows[i-1].YearQuarter, body.Rows[i].YearQuarter)
	}
	assert.Equal(t, "N/A", body.Rows[0].QoQGrowth, "first quarter has no baseline")
}

// =============================================================================
// PARAMETER VALIDATION
// =============================================================================

func TestReportEndpoints_RejectMalformedParameters(t *testing.T) {
	server := newTestServer(t)

	cases := []string{
		"/api/reports/distribution?from=abc",
		"/api/reports/sectors?percentile=1.5",
		"/api/reports/donors?floor=-10",
		"/api/reports/quarterly?top=x",
	}
	for _, path := range cases {
		var body api.ErrorResponse
		resp := getJSON(t, server.URL+path, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, body.Error, path)
	}
}

// =============================================================================
// META ENDPOINTS
// =============================================================================

func TestGetDataset_ReportsSnapshotStats(t *testing.T) {
	server := newTestServer(t)

	var body api.DatasetDTO
	resp := getJSON(t, server.URL+"/api/dataset", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, body.Stats.Facts, 0)
	assert.Equal(t, 6, body.Stats.Countries)
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(t)
	resp := getJSON(t, server.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// FAILURE PATHS
// =============================================================================

type failingSource struct{}

func (failingSource) Snapshot(context.Context) (*warehouse.Dataset, error) {
	return nil, errors.New("warehouse unreachable")
}

func TestReportEndpoints_SnapshotFailureIs500(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := api.NewHandler(failingSource{}, reports.DefaultOptions(), log)
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)

	var body api.ErrorResponse
	resp := getJSON(t, server.URL+"/api/reports/distribution", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body.Error)
}
