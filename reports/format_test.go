package reports_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/aid-analytics/analytics"
	"github.com/warp/aid-analytics/reports"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-98765", "-$98,765.00"},
		{"100", "$100.00"},
		{"1000", "$1,000.00"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, reports.FormatUSD(d), "input %s", tc.in)
	}
}

func TestFormatNullUSD(t *testing.T) {
	assert.Equal(t, "N/A", reports.FormatNullUSD(analytics.NoValue()))
	assert.Equal(t, "$12.00", reports.FormatNullUSD(analytics.SomeValue(decimal.NewFromInt(12))))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "N/A", reports.FormatPercent(nil))

	p := 12.34
	assert.Equal(t, "12.3%", reports.FormatPercent(&p))

	zero := 0.0
	assert.Equal(t, "0.0%", reports.FormatPercent(&zero))

	neg := -7.25
	assert.Equal(t, "-7.3%", reports.FormatPercent(&neg))
}
