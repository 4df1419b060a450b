/*
format.go - Presentation formatting for report values

PURPOSE:
  Renders monetary and percentage values for the API surface. The report
  pipelines themselves stay numeric; formatting is strictly a boundary
  concern.

SEE ALSO:
  - api/dto.go: The consumer of these helpers
*/
package reports

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotApplicable is rendered for absent ratios (no previous period, zero
// baseline).
const NotApplicable = "N/A"

// FormatUSD renders a decimal as "$1,234,567.89".
func FormatUSD(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// FormatNullUSD renders an absent value as NotApplicable.
func FormatNullUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotApplicable
	}
	return FormatUSD(d.Decimal)
}

// FormatPercent renders a ratio percentage with one decimal, "N/A" for nil.
func FormatPercent(p *float64) string {
	if p == nil {
		return NotApplicable
	}
	return decimal.NewFromFloat(*p).StringFixed(1) + "%"
}
