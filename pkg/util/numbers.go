package util

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatGrouped renders a price with thousands separators and at most 3 fraction digits.
func FormatGrouped(v float64) string {
	return humanize.CommafWithDigits(v, 3)
}

// FormatFixed2 renders v with exactly 2 fraction digits.
func FormatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatPlain renders v in its shortest exact decimal form.
func FormatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
