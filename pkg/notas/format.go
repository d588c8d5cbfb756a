package notas

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber shows integers without decimals and everything else with
// two decimals and a comma. NaN renders as "".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return FormatDecimal2(v)
}

// FormatDecimal2 always uses two decimals and a comma.
func FormatDecimal2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

// formatShortest is the shortest text that round-trips, with a comma.
func formatShortest(v float64) string {
	return strings.Replace(svgNum(v), ".", ",", 1)
}

// svgNum writes a coordinate without trailing zeros.
func svgNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
