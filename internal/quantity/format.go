package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatClock formats seconds as "M:SS", or "H:MM:SS" past an hour
func FormatClock(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// TrimFloat formats v with up to the given decimals, dropping trailing zeros
func TrimFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// PaceSuffix turns a pace unit ("s/mi") into its display suffix ("/mi")
func PaceSuffix(unit string) string {
	return strings.TrimPrefix(unit, Seconds)
}

// Format renders a quantity for display using its unit
func Format(q Quantity) string {
	switch q.Unit {
	case Seconds:
		return FormatClock(q.Value)
	case SecondsPerMile, SecondsPerKm:
		return FormatClock(q.Value) + " " + PaceSuffix(q.Unit)
	case Miles, Kilometers:
		return fmt.Sprintf("%.2f %s", q.Value, q.Unit)
	case Feet, Meters:
		return fmt.Sprintf("%.0f %s", q.Value, q.Unit)
	case Fahrenheit, Celsius:
		return fmt.Sprintf("%.0f%s", q.Value, q.Unit)
	case Percent:
		return fmt.Sprintf("%.0f%%", q.Value)
	default:
		return q.String()
	}
}
