package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats f with a fixed number of decimal places. NaN and
// infinities render as an empty cell.
func formatFloat(f float64, decimals int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if decimals < 0 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', decimals, 64)
	if s == "-"+strconv.FormatFloat(0, 'f', decimals, 64) {
		return s[1:]
	}
	return s
}

// formatOptional formats a value that may be undefined
func formatOptional(f *float64, decimals int) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f, decimals)
}

// formatInt formats an integer value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders one table value as CSV text
func formatCell(v interface{}, decimals int) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x, decimals)
	case *float64:
		return formatOptional(x, decimals)
	case int:
		return formatInt(int64(x))
	case int64:
		return formatInt(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return ""
	}
}
