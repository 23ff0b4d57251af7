package runtime

import (
	"math"
	"strconv"
)

// formatDisplayNumber renders a float the way console.log's argument
// formatter does, matching internal/builtin's own formatNumber (kept
// duplicated rather than exported across the package boundary: this is
// a display-only concern, not part of the engine's ToString algorithm
// internal/builtin's callers rely on).
func formatDisplayNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
