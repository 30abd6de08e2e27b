package format

import (
	"fmt"
	"time"
)

// Score formats a fuzzy score with two decimals.
func Score(x float64) string { return fmt.Sprintf("%.2f", x) }

// Reading formats a measurement without trailing zeros: 38.5, 110.
func Reading(x float64) string { return fmt.Sprintf("%g", x) }

// Timestamp formats t in UTC to the minute.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// ShortID returns the first block of a UUID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Truncate shortens s to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
