// Package timeutil holds small time formatting helpers shared by the logger
// and the run summary output.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration the way the npm debug package does:
// sub-millisecond values in microseconds, sub-second in milliseconds,
// sub-minute in seconds, everything else in minutes.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}

// FormatElapsed formats a wall-clock duration for the run summary,
// always in seconds with millisecond precision.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
