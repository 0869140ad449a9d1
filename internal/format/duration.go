package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a time.Duration for display. A 128-bit
// compute usually finishes in nanoseconds, so sub-microsecond durations keep
// their nanosecond resolution; microseconds and milliseconds are used up to
// one second, and the default string representation beyond that.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}
