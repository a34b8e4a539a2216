package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"tablebook/internal/models"
)

// ToMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
func ToMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("invalid time format %q, expected HH:MM", clock)}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("invalid hour in %q", clock)}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("invalid minute in %q", clock)}
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("invalid second in %q", clock)}
		}
	}

	return hours*60 + minutes, nil
}

// NormalizeClose lifts a close time at or before open into the next day.
// A window like 20:00-04:00 becomes 1200-1680 for arithmetic.
func NormalizeClose(openMin, closeMin int) int {
	if closeMin <= openMin {
		return closeMin + models.MinutesPerDay
	}
	return closeMin
}

// Overlaps reports whether two half-open intervals [start, start+duration)
// share at least one minute. Symmetric in its arguments.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// liftPastMidnight maps a start minute into the window's continuous frame.
// In a midnight-crossing window a start before open belongs to the
// post-midnight tail of the business day and shifts forward one day, so
// 00:30 compares after 23:00 rather than before open.
func liftPastMidnight(startMin int, window *models.TimeWindow) int {
	if window != nil && window.CrossesMidnight() && startMin < window.OpenMin {
		return startMin + models.MinutesPerDay
	}
	return startMin
}

// FormatMinutes renders minutes since midnight as HH:MM, wrapping values
// outside a single day so times past midnight read as clock times.
func FormatMinutes(totalMinutes int) string {
	for totalMinutes < 0 {
		totalMinutes += models.MinutesPerDay
	}
	totalMinutes %= models.MinutesPerDay
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
