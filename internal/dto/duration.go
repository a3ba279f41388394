package dto

import (
	"fmt"
	"time"
)

// FormatDuration renders d as H:MM:SS, prefixed with a day count once it
// reaches 24 hours and suffixed with microseconds when they are non-zero.
// Zero renders as "0:00:00".
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	micros := int64(d / time.Microsecond)
	seconds := micros / 1_000_000
	micros %= 1_000_000

	days := seconds / 86400
	seconds %= 86400
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds %= 60

	out := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micros != 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	switch {
	case days == 1:
		out = "1 day, " + out
	case days > 1:
		out = fmt.Sprintf("%d days, %s", days, out)
	}
	return sign + out
}

// FormatDurationPtr is FormatDuration for optional durations.
func FormatDurationPtr(d *time.Duration) *string {
	if d == nil {
		return nil
	}
	s := FormatDuration(*d)
	return &s
}
