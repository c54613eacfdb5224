package timer

import (
	"fmt"
	"time"
)

// Effective is elapsed plus the in-progress run, if any.
func Effective(elapsed int64, runningSince *int64, now time.Time) time.Duration {
	ms := elapsed
	if runningSince != nil {
		ms += now.UnixMilli() - *runningSince
	}
	return time.Duration(ms) * time.Millisecond
}

// Render formats the effective elapsed time as zero-padded HH:MM:SS.
// Hours do not roll over into days.
func Render(elapsed int64, runningSince *int64, now time.Time) string {
	return FormatDuration(Effective(elapsed, runningSince, now))
}

func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours renders d as fractional hours, e.g. "1.5h".
func FormatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}
