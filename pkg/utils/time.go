package utils

import "time"

// traceStampLayout matches the yy_mm_dd_HH_MM suffix used for trace files.
const traceStampLayout = "06_01_02_15_04"

// TimestampSuffix formats t for use in output file names
func TimestampSuffix(t time.Time) string {
	return t.Format(traceStampLayout)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return d.String()
	}
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
