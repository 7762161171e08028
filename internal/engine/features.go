package engine

import "time"

// Calendar feature column indices for the tree-based forecasters. Features are
// derived deterministically from the timestamp alone, so future timestamps can
// be featurized without observed values.
const (
	featHour = iota
	featWeekday
	featMonth
	featDayOfMonth
	featWeekend
	numCalendarFeatures
)

// CalendarFeatures returns the feature vector for a single timestamp:
// hour of day, day of week (Monday=0), month, day of month, weekend flag.
func CalendarFeatures(ts time.Time) []float64 {
	f := make([]float64, numCalendarFeatures)
	f[featHour] = float64(ts.Hour())
	f[featWeekday] = float64(mondayIndexed(ts.Weekday()))
	f[featMonth] = float64(ts.Month())
	f[featDayOfMonth] = float64(ts.Day())
	if isWeekend(ts) {
		f[featWeekend] = 1
	}
	return f
}

// mondayIndexed maps Go's Sunday=0 weekday to Monday=0, matching the
// convention that weekday >= 5 means weekend.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func isWeekend(ts time.Time) bool {
	return mondayIndexed(ts.Weekday()) >= 5
}
