package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// IsAfterToday compares calendar dates only, so today with any time of day
// is not "in the future". The comparison is on (year, month, day) tuples
// rather than instants, because parsed YYYY-MM-DD values may carry a UTC
// location while the server clock runs in another zone.
func IsAfterToday(t time.Time) bool {
	ty, tm, td := t.Date()
	ny, nm, nd := time.Now().Date()
	if ty != ny {
		return ty > ny
	}
	if tm != nm {
		return tm > nm
	}
	return td > nd
}
