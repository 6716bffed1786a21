package shared

import "time"

// CalendarDate keeps the wall-clock day of t and drops the rest. The result
// is midnight UTC, which is how DATE columns scan back from Postgres.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
