package leave

import "time"

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BusinessDays counts Monday to Friday dates in the inclusive range [start, end].
func BusinessDays(start, end time.Time) int {
	s, e := dateOnly(start), dateOnly(end)
	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// RequestDays is the number of leave days consumed by a request.
func RequestDays(start, end time.Time, isHalfDay bool) float64 {
	if isHalfDay {
		return 0.5
	}
	return float64(BusinessDays(start, end))
}

// DaysBetween returns whole calendar days from a to b, negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da, db := dateOnly(a), dateOnly(b)
	da = time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	db = time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// YearBounds returns the first and last day of year in loc.
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc), time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
}
