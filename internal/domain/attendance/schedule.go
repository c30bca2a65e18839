package attendance

import (
	"fmt"
	"math"
	"time"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant c occurs on the calendar day of t, in t's location.
func (c Clock) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// Schedule is a branch's working day.
type Schedule struct {
	Opening Clock
	Closing Clock
}

// DefaultSchedule applies to branches without configured hours.
var DefaultSchedule = Schedule{
	Opening: Clock{Hour: 9},
	Closing: Clock{Hour: 18},
}

// NewSchedule builds a schedule from "HH:MM" strings, using the default for
// any empty or malformed value.
func NewSchedule(opening, closing string) Schedule {
	s := DefaultSchedule
	if c, err := ParseClock(opening); err == nil {
		s.Opening = c
	}
	if c, err := ParseClock(closing); err == nil {
		s.Closing = c
	}
	return s
}

// LateMinutes is the whole minutes clockIn falls after opening.
func (s Schedule) LateMinutes(clockIn time.Time) int {
	d := clockIn.Sub(s.Opening.On(clockIn))
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// EarlyLeaveMinutes is the whole minutes clockOut falls before closing.
func (s Schedule) EarlyLeaveMinutes(clockOut time.Time) int {
	d := s.Closing.On(clockOut).Sub(clockOut)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// DeriveHours splits worked time into regular and overtime hours. total is
// rounded to two decimals and never negative; regular+overtime == total.
func DeriveHours(clockIn, clockOut time.Time, breakMinutes int, standardHours float64) (total, regular, overtime float64) {
	if standardHours <= 0 {
		standardHours = DefaultStandardWorkHours
	}

	total = clockOut.Sub(clockIn).Hours() - float64(breakMinutes)/60
	if total < 0 {
		total = 0
	}
	total = round2(total)

	if total <= standardHours {
		return total, total, 0
	}
	regular = standardHours
	overtime = round2(total - standardHours)
	return total, regular, overtime
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
