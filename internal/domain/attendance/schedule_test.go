package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 12, hour, min, 0, 0, time.UTC)
}

func TestSchedule_LateMinutes(t *testing.T) {
	assert.Equal(t, 15, DefaultSchedule.LateMinutes(at(9, 15)))
	assert.Equal(t, 0, DefaultSchedule.LateMinutes(at(9, 0)))
	assert.Equal(t, 0, DefaultSchedule.LateMinutes(at(8, 45)))
	assert.Equal(t, 15, DefaultSchedule.LateMinutes(at(9, 15).Add(40*time.Second)))
}

func TestSchedule_EarlyLeaveMinutes(t *testing.T) {
	assert.Equal(t, 30, DefaultSchedule.EarlyLeaveMinutes(at(17, 30)))
	assert.Equal(t, 0, DefaultSchedule.EarlyLeaveMinutes(at(18, 0)))
	assert.Equal(t, 0, DefaultSchedule.EarlyLeaveMinutes(at(19, 10)))
}

func TestNewSchedule_BranchHours(t *testing.T) {
	s := NewSchedule("08:30", "17:00")
	assert.Equal(t, "08:30", s.Opening.String())
	assert.Equal(t, 10, s.LateMinutes(at(8, 40)))
	assert.Equal(t, 0, s.EarlyLeaveMinutes(at(17, 30)))

	fallback := NewSchedule("", "25:99")
	assert.Equal(t, DefaultSchedule, fallback)
}

func TestDeriveHours(t *testing.T) {
	cases := []struct {
		name                     string
		in, out                  time.Time
		breakMin                 int
		standard                 float64
		total, regular, overtime float64
	}{
		{"regular day", at(9, 0), at(18, 0), 60, 8, 8, 8, 0},
		{"short day", at(9, 0), at(13, 0), 60, 8, 3, 3, 0},
		{"overtime", at(8, 0), at(20, 30), 60, 8, 11.5, 8, 3.5},
		{"default standard", at(9, 0), at(19, 0), 0, 0, 10, 8, 2},
		{"break longer than shift", at(9, 0), at(9, 30), 60, 8, 0, 0, 0},
		{"custom standard", at(9, 0), at(16, 0), 30, 6, 6.5, 6, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			total, regular, overtime := DeriveHours(c.in, c.out, c.breakMin, c.standard)
			assert.InDelta(t, c.total, total, 0.001)
			assert.InDelta(t, c.regular, regular, 0.001)
			assert.InDelta(t, c.overtime, overtime, 0.001)
			assert.InDelta(t, total, regular+overtime, 0.011)
			if overtime > 0 {
				standard := c.standard
				if standard == 0 {
					standard = DefaultStandardWorkHours
				}
				assert.Greater(t, total, standard)
			}
		})
	}
}

func TestAttendance_Recalculate(t *testing.T) {
	in, out := at(9, 15), at(17, 30)
	a := Attendance{ClockIn: &in, ClockOut: &out, BreakTime: 60}
	a.Recalculate(DefaultSchedule, 8, time.UTC)

	assert.Equal(t, 15, a.LateMinutes)
	assert.Equal(t, 30, a.EarlyLeaveMinutes)
	assert.InDelta(t, 7.25, a.TotalHours, 0.001)
	assert.InDelta(t, 7.25, a.RegularHours, 0.001)
	assert.Zero(t, a.OvertimeHours)
}

func TestAttendance_RecalculateUsesLocation(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	// 04:00 UTC is 09:30 in Colombo.
	in := time.Date(2025, time.March, 12, 4, 0, 0, 0, time.UTC)
	a := Attendance{ClockIn: &in}
	a.Recalculate(DefaultSchedule, 8, colombo)
	assert.Equal(t, 30, a.LateMinutes)
}

func TestPatch_Apply(t *testing.T) {
	in := at(9, 0)
	a := Attendance{ClockIn: &in, Status: StatusPresent, WorkType: WorkTypeOffice, TotalHours: 99}

	out := at(18, 0)
	status := StatusHalfDay
	require.NoError(t, Patch{ClockOut: &out, Status: &status}.Apply(&a))
	assert.Equal(t, StatusHalfDay, a.Status)
	assert.Equal(t, out, *a.ClockOut)

	early := at(8, 0)
	assert.ErrorIs(t, Patch{ClockOut: &early}.Apply(&a), ErrClockOutBeforeClockIn)

	bad := Status("sleeping")
	assert.ErrorIs(t, Patch{Status: &bad}.Apply(&a), ErrInvalidStatus)
	assert.ErrorIs(t, Patch{}.Apply(&a), ErrEmptyPatch)
}

func TestSummarize(t *testing.T) {
	records := []Attendance{
		{Status: StatusPresent, RegularHours: 8, OvertimeHours: 1.5, LateMinutes: 10},
		{Status: StatusHalfDay, RegularHours: 4},
		{Status: StatusAbsent},
		{Status: StatusOnLeave},
		{Status: StatusWeekend},
		{Status: StatusHoliday},
		{Status: StatusPresent, RegularHours: 7.25, EarlyLeaveMinutes: 30},
	}
	s := Summarize(records)
	assert.Equal(t, 7, s.TotalDays)
	assert.Equal(t, 3, s.PresentDays)
	assert.Equal(t, 1, s.HalfDays)
	assert.Equal(t, 1, s.AbsentDays)
	assert.Equal(t, 1, s.LeaveDays)
	assert.Equal(t, 1, s.WeekendDays)
	assert.Equal(t, 1, s.HolidayDays)
	assert.InDelta(t, 19.25, s.RegularHours, 0.001)
	assert.InDelta(t, 1.5, s.OvertimeHours, 0.001)
	assert.Equal(t, 10, s.LateMinutes)
	assert.Equal(t, 30, s.EarlyLeaveMinutes)
}
