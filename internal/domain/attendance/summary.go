package attendance

// MonthlySummary aggregates one employee's records for a pay period.
type MonthlySummary struct {
	TotalDays         int     `json:"total_days"`
	PresentDays       int     `json:"present_days"`
	AbsentDays        int     `json:"absent_days"`
	LeaveDays         int     `json:"leave_days"`
	HolidayDays       int     `json:"holiday_days"`
	WeekendDays       int     `json:"weekend_days"`
	HalfDays          int     `json:"half_days"`
	RegularHours      float64 `json:"regular_hours"`
	OvertimeHours     float64 `json:"overtime_hours"`
	LateMinutes       int     `json:"late_minutes"`
	EarlyLeaveMinutes int     `json:"early_leave_minutes"`
}

// Summarize folds records into a MonthlySummary. Half days count as present.
func Summarize(records []Attendance) MonthlySummary {
	var s MonthlySummary
	for _, r := range records {
		s.TotalDays++
		switch r.Status {
		case StatusPresent:
			s.PresentDays++
		case StatusHalfDay:
			s.PresentDays++
			s.HalfDays++
		case StatusAbsent:
			s.AbsentDays++
		case StatusOnLeave:
			s.LeaveDays++
		case StatusHoliday:
			s.HolidayDays++
		case StatusWeekend:
			s.WeekendDays++
		}
		s.RegularHours += r.RegularHours
		s.OvertimeHours += r.OvertimeHours
		s.LateMinutes += r.LateMinutes
		s.EarlyLeaveMinutes += r.EarlyLeaveMinutes
	}
	s.RegularHours = round2(s.RegularHours)
	s.OvertimeHours = round2(s.OvertimeHours)
	return s
}
