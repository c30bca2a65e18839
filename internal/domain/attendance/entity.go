package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusHoliday Status = "holiday"
	StatusWeekend Status = "weekend"
	StatusOnLeave Status = "on-leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusHoliday, StatusWeekend, StatusOnLeave:
		return true
	}
	return false
}

type WorkType string

const (
	WorkTypeOffice WorkType = "office"
	WorkTypeRemote WorkType = "remote"
	WorkTypeField  WorkType = "field"
)

func (w WorkType) IsValid() bool {
	switch w {
	case WorkTypeOffice, WorkTypeRemote, WorkTypeField:
		return true
	}
	return false
}

const (
	DefaultBreakMinutes      = 60
	DefaultStandardWorkHours = 8.0
	dateLayout               = "2006-01-02"
)

type Attendance struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	ClockIn           *time.Time
	ClockOut          *time.Time
	BreakTime         int
	TotalHours        float64
	RegularHours      float64
	OvertimeHours     float64
	LateMinutes       int
	EarlyLeaveMinutes int
	Status            Status
	WorkType          WorkType
	Location          *string
	Notes             *string
	ApprovedBy        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined
	EmployeeCode *string
	EmployeeName *string
	BranchID     *string
	Department   *string
}

// DateKey returns the calendar day as YYYY-MM-DD.
func (a Attendance) DateKey() string {
	return a.Date.Format(dateLayout)
}

// Recalculate re-derives hours, lateness and early leave from the stored
// clock times. Derived fields for a missing time are reset to zero.
func (a *Attendance) Recalculate(schedule Schedule, standardHours float64, loc *time.Location) {
	a.LateMinutes = 0
	a.EarlyLeaveMinutes = 0
	a.TotalHours, a.RegularHours, a.OvertimeHours = 0, 0, 0

	if a.ClockIn != nil {
		a.LateMinutes = schedule.LateMinutes(a.ClockIn.In(loc))
	}
	if a.ClockOut != nil {
		a.EarlyLeaveMinutes = schedule.EarlyLeaveMinutes(a.ClockOut.In(loc))
	}
	if a.ClockIn != nil && a.ClockOut != nil {
		a.TotalHours, a.RegularHours, a.OvertimeHours = DeriveHours(*a.ClockIn, *a.ClockOut, a.BreakTime, standardHours)
	}
}

// BranchStats is the attendance picture for one branch on one day.
type BranchStats struct {
	Date               time.Time
	TotalEmployees     int
	Present            int
	Absent             int
	OnLeave            int
	Late               int
	WithOvertime       int
	AvgRegularHours    float64
	TotalOvertimeHours float64
}
