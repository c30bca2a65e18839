package branch

import (
	"time"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
)

type Branch struct {
	ID          string
	Name        string
	Code        string
	Address     *string
	City        *string
	Phone       *string
	Email       *string
	ManagerID   *string
	Departments []string
	IsActive    bool
	OpeningTime string
	ClosingTime string
	// WorkingDays holds time.Weekday values, Sunday = 0.
	WorkingDays []int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined
	ManagerName *string
}

var DefaultWorkingDays = []int{1, 2, 3, 4, 5}

// Schedule returns the branch's opening hours for attendance calculations.
func (b Branch) Schedule() attendance.Schedule {
	return attendance.NewSchedule(b.OpeningTime, b.ClosingTime)
}

// IsWorkingDay reports whether d is one of the branch's working weekdays.
func (b Branch) IsWorkingDay(d time.Weekday) bool {
	days := b.WorkingDays
	if len(days) == 0 {
		days = DefaultWorkingDays
	}
	for _, wd := range days {
		if time.Weekday(wd) == d {
			return true
		}
	}
	return false
}

type Stats struct {
	TotalEmployees  int
	ActiveEmployees int
	Departments     map[string]int
	PresentToday    int
	LateToday       int
	OnLeaveToday    int
}
