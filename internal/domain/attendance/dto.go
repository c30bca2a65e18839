package attendance

import (
	"time"

	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type ClockInRequest struct {
	EmployeeID string  `json:"-"`
	WorkType   string  `json:"work_type,omitempty"`
	Location   *string `json:"location,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.WorkType != "" && !WorkType(r.WorkType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "work_type", Message: "work_type must be one of office, remote, field"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	EmployeeID string  `json:"-"`
	BreakTime  *int    `json:"break_time,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.BreakTime != nil && (*r.BreakTime < 0 || *r.BreakTime > 600) {
		errs = append(errs, validator.ValidationError{Field: "break_time", Message: "break_time must be between 0 and 600 minutes"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkAttendanceRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	ClockIn    *string `json:"clock_in,omitempty"`
	ClockOut   *string `json:"clock_out,omitempty"`
	BreakTime  *int    `json:"break_time,omitempty"`
	WorkType   string  `json:"work_type,omitempty"`
	Notes      *string `json:"notes,omitempty"`

	parsedDate     time.Time
	parsedClockIn  *time.Time
	parsedClockOut *time.Time
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if d, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	} else {
		r.parsedDate = d
	}
	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status is invalid"})
	}
	if r.WorkType != "" && !WorkType(r.WorkType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "work_type", Message: "work_type must be one of office, remote, field"})
	}
	if r.BreakTime != nil && *r.BreakTime < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_time", Message: "break_time cannot be negative"})
	}
	if r.ClockIn != nil {
		if t, ok := validator.IsValidDateTime(*r.ClockIn); ok {
			r.parsedClockIn = &t
		} else {
			errs = append(errs, validator.ValidationError{Field: "clock_in", Message: "clock_in must be an RFC3339 timestamp"})
		}
	}
	if r.ClockOut != nil {
		if t, ok := validator.IsValidDateTime(*r.ClockOut); ok {
			r.parsedClockOut = &t
		} else {
			errs = append(errs, validator.ValidationError{Field: "clock_out", Message: "clock_out must be an RFC3339 timestamp"})
		}
	}
	if r.parsedClockIn != nil && r.parsedClockOut != nil && !r.parsedClockOut.After(*r.parsedClockIn) {
		errs = append(errs, validator.ValidationError{Field: "clock_out", Message: "clock_out must be after clock_in"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Parsed returns the values checked by Validate.
func (r *MarkAttendanceRequest) Parsed() (date time.Time, clockIn, clockOut *time.Time) {
	return r.parsedDate, r.parsedClockIn, r.parsedClockOut
}

type UpdateAttendanceRequest struct {
	ID        string  `json:"-"`
	Status    *string `json:"status,omitempty"`
	ClockIn   *string `json:"clock_in,omitempty"`
	ClockOut  *string `json:"clock_out,omitempty"`
	BreakTime *int    `json:"break_time,omitempty"`
	WorkType  *string `json:"work_type,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// ToPatch validates the request and converts it into a Patch.
func (r *UpdateAttendanceRequest) ToPatch() (Patch, error) {
	var errs validator.ValidationErrors
	var p Patch

	if r.Status != nil {
		s := Status(*r.Status)
		if !s.IsValid() {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status is invalid"})
		}
		p.Status = &s
	}
	if r.WorkType != nil {
		w := WorkType(*r.WorkType)
		if !w.IsValid() {
			errs = append(errs, validator.ValidationError{Field: "work_type", Message: "work_type must be one of office, remote, field"})
		}
		p.WorkType = &w
	}
	if r.ClockIn != nil {
		t, ok := validator.IsValidDateTime(*r.ClockIn)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "clock_in", Message: "clock_in must be an RFC3339 timestamp"})
		}
		p.ClockIn = &t
	}
	if r.ClockOut != nil {
		t, ok := validator.IsValidDateTime(*r.ClockOut)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "clock_out", Message: "clock_out must be an RFC3339 timestamp"})
		}
		p.ClockOut = &t
	}
	if r.BreakTime != nil {
		if *r.BreakTime < 0 {
			errs = append(errs, validator.ValidationError{Field: "break_time", Message: "break_time cannot be negative"})
		}
		p.BreakTime = r.BreakTime
	}
	p.Notes = r.Notes

	if len(errs) > 0 {
		return Patch{}, errs
	}
	if p.IsEmpty() {
		return Patch{}, ErrEmptyPatch
	}
	return p, nil
}

type AttendanceFilter struct {
	EmployeeID *string
	BranchID   *string
	Department *string
	Status     *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

type AttendanceResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeCode      *string    `json:"employee_code,omitempty"`
	EmployeeName      *string    `json:"employee_name,omitempty"`
	Date              string     `json:"date"`
	ClockIn           *time.Time `json:"clock_in,omitempty"`
	ClockOut          *time.Time `json:"clock_out,omitempty"`
	BreakTime         int        `json:"break_time"`
	TotalHours        float64    `json:"total_hours"`
	RegularHours      float64    `json:"regular_hours"`
	OvertimeHours     float64    `json:"overtime_hours"`
	LateMinutes       int        `json:"late_minutes"`
	EarlyLeaveMinutes int        `json:"early_leave_minutes"`
	Status            Status     `json:"status"`
	WorkType          WorkType   `json:"work_type"`
	Location          *string    `json:"location,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	ApprovedBy        *string    `json:"approved_by,omitempty"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:                a.ID,
		EmployeeID:        a.EmployeeID,
		EmployeeCode:      a.EmployeeCode,
		EmployeeName:      a.EmployeeName,
		Date:              a.DateKey(),
		ClockIn:           a.ClockIn,
		ClockOut:          a.ClockOut,
		BreakTime:         a.BreakTime,
		TotalHours:        a.TotalHours,
		RegularHours:      a.RegularHours,
		OvertimeHours:     a.OvertimeHours,
		LateMinutes:       a.LateMinutes,
		EarlyLeaveMinutes: a.EarlyLeaveMinutes,
		Status:            a.Status,
		WorkType:          a.WorkType,
		Location:          a.Location,
		Notes:             a.Notes,
		ApprovedBy:        a.ApprovedBy,
	}
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
}

type MonthlyAttendanceResponse struct {
	EmployeeID string               `json:"employee_id"`
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	Summary    MonthlySummary       `json:"summary"`
	Records    []AttendanceResponse `json:"records"`
}

type BranchStatsResponse struct {
	BranchID           string  `json:"branch_id"`
	Date               string  `json:"date"`
	TotalEmployees     int     `json:"total_employees"`
	Present            int     `json:"present"`
	Absent             int     `json:"absent"`
	OnLeave            int     `json:"on_leave"`
	Late               int     `json:"late"`
	WithOvertime       int     `json:"with_overtime"`
	AvgRegularHours    float64 `json:"avg_regular_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
}
