package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

type AttendanceServiceImpl struct {
	attendance attendance.AttendanceRepository
	employees  employee.EmployeeRepository
	branches   branch.BranchRepository
	loc        *time.Location
	now        func() time.Time
}

// NewAttendanceService builds the attendance ledger. Calendar days and branch
// hours are interpreted in loc.
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employees employee.EmployeeRepository,
	branches branch.BranchRepository,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceServiceImpl{
		attendance: attendanceRepo,
		employees:  employees,
		branches:   branches,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *AttendanceServiceImpl) today() (time.Time, time.Time) {
	now := s.now().In(s.loc)
	return now, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// scheduleFor returns the employee's branch hours, falling back to the
// default schedule when the branch is gone.
func (s *AttendanceServiceImpl) scheduleFor(ctx context.Context, emp employee.Employee) (attendance.Schedule, error) {
	b, err := s.branches.GetByID(ctx, emp.BranchID)
	if err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return attendance.DefaultSchedule, nil
		}
		return attendance.Schedule{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return b.Schedule(), nil
}

func (s *AttendanceServiceImpl) recalculate(ctx context.Context, a *attendance.Attendance) error {
	emp, err := s.employees.GetByID(ctx, a.EmployeeID)
	if err != nil {
		return err
	}
	schedule, err := s.scheduleFor(ctx, emp)
	if err != nil {
		return err
	}
	a.Recalculate(schedule, emp.StandardHours(), s.loc)
	return nil
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	now, day := s.today()

	record, err := s.attendance.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
	exists := err == nil
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if exists && record.ClockIn != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}

	if !exists {
		record = attendance.Attendance{
			EmployeeID: req.EmployeeID,
			Date:       day,
			BreakTime:  attendance.DefaultBreakMinutes,
		}
	}
	record.ClockIn = &now
	record.Status = attendance.StatusPresent
	record.WorkType = attendance.WorkTypeOffice
	if req.WorkType != "" {
		record.WorkType = attendance.WorkType(req.WorkType)
	}
	if req.Location != nil {
		record.Location = req.Location
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := s.recalculate(ctx, &record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if exists {
		if err := s.attendance.Update(ctx, record); err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to record clock in: %w", err)
		}
		return attendance.ToResponse(record), nil
	}

	created, err := s.attendance.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceAlreadyMarked) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record clock in: %w", err)
	}
	return attendance.ToResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	now, day := s.today()

	record, err := s.attendance.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoClockIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoClockIn
	}
	if record.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	}

	record.ClockOut = &now
	record.BreakTime = attendance.DefaultBreakMinutes
	if req.BreakTime != nil {
		record.BreakTime = *req.BreakTime
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := s.recalculate(ctx, &record); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := s.attendance.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record clock out: %w", err)
	}
	return attendance.ToResponse(record), nil
}

// GetToday implements attendance.AttendanceService. A nil response means the
// employee has no record yet today.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (*attendance.AttendanceResponse, error) {
	_, day := s.today()

	record, err := s.attendance.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	resp := attendance.ToResponse(record)
	return &resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, employeeID string, month, year int) (attendance.MonthlyAttendanceResponse, error) {
	return s.monthly(ctx, employeeID, month, year)
}

// Report implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Report(ctx context.Context, employeeID string, month, year int) (attendance.MonthlyAttendanceResponse, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}
	return s.monthly(ctx, employeeID, month, year)
}

func (s *AttendanceServiceImpl) monthly(ctx context.Context, employeeID string, month, year int) (attendance.MonthlyAttendanceResponse, error) {
	now, _ := s.today()
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	if year < 1 {
		year = now.Year()
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, -1)

	records, err := s.attendance.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		return attendance.MonthlyAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.MonthlyAttendanceResponse{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Summary:    attendance.Summarize(records),
		Records:    make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.ToResponse(r))
	}
	return resp, nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	records, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.ListAttendanceResponse{
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, r := range records {
		resp.Attendances = append(resp.Attendances, attendance.ToResponse(r))
	}
	return resp, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := s.attendance.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToResponse(record), nil
}

// Mark implements attendance.AttendanceService. The same-day ordering
// checks of clock in and clock out do not apply.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	parsed, clockIn, clockOut := req.Parsed()
	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, s.loc)

	_, err = s.attendance.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
	if err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceAlreadyMarked
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check attendance: %w", err)
	}

	record := attendance.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       day,
		ClockIn:    clockIn,
		ClockOut:   clockOut,
		BreakTime:  attendance.DefaultBreakMinutes,
		Status:     attendance.Status(req.Status),
		WorkType:   attendance.WorkTypeOffice,
		Notes:      req.Notes,
		ApprovedBy: &claims.UserID,
	}
	if req.BreakTime != nil {
		record.BreakTime = *req.BreakTime
	}
	if req.WorkType != "" {
		record.WorkType = attendance.WorkType(req.WorkType)
	}

	if err := s.recalculate(ctx, &record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	created, err := s.attendance.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceAlreadyMarked) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to mark attendance: %w", err)
	}
	return attendance.ToResponse(created), nil
}

// Update implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.attendance.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := patch.Apply(&record); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
		record.ApprovedBy = &claims.UserID
	}

	if err := s.recalculate(ctx, &record); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := s.attendance.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToResponse(record), nil
}

// BranchStats implements attendance.AttendanceService. An empty date means today.
func (s *AttendanceServiceImpl) BranchStats(ctx context.Context, branchID string, date string) (attendance.BranchStatsResponse, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return attendance.BranchStatsResponse{}, err
	}

	_, day := s.today()
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			return attendance.BranchStatsResponse{}, attendance.ErrInvalidDate
		}
		day = parsed
	}

	stats, err := s.attendance.GetBranchStats(ctx, branchID, day)
	if err != nil {
		return attendance.BranchStatsResponse{}, err
	}

	return attendance.BranchStatsResponse{
		BranchID:           branchID,
		Date:               day.Format("2006-01-02"),
		TotalEmployees:     stats.TotalEmployees,
		Present:            stats.Present,
		Absent:             stats.Absent,
		OnLeave:            stats.OnLeave,
		Late:               stats.Late,
		WithOvertime:       stats.WithOvertime,
		AvgRegularHours:    stats.AvgRegularHours,
		TotalOvertimeHours: stats.TotalOvertimeHours,
	}, nil
}
