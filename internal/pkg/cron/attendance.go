package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/leave"
)

const autoMarkedNote = "Auto-marked by daily attendance job"

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	branchRepo     branch.BranchRepository
	leaveRepo      leave.LeaveRepository
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	leaveRepo leave.LeaveRepository,
	loc *time.Location,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		branchRepo:     branchRepo,
		leaveRepo:      leaveRepo,
		loc:            loc,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees records today as absent, or on-leave when an approved
// leave covers it, for every active employee without a record. An employee is
// only considered once their branch has closed for the day and today is one of
// its working days. Re-running the job is harmless.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	now := j.now().In(j.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)

	employees, err := j.employeeRepo.ListActive(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}
	recorded, err := j.attendanceRepo.ListEmployeeIDsWithRecord(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list recorded employees: %w", err)
	}
	onLeave, err := j.leaveRepo.ListApprovedOn(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list approved leaves: %w", err)
	}

	branches := make(map[string]branch.Branch)
	var absent, leaves int
	for _, emp := range employees {
		if _, ok := recorded[emp.ID]; ok {
			continue
		}

		b, ok := branches[emp.BranchID]
		if !ok {
			b, err = j.branchRepo.GetByID(ctx, emp.BranchID)
			if err != nil {
				if !errors.Is(err, branch.ErrBranchNotFound) {
					return fmt.Errorf("failed to get branch: %w", err)
				}
				b = branch.Branch{ID: emp.BranchID}
			}
			branches[emp.BranchID] = b
		}

		if !b.IsWorkingDay(today.Weekday()) {
			continue
		}
		if now.Before(b.Schedule().Closing.On(now)) {
			continue
		}

		status := attendance.StatusAbsent
		if _, ok := onLeave[emp.ID]; ok {
			status = attendance.StatusOnLeave
		}
		note := autoMarkedNote
		_, err := j.attendanceRepo.Create(ctx, attendance.Attendance{
			EmployeeID: emp.ID,
			Date:       today,
			Status:     status,
			WorkType:   attendance.WorkTypeOffice,
			Notes:      &note,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceAlreadyMarked) {
				continue
			}
			slog.Error("Cron: Failed to mark attendance", "employee_id", emp.ID, "status", status, "error", err)
			continue
		}
		if status == attendance.StatusOnLeave {
			leaves++
		} else {
			absent++
		}
	}

	if absent+leaves > 0 {
		slog.Info("Cron: Marked missing attendance", "date", today.Format("2006-01-02"), "absent", absent, "on_leave", leaves)
	}
	return nil
}
