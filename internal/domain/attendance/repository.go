package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, a Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	// Update persists the mutable and derived columns of a.
	Update(ctx context.Context, a Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	ListEmployeeIDsWithRecord(ctx context.Context, date time.Time) (map[string]struct{}, error)
	GetBranchStats(ctx context.Context, branchID string, date time.Time) (BranchStats, error)
}
