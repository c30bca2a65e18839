package attendance

import (
	"context"
)

type AttendanceService interface {
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)
	GetToday(ctx context.Context, employeeID string) (*AttendanceResponse, error)
	GetMyAttendance(ctx context.Context, employeeID string, month, year int) (MonthlyAttendanceResponse, error)

	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	Get(ctx context.Context, id string) (AttendanceResponse, error)
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Report(ctx context.Context, employeeID string, month, year int) (MonthlyAttendanceResponse, error)
	BranchStats(ctx context.Context, branchID string, date string) (BranchStatsResponse, error)
}
