package report

import (
	"context"
	"time"
)

// ReportRepository runs read-only aggregate queries across the other aggregates.
type ReportRepository interface {
	CountEmployees(ctx context.Context, by Dimension) ([]Count, error)
	AttendanceCounts(ctx context.Context, from, to time.Time) ([]AttendanceCount, error)
	LeaveCounts(ctx context.Context, from, to time.Time) ([]LeaveCount, error)
	PayrollTotals(ctx context.Context, month, year *int) ([]PayrollTotals, error)
	DepartmentFigures(ctx context.Context, month, year int) ([]DepartmentFigures, error)

	EmployeeRows(ctx context.Context) ([]EmployeeRow, error)
	AttendanceRows(ctx context.Context, from, to time.Time) ([]AttendanceRow, error)
	PayrollRows(ctx context.Context, month, year int) ([]PayrollRow, error)
}
