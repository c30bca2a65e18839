package report

import "context"

type ReportService interface {
	EmployeeSummary(ctx context.Context) (EmployeeSummary, error)
	AttendanceSummary(ctx context.Context, req PeriodRequest) (AttendanceSummary, error)
	LeaveSummary(ctx context.Context, req YearRequest) (LeaveSummary, error)
	PayrollSummary(ctx context.Context, req PayrollSummaryRequest) (PayrollSummary, error)
	DepartmentSummary(ctx context.Context) ([]DepartmentSummary, error)
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)
}
