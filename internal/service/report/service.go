package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/report"
	"github.com/timepay/timepay-backend/internal/pkg/export"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	reports report.ReportRepository
	loc     *time.Location
	now     func() time.Time
}

func NewReportService(reports report.ReportRepository, loc *time.Location) report.ReportService {
	return &ReportServiceImpl{
		reports: reports,
		loc:     loc,
		now:     time.Now,
	}
}

func monthRange(month, year int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, -1)
}

// EmployeeSummary implements report.ReportService.
func (s *ReportServiceImpl) EmployeeSummary(ctx context.Context) (report.EmployeeSummary, error) {
	dimensions := []report.Dimension{
		report.DimensionStatus,
		report.DimensionDepartment,
		report.DimensionPosition,
		report.DimensionEmploymentType,
		report.DimensionGender,
	}
	results := make([][]report.Count, len(dimensions))

	g, gCtx := errgroup.WithContext(ctx)
	for i, dim := range dimensions {
		i, dim := i, dim
		g.Go(func() error {
			counts, err := s.reports.CountEmployees(gCtx, dim)
			if err != nil {
				return fmt.Errorf("failed to count employees by %s: %w", dim, err)
			}
			results[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.EmployeeSummary{}, err
	}

	return report.SummarizeEmployees(results[0], results[1], results[2], results[3], results[4]), nil
}

// AttendanceSummary implements report.ReportService.
func (s *ReportServiceImpl) AttendanceSummary(ctx context.Context, req report.PeriodRequest) (report.AttendanceSummary, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceSummary{}, err
	}
	from, to := monthRange(req.Month, req.Year, s.loc)
	counts, err := s.reports.AttendanceCounts(ctx, from, to)
	if err != nil {
		return report.AttendanceSummary{}, fmt.Errorf("failed to load attendance counts: %w", err)
	}
	return report.SummarizeAttendance(req.Month, req.Year, counts), nil
}

// LeaveSummary implements report.ReportService.
func (s *ReportServiceImpl) LeaveSummary(ctx context.Context, req report.YearRequest) (report.LeaveSummary, error) {
	if req.Year == 0 {
		req.Year = s.now().In(s.loc).Year()
	}
	if err := req.Validate(); err != nil {
		return report.LeaveSummary{}, err
	}
	from := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := time.Date(req.Year, time.December, 31, 0, 0, 0, 0, s.loc)
	counts, err := s.reports.LeaveCounts(ctx, from, to)
	if err != nil {
		return report.LeaveSummary{}, fmt.Errorf("failed to load leave counts: %w", err)
	}
	return report.SummarizeLeaves(req.Year, counts), nil
}

// PayrollSummary implements report.ReportService.
func (s *ReportServiceImpl) PayrollSummary(ctx context.Context, req report.PayrollSummaryRequest) (report.PayrollSummary, error) {
	if err := req.Validate(); err != nil {
		return report.PayrollSummary{}, err
	}
	totals, err := s.reports.PayrollTotals(ctx, req.Month, req.Year)
	if err != nil {
		return report.PayrollSummary{}, fmt.Errorf("failed to load payroll totals: %w", err)
	}
	return report.SummarizePayroll(req.Month, req.Year, totals), nil
}

// DepartmentSummary implements report.ReportService for the current month.
func (s *ReportServiceImpl) DepartmentSummary(ctx context.Context) ([]report.DepartmentSummary, error) {
	now := s.now().In(s.loc)
	figures, err := s.reports.DepartmentFigures(ctx, int(now.Month()), now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to load department figures: %w", err)
	}
	return report.SummarizeDepartments(figures), nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	var (
		rows  interface{}
		sheet string
		err   error
	)
	switch req.Kind {
	case report.ExportEmployees:
		sheet = "Employees"
		rows, err = s.reports.EmployeeRows(ctx)
	case report.ExportAttendance:
		sheet = "Attendance"
		from, to := monthRange(req.Month, req.Year, s.loc)
		rows, err = s.reports.AttendanceRows(ctx, from, to)
	case report.ExportPayroll:
		sheet = "Payroll"
		rows, err = s.reports.PayrollRows(ctx, req.Month, req.Year)
	}
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to load %s rows: %w", req.Kind, err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, req.Format, sheet, rows); err != nil {
		return report.ExportFile{}, err
	}

	return report.ExportFile{
		Filename:    req.Filename(),
		ContentType: req.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
