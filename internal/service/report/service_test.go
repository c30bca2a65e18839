package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/report"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type fakeReports struct {
	report.ReportRepository

	mu        sync.Mutex
	byDim     map[report.Dimension][]report.Count
	failDim   report.Dimension
	gotFrom   time.Time
	gotTo     time.Time
	gotMonth  int
	gotYear   int
	employees []report.EmployeeRow
}

func (f *fakeReports) CountEmployees(_ context.Context, by report.Dimension) ([]report.Count, error) {
	if by == f.failDim {
		return nil, errors.New("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byDim[by], nil
}

func (f *fakeReports) AttendanceCounts(_ context.Context, from, to time.Time) ([]report.AttendanceCount, error) {
	f.gotFrom, f.gotTo = from, to
	return []report.AttendanceCount{
		{Department: "IT", Status: "present", Records: 20, OvertimeHours: 3.5},
		{Department: "IT", Status: "late", Records: 2},
	}, nil
}

func (f *fakeReports) LeaveCounts(_ context.Context, from, to time.Time) ([]report.LeaveCount, error) {
	f.gotFrom, f.gotTo = from, to
	return []report.LeaveCount{{Department: "IT", Type: "annual", Status: "approved", Requests: 2, Days: 3}}, nil
}

func (f *fakeReports) PayrollTotals(_ context.Context, month, year *int) ([]report.PayrollTotals, error) {
	return []report.PayrollTotals{{Department: "IT", Status: "paid", Count: 2, Net: decimal.NewFromInt(200000)}}, nil
}

func (f *fakeReports) DepartmentFigures(_ context.Context, month, year int) ([]report.DepartmentFigures, error) {
	f.gotMonth, f.gotYear = month, year
	return []report.DepartmentFigures{{Department: "IT", TotalEmployees: 4, ActiveEmployees: 4, PresentDays: 40}}, nil
}

func (f *fakeReports) EmployeeRows(context.Context) ([]report.EmployeeRow, error) {
	return f.employees, nil
}

func newTestService(repo *fakeReports) *ReportServiceImpl {
	svc := NewReportService(repo, time.UTC).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestReportService_EmployeeSummary(t *testing.T) {
	repo := &fakeReports{byDim: map[report.Dimension][]report.Count{
		report.DimensionStatus:     {{Key: "active", Count: 8}, {Key: "inactive", Count: 2}},
		report.DimensionDepartment: {{Key: "IT", Count: 6}, {Key: "", Count: 4}},
		report.DimensionGender:     {{Key: "female", Count: 5}, {Key: "male", Count: 5}},
	}}

	got, err := newTestService(repo).EmployeeSummary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.TotalEmployees)
	assert.EqualValues(t, 8, got.ActiveEmployees)
	assert.EqualValues(t, 4, got.ByDepartment["unspecified"])
	assert.EqualValues(t, 5, got.ByGender["female"])
	assert.Empty(t, got.ByPosition)

	repo.failDim = report.DimensionPosition
	_, err = newTestService(repo).EmployeeSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position")
}

func TestReportService_AttendanceSummary(t *testing.T) {
	repo := &fakeReports{}
	svc := newTestService(repo)

	got, err := svc.AttendanceSummary(context.Background(), report.PeriodRequest{Month: 2, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), repo.gotFrom)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), repo.gotTo)
	assert.EqualValues(t, 22, got.TotalRecords)
	assert.Equal(t, 3.5, got.TotalOvertimeHours)

	_, err = svc.AttendanceSummary(context.Background(), report.PeriodRequest{Month: 13, Year: 2024})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestReportService_LeaveSummaryDefaultsToCurrentYear(t *testing.T) {
	repo := &fakeReports{}
	got, err := newTestService(repo).LeaveSummary(context.Background(), report.YearRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), repo.gotFrom)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), repo.gotTo)
	assert.Equal(t, 3.0, got.ApprovedDays)
}

func TestReportService_PayrollAndDepartments(t *testing.T) {
	repo := &fakeReports{}
	svc := newTestService(repo)

	pay, err := svc.PayrollSummary(context.Background(), report.PayrollSummaryRequest{})
	require.NoError(t, err)
	assert.True(t, pay.ByDepartment["IT"].AverageSalary.Equal(decimal.NewFromInt(100000)))

	depts, err := svc.DepartmentSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.gotMonth)
	assert.Equal(t, 2025, repo.gotYear)
	require.Len(t, depts, 1)
	assert.Equal(t, 10.0, depts[0].AverageAttendance)
}

func TestReportService_ExportEmployeesCSV(t *testing.T) {
	repo := &fakeReports{employees: []report.EmployeeRow{{
		EmployeeCode: "EMP00001",
		FirstName:    "Nimal",
		LastName:     "Perera",
		Email:        "nimal@example.com",
		Status:       "active",
		BaseSalary:   "100000.00",
	}}}

	file, err := newTestService(repo).Export(context.Background(), report.ExportRequest{Kind: report.ExportEmployees, Format: report.FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, "employees.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Employee ID,First Name,Last Name"))
	assert.True(t, strings.HasPrefix(lines[1], "EMP00001,Nimal,Perera"))
}

func TestReportService_ExportEmployeesXLSX(t *testing.T) {
	repo := &fakeReports{employees: []report.EmployeeRow{{EmployeeCode: "EMP00001"}}}

	file, err := newTestService(repo).Export(context.Background(), report.ExportRequest{Kind: report.ExportEmployees})
	require.NoError(t, err)
	assert.Equal(t, "employees.xlsx", file.Filename)
	// xlsx files are zip archives
	assert.True(t, strings.HasPrefix(string(file.Data), "PK"))
}
