package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmployees(t *testing.T) {
	s := SummarizeEmployees(
		[]Count{{Key: "active", Count: 8}, {Key: "inactive", Count: 1}, {Key: "on-leave", Count: 2}},
		[]Count{{Key: "Sales", Count: 6}, {Key: "", Count: 5}},
		nil, nil, nil,
	)

	assert.Equal(t, int64(11), s.TotalEmployees)
	assert.Equal(t, int64(8), s.ActiveEmployees)
	assert.Equal(t, int64(1), s.InactiveEmployees)
	assert.Equal(t, int64(2), s.OnLeaveEmployees)
	assert.Equal(t, int64(5), s.ByDepartment["unspecified"])
	assert.Empty(t, s.ByGender)
}

func TestSummarizeAttendance(t *testing.T) {
	s := SummarizeAttendance(3, 2025, []AttendanceCount{
		{Department: "Sales", Status: "present", Records: 20, OvertimeHours: 4.125},
		{Department: "Sales", Status: "absent", Records: 2},
		{Department: "", Status: "present", Records: 3, OvertimeHours: 1},
	})

	assert.Equal(t, int64(25), s.TotalRecords)
	assert.Equal(t, int64(23), s.ByStatus["present"])
	assert.Equal(t, 5.13, s.TotalOvertimeHours)
	assert.Equal(t, int64(2), s.ByDepartment["Sales"]["absent"])
	assert.Len(t, s.ByDepartment, 1)
}

func TestSummarizeLeaves(t *testing.T) {
	s := SummarizeLeaves(2025, []LeaveCount{
		{Department: "Ops", Type: "annual", Status: "approved", Requests: 3, Days: 7.5},
		{Department: "Ops", Type: "sick", Status: "pending", Requests: 1, Days: 1},
		{Department: "Ops", Type: "annual", Status: "cancelled", Requests: 1, Days: 2},
	})

	assert.Equal(t, int64(5), s.TotalRequests)
	assert.Equal(t, 7.5, s.ApprovedDays)
	assert.Equal(t, int64(4), s.ByType["annual"])
	assert.Equal(t, LeaveDepartment{Total: 5, Approved: 3, Pending: 1, Cancelled: 1}, s.ByDepartment["Ops"])
}

func TestSummarizePayroll(t *testing.T) {
	month, year := 3, 2025
	s := SummarizePayroll(&month, &year, []PayrollTotals{
		{Department: "Sales", Status: "paid", Count: 2, Net: decimal.NewFromInt(150000), Gross: decimal.NewFromInt(170000)},
		{Department: "Sales", Status: "draft", Count: 1, Net: decimal.NewFromInt(50000), Gross: decimal.NewFromInt(55000)},
	})

	assert.Equal(t, int64(3), s.TotalPayrolls)
	assert.True(t, s.TotalNet.Equal(decimal.NewFromInt(200000)))
	assert.True(t, s.TotalGross.Equal(decimal.NewFromInt(225000)))
	dept := s.ByDepartment["Sales"]
	require.Equal(t, int64(3), dept.Count)
	assert.Equal(t, "66666.67", dept.AverageSalary.StringFixed(2))
}

func TestSummarizeDepartments(t *testing.T) {
	rows := SummarizeDepartments([]DepartmentFigures{
		{Department: "Sales", TotalEmployees: 4, PresentDays: 70},
		{Department: "Admin", TotalEmployees: 0},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "Admin", rows[0].Department)
	assert.Zero(t, rows[0].AverageAttendance)
	assert.Equal(t, 17.5, rows[1].AverageAttendance)
}

func TestExportRequest(t *testing.T) {
	req := ExportRequest{Kind: ExportAttendance, Month: 3, Year: 2025}
	require.NoError(t, req.Validate())
	assert.Equal(t, "attendance_3_2025.xlsx", req.Filename())

	req = ExportRequest{Kind: ExportEmployees, Format: FormatCSV}
	require.NoError(t, req.Validate())
	assert.Equal(t, "employees.csv", req.Filename())
	assert.Equal(t, "text/csv", req.ContentType())

	req = ExportRequest{Kind: ExportPayroll, Format: "pdf"}
	assert.Error(t, req.Validate())
}
