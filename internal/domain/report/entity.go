package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimension is an employee column reports can group by.
type Dimension string

const (
	DimensionStatus         Dimension = "status"
	DimensionDepartment     Dimension = "department"
	DimensionPosition       Dimension = "position"
	DimensionEmploymentType Dimension = "employment_type"
	DimensionGender         Dimension = "gender"
)

type Count struct {
	Key   string
	Count int64
}

// AttendanceCount is the number of records per department and status in a period.
type AttendanceCount struct {
	Department    string
	Status        string
	Records       int64
	OvertimeHours float64
}

type LeaveCount struct {
	Department string
	Type       string
	Status     string
	Requests   int64
	Days       float64
}

type PayrollTotals struct {
	Department  string
	Status      string
	Count       int64
	Gross       decimal.Decimal
	Net         decimal.Decimal
	Tax         decimal.Decimal
	Bonus       decimal.Decimal
	Overtime    decimal.Decimal
	EPFEmployee decimal.Decimal
	EPFEmployer decimal.Decimal
	ETF         decimal.Decimal
}

type DepartmentFigures struct {
	Department      string
	TotalEmployees  int64
	ActiveEmployees int64
	PresentDays     int64
	ApprovedLeaves  int64
	PayrollCost     decimal.Decimal
}

// Export rows. The csv tags double as spreadsheet headers.

type EmployeeRow struct {
	EmployeeCode string `csv:"Employee ID"`
	FirstName    string `csv:"First Name"`
	LastName     string `csv:"Last Name"`
	Email        string `csv:"Email"`
	Branch       string `csv:"Branch"`
	Department   string `csv:"Department"`
	Position     string `csv:"Position"`
	JoiningDate  string `csv:"Joining Date"`
	Status       string `csv:"Status"`
	BaseSalary   string `csv:"Base Salary"`
}

type AttendanceRow struct {
	Date          string `csv:"Date"`
	EmployeeCode  string `csv:"Employee ID"`
	Name          string `csv:"Name"`
	Department    string `csv:"Department"`
	ClockIn       string `csv:"Clock In"`
	ClockOut      string `csv:"Clock Out"`
	Status        string `csv:"Status"`
	TotalHours    string `csv:"Total Hours"`
	OvertimeHours string `csv:"Overtime"`
}

type PayrollRow struct {
	EmployeeCode string `csv:"Employee ID"`
	Name         string `csv:"Name"`
	Department   string `csv:"Department"`
	Period       string `csv:"Month/Year"`
	BaseSalary   string `csv:"Base Salary"`
	Allowances   string `csv:"Allowances"`
	Deductions   string `csv:"Deductions"`
	Bonus        string `csv:"Bonus"`
	Tax          string `csv:"Tax"`
	NetSalary    string `csv:"Net Salary"`
	Status       string `csv:"Status"`
}

// FormatClock renders t as HH:MM in loc, or "" when nil.
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
