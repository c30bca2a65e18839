package report

import (
	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/pkg/export"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type PeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type YearRequest struct {
	Year int `json:"year"`
}

func (r *YearRequest) Validate() error {
	if !validator.IsValidYear(r.Year) {
		return validator.ValidationErrors{{Field: "year", Message: "year must be between 2000 and 2100"}}
	}
	return nil
}

// PayrollSummaryRequest narrows the payroll summary; both fields are optional.
type PayrollSummaryRequest struct {
	Month *int `json:"month,omitempty"`
	Year  *int `json:"year,omitempty"`
}

func (r *PayrollSummaryRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month != nil && !validator.IsValidMonth(*r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if r.Year != nil && !validator.IsValidYear(*r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExportKind string

const (
	ExportEmployees  ExportKind = "employees"
	ExportAttendance ExportKind = "attendance"
	ExportPayroll    ExportKind = "payroll"
)

type Format = export.Format

const (
	FormatXLSX = export.FormatXLSX
	FormatCSV  = export.FormatCSV
)

type ExportRequest struct {
	Kind   ExportKind
	Format Format
	Month  int
	Year   int
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Format == "" {
		r.Format = FormatXLSX
	}
	if r.Format != FormatXLSX && r.Format != FormatCSV {
		errs = append(errs, validator.ValidationError{Field: "format", Message: "format must be xlsx or csv"})
	}
	switch r.Kind {
	case ExportEmployees:
	case ExportAttendance, ExportPayroll:
		if !validator.IsValidMonth(r.Month) {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
		}
		if !validator.IsValidYear(r.Year) {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "unknown export"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filename is the attachment name, e.g. attendance_3_2025.xlsx.
func (r ExportRequest) Filename() string {
	name := string(r.Kind)
	if r.Kind != ExportEmployees {
		name += "_" + validator.Itoa(r.Month) + "_" + validator.Itoa(r.Year)
	}
	return r.Format.Filename(name)
}

func (r ExportRequest) ContentType() string {
	return r.Format.ContentType()
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type EmployeeSummary struct {
	TotalEmployees    int64            `json:"total_employees"`
	ActiveEmployees   int64            `json:"active_employees"`
	InactiveEmployees int64            `json:"inactive_employees"`
	OnLeaveEmployees  int64            `json:"on_leave_employees"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByDepartment      map[string]int64 `json:"by_department"`
	ByPosition        map[string]int64 `json:"by_position"`
	ByEmploymentType  map[string]int64 `json:"by_employment_type"`
	ByGender          map[string]int64 `json:"by_gender"`
}

type AttendanceSummary struct {
	Month              int                         `json:"month"`
	Year               int                         `json:"year"`
	TotalRecords       int64                       `json:"total_records"`
	TotalOvertimeHours float64                     `json:"total_overtime_hours"`
	ByStatus           map[string]int64            `json:"by_status"`
	ByDepartment       map[string]map[string]int64 `json:"by_department"`
}

type LeaveDepartment struct {
	Total     int64 `json:"total"`
	Approved  int64 `json:"approved"`
	Pending   int64 `json:"pending"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
}

type LeaveSummary struct {
	Year          int                        `json:"year"`
	TotalRequests int64                      `json:"total_requests"`
	ApprovedDays  float64                    `json:"approved_days"`
	ByStatus      map[string]int64           `json:"by_status"`
	ByType        map[string]int64           `json:"by_type"`
	ByDepartment  map[string]LeaveDepartment `json:"by_department"`
}

type PayrollDepartment struct {
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageSalary decimal.Decimal `json:"average_salary"`
}

type PayrollSummary struct {
	Month            *int                         `json:"month,omitempty"`
	Year             *int                         `json:"year,omitempty"`
	TotalPayrolls    int64                        `json:"total_payrolls"`
	TotalGross       decimal.Decimal              `json:"total_gross"`
	TotalNet         decimal.Decimal              `json:"total_net"`
	TotalTax         decimal.Decimal              `json:"total_tax"`
	TotalBonus       decimal.Decimal              `json:"total_bonus"`
	TotalOvertime    decimal.Decimal              `json:"total_overtime"`
	TotalEPFEmployee decimal.Decimal              `json:"total_epf_employee"`
	TotalEPFEmployer decimal.Decimal              `json:"total_epf_employer"`
	TotalETF         decimal.Decimal              `json:"total_etf"`
	ByStatus         map[string]int64             `json:"by_status"`
	ByDepartment     map[string]PayrollDepartment `json:"by_department"`
}

type DepartmentSummary struct {
	Department          string          `json:"department"`
	TotalEmployees      int64           `json:"total_employees"`
	ActiveEmployees     int64           `json:"active_employees"`
	AverageAttendance   float64         `json:"average_attendance"`
	TotalLeavesThisYear int64           `json:"total_leaves_this_year"`
	TotalPayrollCost    decimal.Decimal `json:"total_payroll_cost"`
}
