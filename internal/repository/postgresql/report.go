package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/domain/report"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

// NewReportRepository returns the aggregate query layer. Export clock times
// are rendered in loc.
func NewReportRepository(db *database.DB, loc *time.Location) report.ReportRepository {
	return &reportRepositoryImpl{db: db, loc: loc}
}

var dimensionColumns = map[report.Dimension]string{
	report.DimensionStatus:         "status",
	report.DimensionDepartment:     "department",
	report.DimensionPosition:       "position",
	report.DimensionEmploymentType: "employment_type",
	report.DimensionGender:         "gender",
}

// CountEmployees implements report.ReportRepository.
func (r *reportRepositoryImpl) CountEmployees(ctx context.Context, by report.Dimension) ([]report.Count, error) {
	column, ok := dimensionColumns[by]
	if !ok {
		return nil, fmt.Errorf("unknown report dimension %q", by)
	}

	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, ''), COUNT(*)
		FROM employees
		WHERE deleted_at IS NULL
		GROUP BY %[1]s
		ORDER BY COUNT(*) DESC
	`, column)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees by %s: %w", by, err)
	}
	defer rows.Close()

	var out []report.Count
	for rows.Next() {
		var c report.Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan employee count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AttendanceCounts implements report.ReportRepository.
func (r *reportRepositoryImpl) AttendanceCounts(ctx context.Context, from, to time.Time) ([]report.AttendanceCount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.department, a.status, COUNT(*), COALESCE(SUM(a.overtime_hours), 0)
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date BETWEEN $1 AND $2
		GROUP BY e.department, a.status
	`

	rows, err := q.Query(ctx, query, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	defer rows.Close()

	var out []report.AttendanceCount
	for rows.Next() {
		var c report.AttendanceCount
		if err := rows.Scan(&c.Department, &c.Status, &c.Records, &c.OvertimeHours); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LeaveCounts implements report.ReportRepository. Requests are bucketed by
// start date.
func (r *reportRepositoryImpl) LeaveCounts(ctx context.Context, from, to time.Time) ([]report.LeaveCount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.department, l.leave_type, l.status, COUNT(*), COALESCE(SUM(l.days), 0)
		FROM leave_requests l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.start_date BETWEEN $1 AND $2
		GROUP BY e.department, l.leave_type, l.status
	`

	rows, err := q.Query(ctx, query, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaves: %w", err)
	}
	defer rows.Close()

	var out []report.LeaveCount
	for rows.Next() {
		var c report.LeaveCount
		if err := rows.Scan(&c.Department, &c.Type, &c.Status, &c.Requests, &c.Days); err != nil {
			return nil, fmt.Errorf("failed to scan leave count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PayrollTotals implements report.ReportRepository. Nil month or year means all.
func (r *reportRepositoryImpl) PayrollTotals(ctx context.Context, month, year *int) ([]report.PayrollTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.department, p.status, COUNT(*),
			COALESCE(SUM(p.gross_salary), 0), COALESCE(SUM(p.net_salary), 0),
			COALESCE(SUM(p.tax), 0), COALESCE(SUM(p.bonus), 0), COALESCE(SUM(p.overtime_amount), 0),
			COALESCE(SUM(p.epf_employee), 0), COALESCE(SUM(p.epf_employer), 0), COALESCE(SUM(p.etf_employer), 0)
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE ($1::int IS NULL OR p.month = $1) AND ($2::int IS NULL OR p.year = $2)
		GROUP BY e.department, p.status
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payrolls: %w", err)
	}
	defer rows.Close()

	var out []report.PayrollTotals
	for rows.Next() {
		var t report.PayrollTotals
		if err := rows.Scan(
			&t.Department, &t.Status, &t.Count,
			&t.Gross, &t.Net, &t.Tax, &t.Bonus, &t.Overtime,
			&t.EPFEmployee, &t.EPFEmployer, &t.ETF,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll totals: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DepartmentFigures implements report.ReportRepository. Present days and
// payroll cost cover the month; approved leaves cover the whole year.
func (r *reportRepositoryImpl) DepartmentFigures(ctx context.Context, month, year int) ([]report.DepartmentFigures, error) {
	q := GetQuerier(ctx, r.db)

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	query := `
		WITH staff AS (
			SELECT department,
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'active') AS active
			FROM employees
			WHERE deleted_at IS NULL
			GROUP BY department
		),
		present AS (
			SELECT e.department, COUNT(*) AS days
			FROM attendances a
			JOIN employees e ON e.id = a.employee_id
			WHERE a.date BETWEEN $1 AND $2 AND a.status IN ('present', 'half-day')
			GROUP BY e.department
		),
		leaves AS (
			SELECT e.department, COUNT(*) AS requests
			FROM leave_requests l
			JOIN employees e ON e.id = l.employee_id
			WHERE l.status = 'approved' AND l.start_date BETWEEN $3 AND $4
			GROUP BY e.department
		),
		cost AS (
			SELECT e.department, SUM(p.net_salary) AS amount
			FROM payrolls p
			JOIN employees e ON e.id = p.employee_id
			WHERE p.month = $5 AND p.year = $6 AND p.status <> 'cancelled'
			GROUP BY e.department
		)
		SELECT s.department, s.total, s.active,
			COALESCE(pr.days, 0), COALESCE(l.requests, 0), COALESCE(c.amount, 0)
		FROM staff s
		LEFT JOIN present pr ON pr.department = s.department
		LEFT JOIN leaves l ON l.department = s.department
		LEFT JOIN cost c ON c.department = s.department
	`

	rows, err := q.Query(ctx, query,
		dateParam(monthStart), dateParam(monthEnd),
		dateParam(yearStart), dateParam(yearEnd),
		month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate departments: %w", err)
	}
	defer rows.Close()

	var out []report.DepartmentFigures
	for rows.Next() {
		var f report.DepartmentFigures
		if err := rows.Scan(&f.Department, &f.TotalEmployees, &f.ActiveEmployees, &f.PresentDays, &f.ApprovedLeaves, &f.PayrollCost); err != nil {
			return nil, fmt.Errorf("failed to scan department figures: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// EmployeeRows implements report.ReportRepository.
func (r *reportRepositoryImpl) EmployeeRows(ctx context.Context) ([]report.EmployeeRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.employee_code, e.first_name, e.last_name, COALESCE(e.email, ''),
			COALESCE(b.name, ''), e.department, e.position, e.joining_date, e.status, e.base_salary
		FROM employees e
		LEFT JOIN branches b ON b.id = e.branch_id
		WHERE e.deleted_at IS NULL
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee export: %w", err)
	}
	defer rows.Close()

	var out []report.EmployeeRow
	for rows.Next() {
		var row report.EmployeeRow
		var joining time.Time
		var salary decimal.Decimal
		if err := rows.Scan(
			&row.EmployeeCode, &row.FirstName, &row.LastName, &row.Email,
			&row.Branch, &row.Department, &row.Position, &joining, &row.Status, &salary,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee export row: %w", err)
		}
		row.JoiningDate = joining.Format("2006-01-02")
		row.BaseSalary = salary.StringFixed(2)
		out = append(out, row)
	}
	return out, rows.Err()
}

// AttendanceRows implements report.ReportRepository.
func (r *reportRepositoryImpl) AttendanceRows(ctx context.Context, from, to time.Time) ([]report.AttendanceRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.date, e.employee_code, TRIM(e.first_name || ' ' || e.last_name), e.department,
			a.clock_in, a.clock_out, a.status, a.total_hours, a.overtime_hours
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date BETWEEN $1 AND $2
		ORDER BY a.date, e.employee_code
	`

	rows, err := q.Query(ctx, query, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance export: %w", err)
	}
	defer rows.Close()

	var out []report.AttendanceRow
	for rows.Next() {
		var row report.AttendanceRow
		var date time.Time
		var clockIn, clockOut *time.Time
		var total, overtime float64
		if err := rows.Scan(
			&date, &row.EmployeeCode, &row.Name, &row.Department,
			&clockIn, &clockOut, &row.Status, &total, &overtime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance export row: %w", err)
		}
		row.Date = date.Format("2006-01-02")
		row.ClockIn = report.FormatClock(clockIn, r.loc)
		row.ClockOut = report.FormatClock(clockOut, r.loc)
		row.TotalHours = fmt.Sprintf("%.2f", total)
		row.OvertimeHours = fmt.Sprintf("%.2f", overtime)
		out = append(out, row)
	}
	return out, rows.Err()
}

// PayrollRows implements report.ReportRepository.
func (r *reportRepositoryImpl) PayrollRows(ctx context.Context, month, year int) ([]report.PayrollRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.employee_code, TRIM(e.first_name || ' ' || e.last_name), e.department,
			p.month, p.year, p.base_salary, p.total_allowances, p.total_deductions,
			p.bonus, p.tax, p.net_salary, p.status
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.month = $1 AND p.year = $2
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll export: %w", err)
	}
	defer rows.Close()

	var out []report.PayrollRow
	for rows.Next() {
		var row report.PayrollRow
		var m, y int
		var base, allowances, deductions, bonus, tax, net decimal.Decimal
		if err := rows.Scan(
			&row.EmployeeCode, &row.Name, &row.Department,
			&m, &y, &base, &allowances, &deductions,
			&bonus, &tax, &net, &row.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll export row: %w", err)
		}
		row.Period = fmt.Sprintf("%d/%d", m, y)
		row.BaseSalary = base.StringFixed(2)
		row.Allowances = allowances.StringFixed(2)
		row.Deductions = deductions.StringFixed(2)
		row.Bonus = bonus.StringFixed(2)
		row.Tax = tax.StringFixed(2)
		row.NetSalary = net.StringFixed(2)
		out = append(out, row)
	}
	return out, rows.Err()
}
