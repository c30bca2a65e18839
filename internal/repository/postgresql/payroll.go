package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	p.id, p.employee_id, p.branch_id, p.month, p.year, p.attendance,
	p.base_salary, p.allowances, p.deductions, p.bonus,
	p.overtime_hours, p.overtime_rate, p.overtime_amount,
	p.late_minutes, p.late_amount, p.early_leave_minutes, p.early_leave_amount,
	p.unpaid_leave_days, p.leave_deduction_amount, p.tax,
	p.epf_employee_pct, p.epf_employer_pct, p.epf_employee, p.epf_employer, p.epf_total,
	p.etf_pct, p.etf_employer,
	p.total_allowances, p.gross_salary, p.total_deductions, p.net_salary,
	p.status, p.payment_method, p.payment_date, p.payment_reference,
	p.approved_by, p.approved_at, p.generated_by, p.notes, p.created_at, p.updated_at,
	e.employee_code, TRIM(e.first_name || ' ' || e.last_name), e.user_id, e.position, e.department,
	COALESCE(b.name, ''), e.bank_details
`

const payrollFrom = `
	FROM payrolls p
	JOIN employees e ON e.id = p.employee_id
	LEFT JOIN branches b ON b.id = p.branch_id
`

// bankDetailsRow mirrors the employee bank_details JSON document.
type bankDetailsRow struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
}

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	var bank *bankDetailsRow
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.BranchID, &p.Month, &p.Year, &p.Attendance,
		&p.BaseSalary, &p.Allowances, &p.Deductions, &p.Bonus,
		&p.Overtime.Hours, &p.Overtime.Rate, &p.Overtime.Amount,
		&p.Late.Minutes, &p.Late.Amount, &p.EarlyLeave.Minutes, &p.EarlyLeave.Amount,
		&p.LeaveDeduction.UnpaidDays, &p.LeaveDeduction.Amount, &p.Tax,
		&p.EPF.EmployeePercentage, &p.EPF.EmployerPercentage, &p.EPF.EmployeeContribution,
		&p.EPF.EmployerContribution, &p.EPF.TotalContribution,
		&p.ETF.Percentage, &p.ETF.EmployerContribution,
		&p.TotalAllowances, &p.GrossSalary, &p.TotalDeductions, &p.NetSalary,
		&p.Status, &p.PaymentMethod, &p.PaymentDate, &p.PaymentReference,
		&p.ApprovedBy, &p.ApprovedAt, &p.GeneratedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeCode, &p.EmployeeName, &p.EmployeeUserID, &p.Position, &p.Department,
		&p.BranchName, &bank,
	)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if bank != nil {
		p.BankDetails = &payroll.BankAccount{
			AccountName:   bank.AccountName,
			AccountNumber: bank.AccountNumber,
			BankName:      bank.BankName,
			Branch:        bank.Branch,
		}
	}
	return p, nil
}

func collectPayrolls(rows pgx.Rows) ([]payroll.Payroll, error) {
	defer rows.Close()

	var out []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *payrollRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayroll(q.QueryRow(ctx, "SELECT "+payrollColumns+payrollFrom+" WHERE "+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return p, nil
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	p.ID = uuid.Must(uuid.NewV7()).String()
	if p.Allowances == nil {
		p.Allowances = []payroll.LineItem{}
	}
	if p.Deductions == nil {
		p.Deductions = []payroll.LineItem{}
	}

	query := `
		INSERT INTO payrolls (
			id, employee_id, branch_id, month, year, attendance,
			base_salary, allowances, deductions, bonus,
			overtime_hours, overtime_rate, overtime_amount,
			late_minutes, late_amount, early_leave_minutes, early_leave_amount,
			unpaid_leave_days, leave_deduction_amount, tax,
			epf_employee_pct, epf_employer_pct, epf_employee, epf_employer, epf_total,
			etf_pct, etf_employer,
			total_allowances, gross_salary, total_deductions, net_salary,
			status, payment_method, generated_by, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20,
			$21, $22, $23, $24, $25,
			$26, $27,
			$28, $29, $30, $31,
			$32, $33, $34, $35
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID, p.EmployeeID, p.BranchID, p.Month, p.Year, p.Attendance,
		p.BaseSalary, p.Allowances, p.Deductions, p.Bonus,
		p.Overtime.Hours, p.Overtime.Rate, p.Overtime.Amount,
		p.Late.Minutes, p.Late.Amount, p.EarlyLeave.Minutes, p.EarlyLeave.Amount,
		p.LeaveDeduction.UnpaidDays, p.LeaveDeduction.Amount, p.Tax,
		p.EPF.EmployeePercentage, p.EPF.EmployerPercentage, p.EPF.EmployeeContribution,
		p.EPF.EmployerContribution, p.EPF.TotalContribution,
		p.ETF.Percentage, p.ETF.EmployerContribution,
		p.TotalAllowances, p.GrossSalary, p.TotalDeductions, p.NetSalary,
		p.Status, p.PaymentMethod, p.GeneratedBy, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_employee_period") {
			return payroll.Payroll{}, payroll.ErrPayrollExists
		}
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	return p, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetByPeriod implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByPeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	return r.getOne(ctx, "p.employee_id = $1 AND p.month = $2 AND p.year = $3", employeeID, month, year)
}

// Update implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Update(ctx context.Context, p payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls SET
			allowances = $2, deductions = $3, bonus = $4,
			overtime_hours = $5, overtime_rate = $6, overtime_amount = $7,
			late_minutes = $8, late_amount = $9, early_leave_minutes = $10, early_leave_amount = $11,
			unpaid_leave_days = $12, leave_deduction_amount = $13, tax = $14,
			epf_employee = $15, epf_employer = $16, epf_total = $17, etf_employer = $18,
			total_allowances = $19, gross_salary = $20, total_deductions = $21, net_salary = $22,
			status = $23, payment_method = $24, payment_date = $25, payment_reference = $26,
			approved_by = $27, approved_at = $28, notes = $29,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.Allowances, p.Deductions, p.Bonus,
		p.Overtime.Hours, p.Overtime.Rate, p.Overtime.Amount,
		p.Late.Minutes, p.Late.Amount, p.EarlyLeave.Minutes, p.EarlyLeave.Amount,
		p.LeaveDeduction.UnpaidDays, p.LeaveDeduction.Amount, p.Tax,
		p.EPF.EmployeeContribution, p.EPF.EmployerContribution, p.EPF.TotalContribution, p.ETF.EmployerContribution,
		p.TotalAllowances, p.GrossSalary, p.TotalDeductions, p.NetSalary,
		p.Status, p.PaymentMethod, p.PaymentDate, p.PaymentReference,
		p.ApprovedBy, p.ApprovedAt, p.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func payrollConditions(filter payroll.PayrollFilter) (string, []interface{}, int) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("p.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		conditions = append(conditions, fmt.Sprintf("p.branch_id = $%d", argIdx))
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}

	return strings.Join(conditions, " AND "), args, argIdx
}

// List implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args, argIdx := payrollConditions(filter)

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+payrollFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY p.year DESC, p.month DESC, e.employee_code ASC LIMIT $%d OFFSET $%d",
		payrollColumns, payrollFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}

	payrolls, err := collectPayrolls(rows)
	if err != nil {
		return nil, 0, err
	}
	return payrolls, total, nil
}

// ListByEmployee implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + payrollColumns + payrollFrom + " WHERE p.employee_id = $1 ORDER BY p.year DESC, p.month DESC"
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	return collectPayrolls(rows)
}

// ListForPeriod implements payroll.PayrollRepository. Pagination is ignored.
func (r *payrollRepositoryImpl) ListForPeriod(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args, _ := payrollConditions(filter)
	query := "SELECT " + payrollColumns + payrollFrom + " WHERE " + whereClause + " ORDER BY e.employee_code"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	return collectPayrolls(rows)
}
