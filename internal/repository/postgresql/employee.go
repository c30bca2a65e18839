package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.user_id,
	e.first_name, e.last_name, e.email, e.phone, e.date_of_birth, e.gender, e.marital_status,
	e.nationality, e.national_id, e.address, e.city, e.emergency_contact, e.avatar_url,
	e.position, e.department, e.branch_id, e.manager_id, e.joining_date, e.employment_type,
	e.status, e.probation_end_date, e.contract_end_date, e.working_hours_per_day, e.overtime_rate,
	e.base_salary, e.currency, e.allowances, e.deductions, e.epf_employee, e.epf_employer, e.etf,
	e.bank_details, e.leave_balance, e.created_at, e.updated_at, e.deleted_at,
	b.name
`

const employeeFrom = `
	FROM employees e
	LEFT JOIN branches b ON b.id = e.branch_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.UserID,
		&emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.DateOfBirth, &emp.Gender, &emp.MaritalStatus,
		&emp.Nationality, &emp.NationalID, &emp.Address, &emp.City, &emp.EmergencyContact, &emp.AvatarURL,
		&emp.Position, &emp.Department, &emp.BranchID, &emp.ManagerID, &emp.JoiningDate, &emp.EmploymentType,
		&emp.Status, &emp.ProbationEndDate, &emp.ContractEndDate, &emp.WorkingHoursPerDay, &emp.OvertimeRate,
		&emp.BaseSalary, &emp.Currency, &emp.Allowances, &emp.Deductions, &emp.EPFEmployee, &emp.EPFEmployer, &emp.ETF,
		&emp.BankDetails, &emp.LeaveBalance, &emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
		&emp.BranchName,
	)
	return emp, err
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func mapEmployeeError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "uk_employee_code"):
		return employee.ErrEmployeeCodeExists
	case strings.Contains(msg, "uk_employee_email"):
		return employee.ErrEmailExists
	case strings.Contains(msg, "uk_employee_national_id"):
		return employee.ErrNationalIDExists
	}
	return err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE e.deleted_at IS NULL AND " + where

	emp, err := scanEmployee(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "e.id = $1", id)
}

// GetByCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByCode(ctx context.Context, code string) (employee.Employee, error) {
	return e.getOne(ctx, "e.employee_code = $1", code)
}

// NextCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) NextCode(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, e.db)

	var seq int64
	if err := q.QueryRow(ctx, `SELECT nextval('employee_code_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to reserve employee code: %w", err)
	}
	return employee.FormatCode(seq), nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	newEmployee.ID = uuid.Must(uuid.NewV7()).String()
	if newEmployee.Allowances == nil {
		newEmployee.Allowances = []employee.PayComponent{}
	}
	if newEmployee.Deductions == nil {
		newEmployee.Deductions = []employee.PayComponent{}
	}

	query := `
		INSERT INTO employees (
			id, employee_code, user_id,
			first_name, last_name, email, phone, date_of_birth, gender, marital_status,
			nationality, national_id, address, city, emergency_contact, avatar_url,
			position, department, branch_id, manager_id, joining_date, employment_type,
			status, probation_end_date, contract_end_date, working_hours_per_day, overtime_rate,
			base_salary, currency, allowances, deductions, epf_employee, epf_employer, etf,
			bank_details, leave_balance
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27,
			$28, $29, $30, $31, $32, $33, $34,
			$35, $36
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.EmployeeCode, newEmployee.UserID,
		newEmployee.FirstName, newEmployee.LastName, newEmployee.Email, newEmployee.Phone, newEmployee.DateOfBirth,
		newEmployee.Gender, newEmployee.MaritalStatus,
		newEmployee.Nationality, newEmployee.NationalID, newEmployee.Address, newEmployee.City,
		newEmployee.EmergencyContact, newEmployee.AvatarURL,
		newEmployee.Position, newEmployee.Department, newEmployee.BranchID, newEmployee.ManagerID,
		newEmployee.JoiningDate, newEmployee.EmploymentType,
		newEmployee.Status, newEmployee.ProbationEndDate, newEmployee.ContractEndDate,
		newEmployee.WorkingHoursPerDay, newEmployee.OvertimeRate,
		newEmployee.BaseSalary, newEmployee.Currency, newEmployee.Allowances, newEmployee.Deductions,
		newEmployee.EPFEmployee, newEmployee.EPFEmployer, newEmployee.ETF,
		newEmployee.BankDetails, newEmployee.LeaveBalance,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err)
	}

	return newEmployee, nil
}

// Update implements employee.EmployeeRepository. Every editable column is
// rewritten from emp.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET
			first_name = $2, last_name = $3, email = $4, phone = $5, date_of_birth = $6, gender = $7,
			marital_status = $8, nationality = $9, national_id = $10, address = $11, city = $12,
			emergency_contact = $13, position = $14, department = $15, branch_id = $16, manager_id = $17,
			joining_date = $18, employment_type = $19, status = $20, probation_end_date = $21,
			contract_end_date = $22, working_hours_per_day = $23, overtime_rate = $24,
			base_salary = $25, currency = $26, allowances = $27, deductions = $28,
			epf_employee = $29, epf_employer = $30, etf = $31, bank_details = $32, leave_balance = $33,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		emp.ID,
		emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.DateOfBirth, emp.Gender,
		emp.MaritalStatus, emp.Nationality, emp.NationalID, emp.Address, emp.City,
		emp.EmergencyContact, emp.Position, emp.Department, emp.BranchID, emp.ManagerID,
		emp.JoiningDate, emp.EmploymentType, emp.Status, emp.ProbationEndDate,
		emp.ContractEndDate, emp.WorkingHoursPerDay, emp.OvertimeRate,
		emp.BaseSalary, emp.Currency, emp.Allowances, emp.Deductions,
		emp.EPFEmployee, emp.EPFEmployer, emp.ETF, emp.BankDetails, emp.LeaveBalance,
	)
	if err != nil {
		return mapEmployeeError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SetAvatar implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetAvatar(ctx context.Context, id string, url string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET avatar_url = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository. Employees are soft deleted
// so payroll history keeps its references.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET deleted_at = NOW(), status = 'terminated', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	if _, err := q.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE employee_id = $1`, id); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	// Build WHERE conditions
	conditions := []string{"e.deleted_at IS NULL"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.employee_code ILIKE $%d OR e.email ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		conditions = append(conditions, fmt.Sprintf("e.branch_id = $%d", argIdx))
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Position != nil && *filter.Position != "" {
		conditions = append(conditions, fmt.Sprintf("e.position = $%d", argIdx))
		args = append(args, *filter.Position)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmploymentType != nil && *filter.EmploymentType != "" {
		conditions = append(conditions, fmt.Sprintf("e.employment_type = $%d", argIdx))
		args = append(args, *filter.EmploymentType)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	// Validate sort column
	validSortColumns := map[string]string{
		"first_name":    "e.first_name",
		"last_name":     "e.last_name",
		"employee_code": "e.employee_code",
		"joining_date":  "e.joining_date",
		"department":    "e.department",
		"created_at":    "e.created_at",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "e.created_at"
	}

	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	// Main query with pagination
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		employeeColumns, employeeFrom, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context, branchID *string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE e.deleted_at IS NULL AND e.status = 'active'"
	args := []interface{}{}
	if branchID != nil && *branchID != "" {
		query += " AND e.branch_id = $1"
		args = append(args, *branchID)
	}
	query += " ORDER BY e.employee_code"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return collectEmployees(rows)
}

// AppendHistory implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) AppendHistory(ctx context.Context, entry employee.HistoryEntry) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_leave_history (
			id, employee_id, leave_id, leave_type, start_date, end_date, days, status, actor_id, reason, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		uuid.Must(uuid.NewV7()).String(), entry.EmployeeID, entry.LeaveID, entry.LeaveType,
		entry.StartDate, entry.EndDate, entry.Days, entry.Status, entry.ActorID, entry.Reason, entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append leave history: %w", err)
	}
	return nil
}

// ListHistory implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListHistory(ctx context.Context, employeeID string) ([]employee.HistoryEntry, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_id, leave_id, leave_type, start_date, end_date, days, status, actor_id, reason, recorded_at
		FROM employee_leave_history
		WHERE employee_id = $1
		ORDER BY recorded_at DESC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave history: %w", err)
	}
	defer rows.Close()

	var entries []employee.HistoryEntry
	for rows.Next() {
		var h employee.HistoryEntry
		if err := rows.Scan(
			&h.ID, &h.EmployeeID, &h.LeaveID, &h.LeaveType, &h.StartDate, &h.EndDate,
			&h.Days, &h.Status, &h.ActorID, &h.Reason, &h.RecordedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// AddDocument implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) AddDocument(ctx context.Context, doc employee.Document) (employee.Document, error) {
	q := GetQuerier(ctx, e.db)

	doc.ID = uuid.Must(uuid.NewV7()).String()
	query := `
		INSERT INTO employee_documents (id, employee_id, name, type, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING uploaded_at
	`
	if err := q.QueryRow(ctx, query, doc.ID, doc.EmployeeID, doc.Name, doc.Type, doc.URL).Scan(&doc.UploadedAt); err != nil {
		return employee.Document{}, fmt.Errorf("failed to add document: %w", err)
	}
	return doc, nil
}

// ListDocuments implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListDocuments(ctx context.Context, employeeID string) ([]employee.Document, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, name, type, url, uploaded_at
		FROM employee_documents
		WHERE employee_id = $1
		ORDER BY uploaded_at DESC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []employee.Document
	for rows.Next() {
		var d employee.Document
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Name, &d.Type, &d.URL, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountByBranch implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CountByBranch(ctx context.Context, branchID string) (int64, error) {
	q := GetQuerier(ctx, e.db)

	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE branch_id = $1 AND deleted_at IS NULL`, branchID).Scan(&n)
	return n, err
}

// ListBirthdays implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListBirthdays(ctx context.Context, on time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + `
		WHERE e.deleted_at IS NULL AND e.status = 'active'
		  AND EXTRACT(MONTH FROM e.date_of_birth) = $1
		  AND EXTRACT(DAY FROM e.date_of_birth) = $2
	`
	rows, err := q.Query(ctx, query, int(on.Month()), on.Day())
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}
	return collectEmployees(rows)
}
