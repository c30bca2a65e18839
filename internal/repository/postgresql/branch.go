package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

const branchColumns = `
	b.id, b.name, b.code, b.address, b.city, b.phone, b.email, b.manager_id,
	b.departments, b.is_active, b.opening_time, b.closing_time, b.working_days,
	b.created_at, b.updated_at,
	NULLIF(TRIM(m.first_name || ' ' || m.last_name), '')
`

const branchFrom = `
	FROM branches b
	LEFT JOIN employees m ON m.id = b.manager_id
`

func scanBranch(row pgx.Row) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(
		&b.ID, &b.Name, &b.Code, &b.Address, &b.City, &b.Phone, &b.Email, &b.ManagerID,
		&b.Departments, &b.IsActive, &b.OpeningTime, &b.ClosingTime, &b.WorkingDays,
		&b.CreatedAt, &b.UpdatedAt,
		&b.ManagerName,
	)
	return b, err
}

func mapBranchError(err error) error {
	switch {
	case strings.Contains(err.Error(), "uk_branch_code"):
		return branch.ErrBranchCodeExists
	case strings.Contains(err.Error(), "fk_branch_manager"):
		return employee.ErrEmployeeNotFound
	}
	return err
}

// Create implements branch.BranchRepository.
func (r *branchRepositoryImpl) Create(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	b.ID = uuid.Must(uuid.NewV7()).String()
	if b.Departments == nil {
		b.Departments = []string{}
	}
	if len(b.WorkingDays) == 0 {
		b.WorkingDays = branch.DefaultWorkingDays
	}

	query := `
		INSERT INTO branches (
			id, name, code, address, city, phone, email, manager_id,
			departments, is_active, opening_time, closing_time, working_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		b.ID, b.Name, b.Code, b.Address, b.City, b.Phone, b.Email, b.ManagerID,
		b.Departments, b.IsActive, b.OpeningTime, b.ClosingTime, b.WorkingDays,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return branch.Branch{}, mapBranchError(err)
	}

	return b, nil
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + branchColumns + branchFrom + " WHERE b.id = $1"

	b, err := scanBranch(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}

	return b, nil
}

// List implements branch.BranchRepository.
func (r *branchRepositoryImpl) List(ctx context.Context, filter branch.BranchFilter) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.ActiveOnly {
		conditions = append(conditions, "b.is_active = TRUE")
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(b.name ILIKE $%d OR b.code ILIKE $%d OR b.city ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
	}

	query := "SELECT " + branchColumns + branchFrom + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY b.name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return branches, nil
}

// Update implements branch.BranchRepository.
func (r *branchRepositoryImpl) Update(ctx context.Context, req branch.UpdateBranchRequest) error {
	q := GetQuerier(ctx, r.db)

	// Build dynamic update query
	query := `UPDATE branches SET updated_at = NOW()`
	args := []interface{}{}
	argIdx := 1

	set := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argIdx)
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Code != nil {
		set("code", *req.Code)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.City != nil {
		set("city", *req.City)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.ManagerID != nil {
		set("manager_id", *req.ManagerID)
	}
	if req.Departments != nil {
		set("departments", *req.Departments)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.OpeningTime != nil {
		set("opening_time", *req.OpeningTime)
	}
	if req.ClosingTime != nil {
		set("closing_time", *req.ClosingTime)
	}
	if req.WorkingDays != nil {
		set("working_days", *req.WorkingDays)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, req.ID)

	commandTag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapBranchError(err)
	}

	if commandTag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}

	return nil
}

// Delete implements branch.BranchRepository.
func (r *branchRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM branches WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return branch.ErrBranchHasStaff
		}
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}

	return nil
}

// GetStats implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetStats(ctx context.Context, id string, day time.Time) (branch.Stats, error) {
	q := GetQuerier(ctx, r.db)

	stats := branch.Stats{Departments: map[string]int{}}

	rows, err := q.Query(ctx, `
		SELECT department, COUNT(*), COUNT(*) FILTER (WHERE status = 'active')
		FROM employees
		WHERE branch_id = $1 AND deleted_at IS NULL
		GROUP BY department
	`, id)
	if err != nil {
		return branch.Stats{}, fmt.Errorf("failed to count branch employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dept string
		var total, active int
		if err := rows.Scan(&dept, &total, &active); err != nil {
			return branch.Stats{}, err
		}
		stats.Departments[dept] = total
		stats.TotalEmployees += total
		stats.ActiveEmployees += active
	}
	if err := rows.Err(); err != nil {
		return branch.Stats{}, err
	}

	err = q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE a.status IN ('present', 'half-day')),
			COUNT(*) FILTER (WHERE a.late_minutes > 0),
			COUNT(*) FILTER (WHERE a.status = 'on-leave')
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.branch_id = $1 AND a.date = $2
	`, id, day.Format("2006-01-02")).Scan(&stats.PresentToday, &stats.LateToday, &stats.OnLeaveToday)
	if err != nil {
		return branch.Stats{}, fmt.Errorf("failed to count branch attendance: %w", err)
	}

	return stats, nil
}
