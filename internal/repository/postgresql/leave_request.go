package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.days, lr.reason,
	lr.status, lr.priority, lr.is_half_day, lr.half_day_period, lr.covering_employee_id, lr.attachments,
	lr.approved_by, lr.approval_date, lr.approval_comments,
	lr.rejected_by, lr.rejection_date, lr.rejection_reason,
	lr.created_at, lr.updated_at,
	e.employee_code, TRIM(e.first_name || ' ' || e.last_name), e.branch_id, e.department
`

const leaveRequestFrom = `
	FROM leave_requests lr
	JOIN employees e ON e.id = lr.employee_id
`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var r leave.Request
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Type, &r.StartDate, &r.EndDate, &r.Days, &r.Reason,
		&r.Status, &r.Priority, &r.IsHalfDay, &r.HalfDayPeriod, &r.CoveringEmployeeID, &r.Attachments,
		&r.ApprovedBy, &r.ApprovalDate, &r.ApprovalComments,
		&r.RejectedBy, &r.RejectionDate, &r.RejectionReason,
		&r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeCode, &r.EmployeeName, &r.BranchID, &r.Department,
	)
	return r, err
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.Request, error) {
	defer rows.Close()

	var out []leave.Request
	for rows.Next() {
		r, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	req.ID = uuid.Must(uuid.NewV7()).String()
	if req.Attachments == nil {
		req.Attachments = []leave.Attachment{}
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type, start_date, end_date, days, reason,
			status, priority, is_half_day, half_day_period, covering_employee_id, attachments
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, req.Type, dateParam(req.StartDate), dateParam(req.EndDate), req.Days, req.Reason,
		req.Status, req.Priority, req.IsHalfDay, req.HalfDayPeriod, req.CoveringEmployeeID, req.Attachments,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return req, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRow(ctx, "SELECT "+leaveRequestColumns+leaveRequestFrom+" WHERE lr.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// UpdateStatus implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, req leave.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $2,
			approved_by = $3, approval_date = $4, approval_comments = $5,
			rejected_by = $6, rejection_date = $7, rejection_reason = $8,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		req.ID, req.Status,
		req.ApprovedBy, req.ApprovalDate, req.ApprovalComments,
		req.RejectedBy, req.RejectionDate, req.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("lr.leave_type = $%d", argIdx))
		args = append(args, *filter.Type)
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
	if filter.From != nil && *filter.From != "" {
		conditions = append(conditions, fmt.Sprintf("lr.end_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil && *filter.To != "" {
		conditions = append(conditions, fmt.Sprintf("lr.start_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM lr.start_date) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+leaveRequestFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY lr.created_at DESC LIMIT $%d OFFSET $%d",
		leaveRequestColumns, leaveRequestFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}

	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ApprovedDays implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) ApprovedDays(ctx context.Context, employeeID string, from, to time.Time) (map[leave.Type]float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, COALESCE(SUM(days), 0)
		FROM leave_requests
		WHERE employee_id = $1 AND status = 'approved' AND start_date BETWEEN $2 AND $3
		GROUP BY leave_type
	`
	rows, err := q.Query(ctx, query, employeeID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	defer rows.Close()

	taken := make(map[leave.Type]float64)
	for rows.Next() {
		var t leave.Type
		var days float64
		if err := rows.Scan(&t, &days); err != nil {
			return nil, err
		}
		taken[t] = days
	}
	return taken, rows.Err()
}

// ListApprovedOn implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedOn(ctx context.Context, date time.Time) (map[string]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveRequestColumns + leaveRequestFrom + `
		WHERE lr.status = 'approved' AND $1 BETWEEN lr.start_date AND lr.end_date
	`
	rows, err := q.Query(ctx, query, dateParam(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}

	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string]leave.Request, len(requests))
	for _, req := range requests {
		byEmployee[req.EmployeeID] = req
	}
	return byEmployee, nil
}

// ListForStats implements leave.LeaveRepository.
func (r *leaveRequestRepositoryImpl) ListForStats(ctx context.Context, filter leave.StatsFilter) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM lr.start_date) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM lr.start_date) = $%d", argIdx))
		args = append(args, *filter.Month)
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
	}

	query := "SELECT " + leaveRequestColumns + leaveRequestFrom + " WHERE " + strings.Join(conditions, " AND ")
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return collectLeaveRequests(rows)
}
