package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out, a.break_time,
	a.total_hours, a.regular_hours, a.overtime_hours, a.late_minutes, a.early_leave_minutes,
	a.status, a.work_type, a.location, a.notes, a.approved_by, a.created_at, a.updated_at,
	e.employee_code, NULLIF(TRIM(e.first_name || ' ' || e.last_name), ''), e.branch_id, e.department
`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.ClockIn, &att.ClockOut, &att.BreakTime,
		&att.TotalHours, &att.RegularHours, &att.OvertimeHours, &att.LateMinutes, &att.EarlyLeaveMinutes,
		&att.Status, &att.WorkType, &att.Location, &att.Notes, &att.ApprovedBy, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeCode, &att.EmployeeName, &att.BranchID, &att.Department,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	newAttendance.ID = uuid.Must(uuid.NewV7()).String()

	query := `
		INSERT INTO attendances (
			id, employee_id, date, clock_in, clock_out, break_time,
			total_hours, regular_hours, overtime_hours, late_minutes, early_leave_minutes,
			status, work_type, location, notes, approved_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID, newAttendance.EmployeeID, dateParam(newAttendance.Date),
		newAttendance.ClockIn, newAttendance.ClockOut, newAttendance.BreakTime,
		newAttendance.TotalHours, newAttendance.RegularHours, newAttendance.OvertimeHours,
		newAttendance.LateMinutes, newAttendance.EarlyLeaveMinutes,
		newAttendance.Status, newAttendance.WorkType, newAttendance.Location, newAttendance.Notes,
		newAttendance.ApprovedBy,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_attendance_employee_date") {
			return attendance.Attendance{}, attendance.ErrAttendanceAlreadyMarked
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, "SELECT "+attendanceColumns+attendanceFrom+" WHERE a.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE a.employee_id = $1 AND a.date = $2"

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, dateParam(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			clock_in = $2, clock_out = $3, break_time = $4,
			total_hours = $5, regular_hours = $6, overtime_hours = $7,
			late_minutes = $8, early_leave_minutes = $9,
			status = $10, work_type = $11, location = $12, notes = $13, approved_by = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID, att.ClockIn, att.ClockOut, att.BreakTime,
		att.TotalHours, att.RegularHours, att.OvertimeHours,
		att.LateMinutes, att.EarlyLeaveMinutes,
		att.Status, att.WorkType, att.Location, att.Notes, att.ApprovedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		baseWhere += fmt.Sprintf(" AND e.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		baseWhere += fmt.Sprintf(" AND e.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*)" + attendanceFrom + " WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY a.date DESC, e.employee_code ASC LIMIT $%d OFFSET $%d",
		attendanceColumns, attendanceFrom, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date ASC
	`
	rows, err := q.Query(ctx, query, employeeID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	return collectAttendances(rows)
}

// ListEmployeeIDsWithRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListEmployeeIDsWithRecord(ctx context.Context, date time.Time) (map[string]struct{}, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT employee_id FROM attendances WHERE date = $1`, dateParam(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// GetBranchStats implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetBranchStats(ctx context.Context, branchID string, date time.Time) (attendance.BranchStats, error) {
	q := GetQuerier(ctx, a.db)

	stats := attendance.BranchStats{Date: date}

	query := `
		SELECT
			COUNT(e.id),
			COUNT(a.id) FILTER (WHERE a.status IN ('present', 'half-day')),
			COUNT(a.id) FILTER (WHERE a.status = 'absent'),
			COUNT(a.id) FILTER (WHERE a.status = 'on-leave'),
			COUNT(a.id) FILTER (WHERE a.late_minutes > 0),
			COUNT(a.id) FILTER (WHERE a.overtime_hours > 0),
			COALESCE(AVG(a.regular_hours) FILTER (WHERE a.clock_out IS NOT NULL), 0),
			COALESCE(SUM(a.overtime_hours), 0)
		FROM employees e
		LEFT JOIN attendances a ON a.employee_id = e.id AND a.date = $2
		WHERE e.branch_id = $1 AND e.deleted_at IS NULL AND e.status = 'active'
	`
	err := q.QueryRow(ctx, query, branchID, dateParam(date)).Scan(
		&stats.TotalEmployees, &stats.Present, &stats.Absent, &stats.OnLeave,
		&stats.Late, &stats.WithOvertime, &stats.AvgRegularHours, &stats.TotalOvertimeHours,
	)
	if err != nil {
		return attendance.BranchStats{}, fmt.Errorf("failed to compute branch stats: %w", err)
	}
	return stats, nil
}
