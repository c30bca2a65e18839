package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

const paymentColumns = `
	pm.id, pm.payroll_id, pm.employee_id, pm.branch_id, pm.amount, pm.currency,
	pm.payment_method, pm.payment_gateway, pm.transaction_id, pm.reference,
	pm.bank_details, pm.gateway_response, pm.status,
	pm.processed_at, pm.completed_at, pm.failed_at, pm.failure_reason,
	pm.processed_by, pm.notes, pm.metadata, pm.created_at, pm.updated_at,
	e.employee_code, TRIM(e.first_name || ' ' || e.last_name), e.user_id,
	COALESCE(b.name, ''), p.month, p.year
`

const paymentFrom = `
	FROM payments pm
	JOIN payrolls p ON p.id = pm.payroll_id
	JOIN employees e ON e.id = pm.employee_id
	LEFT JOIN branches b ON b.id = pm.branch_id
`

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.PayrollID, &p.EmployeeID, &p.BranchID, &p.Amount, &p.Currency,
		&p.Method, &p.Gateway, &p.TransactionID, &p.Reference,
		&p.BankDetails, &p.GatewayResponse, &p.Status,
		&p.ProcessedAt, &p.CompletedAt, &p.FailedAt, &p.FailureReason,
		&p.ProcessedBy, &p.Notes, &p.Metadata, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeCode, &p.EmployeeName, &p.EmployeeUserID,
		&p.BranchName, &p.PayrollMonth, &p.PayrollYear,
	)
	return p, err
}

func collectPayments(rows pgx.Rows) ([]payment.Payment, error) {
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepositoryImpl) getOne(ctx context.Context, where string, arg string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, "SELECT "+paymentColumns+paymentFrom+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Create implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p.ID = uuid.Must(uuid.NewV7()).String()

	query := `
		INSERT INTO payments (
			id, payroll_id, employee_id, branch_id, amount, currency,
			payment_method, payment_gateway, reference, bank_details,
			status, processed_by, notes, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID, p.PayrollID, p.EmployeeID, p.BranchID, p.Amount, p.Currency,
		p.Method, p.Gateway, p.Reference, p.BankDetails,
		p.Status, p.ProcessedBy, p.Notes, p.Metadata,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payment_payroll") {
			return payment.Payment{}, payment.ErrPaymentAlreadyExists
		}
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}

	return p, nil
}

// GetByID implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	return r.getOne(ctx, "pm.id = $1", id)
}

// GetByPayrollID implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) GetByPayrollID(ctx context.Context, payrollID string) (payment.Payment, error) {
	return r.getOne(ctx, "pm.payroll_id = $1", payrollID)
}

// Update implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Update(ctx context.Context, p payment.Payment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments SET
			transaction_id = $2, reference = $3, gateway_response = $4, status = $5,
			processed_at = $6, completed_at = $7, failed_at = $8, failure_reason = $9,
			processed_by = $10, notes = $11, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.TransactionID, p.Reference, p.GatewayResponse, p.Status,
		p.ProcessedAt, p.CompletedAt, p.FailedAt, p.FailureReason,
		p.ProcessedBy, p.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// List implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) List(ctx context.Context, filter payment.PaymentFilter) ([]payment.Payment, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("pm.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Method != nil && *filter.Method != "" {
		conditions = append(conditions, fmt.Sprintf("pm.payment_method = $%d", argIdx))
		args = append(args, *filter.Method)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		conditions = append(conditions, fmt.Sprintf("pm.branch_id = $%d", argIdx))
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("pm.created_at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("pm.created_at <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+paymentFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY pm.created_at DESC LIMIT $%d OFFSET $%d",
		paymentColumns, paymentFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments, err := collectPayments(rows)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListByEmployee implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT "+paymentColumns+paymentFrom+" WHERE pm.employee_id = $1 ORDER BY pm.created_at DESC", employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return collectPayments(rows)
}

// ListForStats implements payment.PaymentRepository. Month and year refer to
// the payroll period.
func (r *paymentRepositoryImpl) ListForStats(ctx context.Context, filter payment.StatsFilter) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		conditions = append(conditions, fmt.Sprintf("pm.branch_id = $%d", argIdx))
		args = append(args, *filter.BranchID)
	}

	query := "SELECT " + paymentColumns + paymentFrom + " WHERE " + strings.Join(conditions, " AND ")
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return collectPayments(rows)
}
