package payment

import "context"

type PaymentRepository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	GetByPayrollID(ctx context.Context, payrollID string) (Payment, error)
	// Update persists status, gateway and failure fields.
	Update(ctx context.Context, p Payment) error
	List(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Payment, error)
	ListForStats(ctx context.Context, filter StatsFilter) ([]Payment, error)
}
