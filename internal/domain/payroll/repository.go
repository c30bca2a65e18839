package payroll

import "context"

type PayrollRepository interface {
	Create(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	GetByPeriod(ctx context.Context, employeeID string, month, year int) (Payroll, error)
	// Update persists inputs, derived totals and lifecycle fields.
	Update(ctx context.Context, p Payroll) error
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error)
	ListForPeriod(ctx context.Context, filter PayrollFilter) ([]Payroll, error)
}
