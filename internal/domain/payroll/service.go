package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GenerateRequest) (PayrollResponse, error)
	BulkGenerate(ctx context.Context, req BulkGenerateRequest) (BulkGenerateResponse, error)
	Get(ctx context.Context, id string) (PayrollResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	GetMyPayslips(ctx context.Context) ([]PayrollResponse, error)
	GetEmployeePayrolls(ctx context.Context, employeeID string) ([]PayrollResponse, error)
	Update(ctx context.Context, req UpdateRequest) (PayrollResponse, error)
	Approve(ctx context.Context, req ApproveRequest) (PayrollResponse, error)
	Pay(ctx context.Context, req PayRequest) (PayrollResponse, error)
	Cancel(ctx context.Context, id string) (PayrollResponse, error)
	Stats(ctx context.Context, filter PayrollFilter) (StatsResponse, error)
	// Payslip renders the PDF and returns it with its download filename.
	Payslip(ctx context.Context, id string) ([]byte, string, error)
}
