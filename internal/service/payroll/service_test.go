package payroll

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

type fakePayrolls struct {
	payroll.PayrollRepository
	rows map[string]payroll.Payroll
}

func (f *fakePayrolls) Create(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	for _, existing := range f.rows {
		if existing.EmployeeID == p.EmployeeID && existing.Month == p.Month && existing.Year == p.Year {
			return payroll.Payroll{}, payroll.ErrPayrollExists
		}
	}
	p.ID = "pr-" + p.EmployeeID
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakePayrolls) GetByID(_ context.Context, id string) (payroll.Payroll, error) {
	p, ok := f.rows[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (f *fakePayrolls) GetByPeriod(_ context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	for _, p := range f.rows {
		if p.EmployeeID == employeeID && p.Month == month && p.Year == year {
			return p, nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func (f *fakePayrolls) Update(_ context.Context, p payroll.Payroll) error {
	f.rows[p.ID] = p
	return nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func (f fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) ListActive(_ context.Context, _ *string) ([]employee.Employee, error) {
	return []employee.Employee{f.byID["emp-1"], f.byID["emp-2"]}, nil
}

type fakeAttendance struct {
	attendance.AttendanceRepository
	records []attendance.Attendance
}

func (f fakeAttendance) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range f.records {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	notification.Service
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, req)
	return nil
}

func staff(id string, base int64) employee.Employee {
	userID := "u-" + id
	return employee.Employee{
		ID:                 id,
		EmployeeCode:       "EMP-" + id,
		UserID:             &userID,
		FirstName:          "Staff",
		LastName:           id,
		BranchID:           "br-1",
		WorkingHoursPerDay: 8,
		BaseSalary:         decimal.NewFromInt(base),
		EPFEmployee:        decimal.NewFromInt(8),
		EPFEmployer:        decimal.NewFromInt(12),
		ETF:                decimal.NewFromInt(3),
	}
}

type fixture struct {
	svc      *PayrollServiceImpl
	payrolls *fakePayrolls
	notifier *fakeNotifier
}

func newFixture(records ...attendance.Attendance) *fixture {
	f := &fixture{
		payrolls: &fakePayrolls{rows: map[string]payroll.Payroll{}},
		notifier: &fakeNotifier{},
	}
	employees := fakeEmployees{byID: map[string]employee.Employee{
		"emp-1": staff("emp-1", 100000),
		"emp-2": staff("emp-2", 62000),
	}}
	f.svc = NewPayrollService(f.payrolls, employees, fakeAttendance{records: records}, f.notifier, "TimePay Stores", time.UTC).(*PayrollServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC) }
	return f
}

func asAccountant() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-acc", Role: user.RoleAccountant})
}

func asEmployee(id string) context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-" + id, EmployeeID: id, Role: user.RoleEmployee})
}

func TestGenerate_BaselineContributions(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(100000).Equal(resp.GrossSalary))
	assert.True(t, decimal.NewFromInt(8000).Equal(resp.EPF.EmployeeContribution))
	assert.True(t, decimal.NewFromInt(12000).Equal(resp.EPF.EmployerContribution))
	assert.True(t, decimal.NewFromInt(3000).Equal(resp.ETF.EmployerContribution))
	assert.True(t, decimal.NewFromInt(8000).Equal(resp.TotalDeductions))
	assert.True(t, decimal.NewFromInt(92000).Equal(resp.NetSalary))
	assert.Equal(t, payroll.StatusDraft, resp.PaymentStatus)
	assert.Equal(t, 31, resp.WorkingDays)
	assert.Equal(t, "u-acc", *resp.GeneratedBy)

	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "u-emp-1", f.notifier.queued[0].RecipientID)
	assert.Equal(t, "Your payslip for March 2025 has been generated", f.notifier.queued[0].Message)

	_, err = f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	assert.ErrorIs(t, err, payroll.ErrPayrollExists)
}

func TestGenerate_UsesMonthAttendance(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	f := newFixture(
		attendance.Attendance{EmployeeID: "emp-1", Date: day(3), Status: attendance.StatusPresent, RegularHours: 8, OvertimeHours: 2},
		attendance.Attendance{EmployeeID: "emp-1", Date: day(4), Status: attendance.StatusPresent, RegularHours: 8, LateMinutes: 30},
		attendance.Attendance{EmployeeID: "emp-1", Date: day(5), Status: attendance.StatusAbsent},
		attendance.Attendance{EmployeeID: "emp-1", Date: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent, OvertimeHours: 5},
	)

	resp, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.PresentDays)
	assert.Equal(t, 1, resp.AbsentDays)
	assert.Equal(t, 2.0, resp.Overtime.Hours)
	assert.Equal(t, 30, resp.LateDeduction.Minutes)
	assert.True(t, resp.Overtime.Amount.IsPositive())
	assert.True(t, resp.NetSalary.Equal(resp.GrossSalary.Sub(resp.TotalDeductions)))
}

func TestBulkGenerate_ReportsPerEmployee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	resp, err := f.svc.BulkGenerate(asAccountant(), payroll.BulkGenerateRequest{Month: 3, Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Generated)
	assert.Equal(t, 1, resp.AlreadyExists)
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, payroll.BulkAlreadyExists, resp.Results[0].Status)
	assert.Equal(t, payroll.BulkSuccess, resp.Results[1].Status)
	assert.Equal(t, "pr-emp-2", resp.Results[1].PayrollID)
}

func TestUpdate_RederivesTotals(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	bonus := decimal.NewFromInt(5000)
	resp, err := f.svc.Update(asAccountant(), payroll.UpdateRequest{
		ID:    created.ID,
		Bonus: &bonus,
		Allowances: &[]payroll.LineItemRequest{
			{Name: "Transport", Type: "percentage", Amount: decimal.NewFromInt(10)},
		},
		Submit: true,
	})
	require.NoError(t, err)

	// EPF base grows with the allowance, not the bonus.
	assert.True(t, decimal.NewFromInt(115000).Equal(resp.GrossSalary))
	assert.True(t, decimal.NewFromInt(8800).Equal(resp.EPF.EmployeeContribution))
	assert.True(t, decimal.NewFromInt(106200).Equal(resp.NetSalary))
	assert.Equal(t, payroll.StatusPending, resp.PaymentStatus)
}

func TestLifecycle(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	_, err = f.svc.Pay(asAccountant(), payroll.PayRequest{ID: created.ID})
	assert.ErrorIs(t, err, payroll.ErrNotApproved)

	approved, err := f.svc.Approve(asAccountant(), payroll.ApproveRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusApproved, approved.PaymentStatus)
	assert.Equal(t, payroll.PaymentMethodBankTransfer, approved.PaymentMethod)
	assert.Equal(t, "u-acc", *approved.ApprovedBy)

	_, err = f.svc.Approve(asAccountant(), payroll.ApproveRequest{ID: created.ID})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	bonus := decimal.NewFromInt(1)
	_, err = f.svc.Update(asAccountant(), payroll.UpdateRequest{ID: created.ID, Bonus: &bonus})
	assert.ErrorIs(t, err, payroll.ErrNotEditable)

	ref := "TRX-1"
	paid, err := f.svc.Pay(asAccountant(), payroll.PayRequest{ID: created.ID, PaymentReference: &ref})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.PaymentStatus)
	assert.Equal(t, "TRX-1", *paid.PaymentReference)

	_, err = f.svc.Cancel(asAccountant(), created.ID)
	assert.ErrorIs(t, err, payroll.ErrAlreadyPaid)
}

func TestGet_EmployeeSeesOnlyOwnPayslip(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	_, err = f.svc.Get(asEmployee("emp-1"), created.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(asEmployee("emp-2"), created.ID)
	assert.ErrorIs(t, err, payroll.ErrAccessDenied)
}

func TestPayslip(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Generate(asAccountant(), payroll.GenerateRequest{EmployeeID: "emp-1", Month: 3, Year: 2025})
	require.NoError(t, err)

	pdf, name, err := f.svc.Payslip(asEmployee("emp-1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "payslip_emp-1_3_2025.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
