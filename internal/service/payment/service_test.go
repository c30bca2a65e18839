package payment

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

// snapshotTx restores both stores when fn fails.
type snapshotTx struct {
	payments *fakePayments
	payrolls *fakePayrolls
}

func (tx snapshotTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	payments := clone(tx.payments.rows)
	payrolls := clone(tx.payrolls.rows)
	if err := fn(ctx); err != nil {
		tx.payments.rows = payments
		tx.payrolls.rows = payrolls
		return err
	}
	return nil
}

func clone[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type fakePayments struct {
	payment.PaymentRepository
	rows      map[string]payment.Payment
	lookupErr error
}

func (f *fakePayments) Create(_ context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = "pay-" + p.PayrollID
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakePayments) GetByID(_ context.Context, id string) (payment.Payment, error) {
	p, ok := f.rows[id]
	if !ok {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePayments) GetByPayrollID(_ context.Context, payrollID string) (payment.Payment, error) {
	if f.lookupErr != nil {
		return payment.Payment{}, f.lookupErr
	}
	for _, p := range f.rows {
		if p.PayrollID == payrollID {
			return p, nil
		}
	}
	return payment.Payment{}, payment.ErrPaymentNotFound
}

func (f *fakePayments) Update(_ context.Context, p payment.Payment) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakePayments) List(_ context.Context, filter payment.PaymentFilter) ([]payment.Payment, int64, error) {
	var out []payment.Payment
	for _, p := range f.rows {
		if filter.Method != nil && string(p.Method) != *filter.Method {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

type fakePayrolls struct {
	payroll.PayrollRepository
	rows map[string]payroll.Payroll
	fail error
}

func (f *fakePayrolls) GetByID(_ context.Context, id string) (payroll.Payroll, error) {
	p, ok := f.rows[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (f *fakePayrolls) Update(_ context.Context, p payroll.Payroll) error {
	if f.fail != nil {
		return f.fail
	}
	f.rows[p.ID] = p
	return nil
}

type fakeNotifier struct {
	notification.Service
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, req)
	return nil
}

type fixture struct {
	svc      *PaymentServiceImpl
	payments *fakePayments
	payrolls *fakePayrolls
	notifier *fakeNotifier
}

func newFixture() *fixture {
	userID := "u-emp-1"
	f := &fixture{
		payments: &fakePayments{rows: map[string]payment.Payment{}},
		payrolls: &fakePayrolls{rows: map[string]payroll.Payroll{
			"pr-approved": payroll.Derive(payroll.Payroll{
				ID: "pr-approved", EmployeeID: "emp-1", BranchID: "br-1", Month: 3, Year: 2025,
				BaseSalary:     decimal.NewFromInt(100000),
				EPF:            payroll.EPF{EmployeePercentage: decimal.NewFromInt(8), EmployerPercentage: decimal.NewFromInt(12)},
				ETF:            payroll.ETF{Percentage: decimal.NewFromInt(3)},
				Status:         payroll.StatusApproved,
				EmployeeCode:   "EMP00001",
				EmployeeName:   "Nimal Perera",
				EmployeeUserID: &userID,
				BankDetails:    &payroll.BankAccount{AccountName: "N Perera", AccountNumber: "0012345", BankName: "BOC"},
			}),
			"pr-draft": {ID: "pr-draft", EmployeeID: "emp-2", Status: payroll.StatusDraft},
		}},
		notifier: &fakeNotifier{},
	}
	tx := snapshotTx{payments: f.payments, payrolls: f.payrolls}
	f.svc = NewPaymentService(tx, f.payments, f.payrolls, f.notifier).(*PaymentServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func asAccountant() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-acc", Role: user.RoleAccountant})
}

func (f *fixture) initiate(t *testing.T) payment.PaymentResponse {
	t.Helper()
	resp, err := f.svc.Initiate(asAccountant(), payment.InitiateRequest{PayrollID: "pr-approved", Method: "bank_transfer"})
	require.NoError(t, err)
	return resp
}

func TestInitiate(t *testing.T) {
	f := newFixture()

	resp := f.initiate(t)
	assert.True(t, decimal.NewFromInt(92000).Equal(resp.Amount))
	assert.Equal(t, payment.GatewayBankAPI, resp.PaymentGateway)
	assert.Equal(t, payment.StatusPending, resp.Status)
	assert.Equal(t, "LKR", resp.Currency)
	require.NotNil(t, resp.BankDetails)
	assert.Equal(t, "0012345", resp.BankDetails.AccountNumber)

	_, err := f.svc.Initiate(asAccountant(), payment.InitiateRequest{PayrollID: "pr-approved", Method: "cash"})
	assert.ErrorIs(t, err, payment.ErrPaymentAlreadyExists)

	_, err = f.svc.Initiate(asAccountant(), payment.InitiateRequest{PayrollID: "pr-draft", Method: "cash"})
	assert.ErrorIs(t, err, payment.ErrPayrollNotApproved)
}

func TestInitiate_LookupFailure(t *testing.T) {
	f := newFixture()
	f.payments.lookupErr = errors.New("connection reset")

	_, err := f.svc.Initiate(asAccountant(), payment.InitiateRequest{PayrollID: "pr-approved", Method: "cash"})
	require.Error(t, err)
	assert.EqualError(t, err, "connection reset")
	assert.Empty(t, f.payments.rows)
}

func TestComplete_MarksPayrollPaid(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)

	txID := "TXN-77"
	resp, err := f.svc.Complete(asAccountant(), payment.CompleteRequest{ID: created.ID, TransactionID: &txID})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, resp.Status)

	pr := f.payrolls.rows["pr-approved"]
	assert.Equal(t, payroll.StatusPaid, pr.Status)
	require.NotNil(t, pr.PaymentReference)
	assert.Equal(t, "TXN-77", *pr.PaymentReference)

	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "u-emp-1", f.notifier.queued[0].RecipientID)
	assert.Equal(t, notification.TypePayment, f.notifier.queued[0].Type)

	_, err = f.svc.Complete(asAccountant(), payment.CompleteRequest{ID: created.ID})
	assert.ErrorIs(t, err, payment.ErrCannotComplete)
}

func TestComplete_RollsBackOnPayrollFailure(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)
	f.payrolls.fail = errors.New("connection reset")

	_, err := f.svc.Complete(asAccountant(), payment.CompleteRequest{ID: created.ID})
	require.Error(t, err)

	assert.Equal(t, payment.StatusPending, f.payments.rows[created.ID].Status)
	assert.Equal(t, payroll.StatusApproved, f.payrolls.rows["pr-approved"].Status)
	assert.Empty(t, f.notifier.queued)
}

func TestFailAndRetry(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)

	_, err := f.svc.Fail(asAccountant(), payment.FailRequest{ID: created.ID, Reason: "  "})
	assert.ErrorIs(t, err, payment.ErrFailureReasonRequired)

	failed, err := f.svc.Fail(asAccountant(), payment.FailRequest{ID: created.ID, Reason: "account closed"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, failed.Status)
	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "u-acc", f.notifier.queued[0].RecipientID)
	assert.Equal(t, notification.TypePaymentFailed, f.notifier.queued[0].Type)

	retried, err := f.svc.Retry(asAccountant(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, retried.Status)
	assert.Nil(t, retried.FailureReason)

	_, err = f.svc.Retry(asAccountant(), created.ID)
	assert.ErrorIs(t, err, payment.ErrRetryNotFailed)
}

func TestRefundRequiresCompleted(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)

	_, err := f.svc.Refund(asAccountant(), payment.RefundRequest{ID: created.ID})
	assert.ErrorIs(t, err, payment.ErrCannotRefund)

	cancelled, err := f.svc.Cancel(asAccountant(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCancelled, cancelled.Status)
}

func TestGet_EmployeeScope(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)

	own := jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-emp-1", EmployeeID: "emp-1", Role: user.RoleEmployee})
	_, err := f.svc.Get(own, created.ID)
	assert.NoError(t, err)

	other := jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-emp-2", EmployeeID: "emp-2", Role: user.RoleEmployee})
	_, err = f.svc.Get(other, created.ID)
	assert.ErrorIs(t, err, payment.ErrAccessDenied)
}

func TestExportBankTransfers(t *testing.T) {
	f := newFixture()
	created := f.initiate(t)
	p := f.payments.rows[created.ID]
	p.EmployeeCode, p.EmployeeName, p.PayrollMonth, p.PayrollYear = "EMP00001", "Nimal Perera", 3, 2025
	f.payments.rows[created.ID] = p

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportBankTransfers(asAccountant(), payment.PaymentFilter{}, &buf))

	assert.Equal(t,
		"employee_code,employee_name,bank_name,bank_branch,account_name,account_number,amount,currency,reference\n"+
			"EMP00001,Nimal Perera,BOC,,N Perera,0012345,92000.00,LKR,SALARY March 2025\n",
		buf.String())
}
