package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/pkg/export"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

const exportPageSize = 100

type PaymentServiceImpl struct {
	tx       database.Transactor
	payments payment.PaymentRepository
	payrolls payroll.PayrollRepository
	notifier notification.Service
	now      func() time.Time
}

func NewPaymentService(
	tx database.Transactor,
	payments payment.PaymentRepository,
	payrolls payroll.PayrollRepository,
	notifier notification.Service,
) payment.PaymentService {
	return &PaymentServiceImpl{
		tx:       tx,
		payments: payments,
		payrolls: payrolls,
		notifier: notifier,
		now:      time.Now,
	}
}

// Initiate implements payment.PaymentService.
func (s *PaymentServiceImpl) Initiate(ctx context.Context, req payment.InitiateRequest) (payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	pr, err := s.payrolls.GetByID(ctx, req.PayrollID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	if pr.Status != payroll.StatusApproved {
		return payment.PaymentResponse{}, payment.ErrPayrollNotApproved
	}
	if _, err := s.payments.GetByPayrollID(ctx, pr.ID); err == nil {
		return payment.PaymentResponse{}, payment.ErrPaymentAlreadyExists
	} else if !errors.Is(err, payment.ErrPaymentNotFound) {
		return payment.PaymentResponse{}, err
	}

	method := payment.Method(req.Method)
	if !method.IsValid() {
		return payment.PaymentResponse{}, payment.ErrInvalidMethod
	}

	bank := req.BankDetails
	if bank == nil && pr.BankDetails != nil {
		bank = &payment.BankDetails{
			AccountName:   pr.BankDetails.AccountName,
			AccountNumber: pr.BankDetails.AccountNumber,
			BankName:      pr.BankDetails.BankName,
			Branch:        pr.BankDetails.Branch,
		}
	}

	p := payment.Payment{
		PayrollID:   pr.ID,
		EmployeeID:  pr.EmployeeID,
		BranchID:    pr.BranchID,
		Amount:      pr.NetSalary,
		Currency:    employee.DefaultCurrency,
		Method:      method,
		Gateway:     payment.GatewayFor(method),
		BankDetails: bank,
		Status:      payment.StatusPending,
		ProcessedBy: &claims.UserID,
		Notes:       req.Notes,
		Metadata:    req.Metadata,
	}

	created, err := s.payments.Create(ctx, p)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	created.EmployeeCode = pr.EmployeeCode
	created.EmployeeName = pr.EmployeeName
	created.EmployeeUserID = pr.EmployeeUserID
	created.BranchName = pr.BranchName
	created.PayrollMonth = pr.Month
	created.PayrollYear = pr.Year

	slog.Info("payment initiated", "payment_id", created.ID, "payroll_id", pr.ID, "method", method, "amount", created.Amount.StringFixed(2))
	return payment.ToResponse(created), nil
}

// update loads, mutates and stores a payment.
func (s *PaymentServiceImpl) update(ctx context.Context, id string, mutate func(p *payment.Payment) error) (payment.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return payment.Payment{}, err
	}
	if err := mutate(&p); err != nil {
		return payment.Payment{}, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return payment.Payment{}, fmt.Errorf("failed to update payment: %w", err)
	}
	return p, nil
}

// Process implements payment.PaymentService.
func (s *PaymentServiceImpl) Process(ctx context.Context, req payment.ProcessRequest) (payment.PaymentResponse, error) {
	p, err := s.update(ctx, req.ID, func(p *payment.Payment) error {
		return p.Process(req.TransactionID, req.Reference, req.GatewayResponse, s.now())
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(p), nil
}

// Complete implements payment.PaymentService. The payment and its payroll
// are settled in one transaction.
func (s *PaymentServiceImpl) Complete(ctx context.Context, req payment.CompleteRequest) (payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	var completed payment.Payment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		at := s.now()

		var reference string
		p, err := s.update(ctx, req.ID, func(p *payment.Payment) error {
			var err error
			reference, err = p.Complete(req.TransactionID, req.Reference, at)
			return err
		})
		if err != nil {
			return err
		}

		pr, err := s.payrolls.GetByID(ctx, p.PayrollID)
		if err != nil {
			return err
		}
		var ref *string
		if reference != "" {
			ref = &reference
		}
		if err := pr.MarkPaid(ref, at); err != nil {
			return err
		}
		if err := s.payrolls.Update(ctx, payroll.Derive(pr)); err != nil {
			return fmt.Errorf("failed to mark payroll paid: %w", err)
		}

		completed = p
		return nil
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	if completed.EmployeeUserID != nil {
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: *completed.EmployeeUserID,
			SenderID:    &claims.UserID,
			Type:        notification.TypePayment,
			Title:       "Salary Payment Completed",
			Message: fmt.Sprintf("Your salary payment of %s %s for %s %d has been completed",
				completed.Currency, completed.Amount.StringFixed(2), time.Month(completed.PayrollMonth), completed.PayrollYear),
			Priority:  notification.PriorityHigh,
			RelatedTo: &notification.RelatedTo{Model: "payment", ID: completed.ID},
		})
	}

	slog.Info("payment completed", "payment_id", completed.ID, "payroll_id", completed.PayrollID)
	return payment.ToResponse(completed), nil
}

func (s *PaymentServiceImpl) queue(ctx context.Context, req notification.CreateNotificationRequest) {
	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("failed to queue payment notification", "type", req.Type, "error", err)
	}
}

// Fail implements payment.PaymentService. The operator who recorded the
// failure is notified, not the employee.
func (s *PaymentServiceImpl) Fail(ctx context.Context, req payment.FailRequest) (payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return payment.PaymentResponse{}, payment.ErrFailureReasonRequired
	}

	p, err := s.update(ctx, req.ID, func(p *payment.Payment) error {
		return p.Fail(reason, s.now())
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	actionURL := "/payments/" + p.ID
	s.queue(ctx, notification.CreateNotificationRequest{
		RecipientID: claims.UserID,
		Type:        notification.TypePaymentFailed,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment for %s (%s) failed: %s", p.EmployeeName, p.EmployeeCode, reason),
		Priority:    notification.PriorityHigh,
		RelatedTo:   &notification.RelatedTo{Model: "payment", ID: p.ID},
		ActionURL:   &actionURL,
	})

	slog.Warn("payment failed", "payment_id", p.ID, "reason", reason)
	return payment.ToResponse(p), nil
}

// Retry implements payment.PaymentService.
func (s *PaymentServiceImpl) Retry(ctx context.Context, id string) (payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	p, err := s.update(ctx, id, func(p *payment.Payment) error { return p.Retry(claims.UserID) })
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(p), nil
}

// Cancel implements payment.PaymentService.
func (s *PaymentServiceImpl) Cancel(ctx context.Context, id string) (payment.PaymentResponse, error) {
	p, err := s.update(ctx, id, func(p *payment.Payment) error { return p.Cancel() })
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(p), nil
}

// Refund implements payment.PaymentService.
func (s *PaymentServiceImpl) Refund(ctx context.Context, req payment.RefundRequest) (payment.PaymentResponse, error) {
	p, err := s.update(ctx, req.ID, func(p *payment.Payment) error { return p.Refund(req.Reason) })
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(p), nil
}

// Get implements payment.PaymentService.
func (s *PaymentServiceImpl) Get(ctx context.Context, id string) (payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	if !claims.Can(user.ActionPaymentManage) && claims.EmployeeID != p.EmployeeID {
		return payment.PaymentResponse{}, payment.ErrAccessDenied
	}
	return payment.ToResponse(p), nil
}

// List implements payment.PaymentService.
func (s *PaymentServiceImpl) List(ctx context.Context, filter payment.PaymentFilter) (payment.ListPaymentResponse, error) {
	filter.Normalize()

	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return payment.ListPaymentResponse{}, fmt.Errorf("failed to list payments: %w", err)
	}

	return payment.ListPaymentResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Payments:   toResponses(payments),
	}, nil
}

func toResponses(payments []payment.Payment) []payment.PaymentResponse {
	out := make([]payment.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, payment.ToResponse(p))
	}
	return out
}

// GetMyPayments implements payment.PaymentService.
func (s *PaymentServiceImpl) GetMyPayments(ctx context.Context) ([]payment.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if claims.EmployeeID == "" {
		return nil, employee.ErrNoEmployeeProfile
	}
	payments, err := s.payments.ListByEmployee(ctx, claims.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return toResponses(payments), nil
}

// Stats implements payment.PaymentService.
func (s *PaymentServiceImpl) Stats(ctx context.Context, filter payment.StatsFilter) (payment.StatsResponse, error) {
	payments, err := s.payments.ListForStats(ctx, filter)
	if err != nil {
		return payment.StatsResponse{}, fmt.Errorf("failed to load payment stats: %w", err)
	}
	return payment.ToStatsResponse(payment.Summarize(payments)), nil
}

// ExportBankTransfers implements payment.PaymentService. Method and status
// default to bank_transfer and pending.
func (s *PaymentServiceImpl) ExportBankTransfers(ctx context.Context, filter payment.PaymentFilter, w io.Writer) error {
	if filter.Method == nil {
		m := string(payment.MethodBankTransfer)
		filter.Method = &m
	}
	if filter.Status == nil {
		st := string(payment.StatusPending)
		filter.Status = &st
	}
	filter.Limit = exportPageSize

	rows := []payment.BankTransferRow{}
	for page := 1; ; page++ {
		filter.Page = page
		payments, total, err := s.payments.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		for _, p := range payments {
			rows = append(rows, payment.ToBankTransferRow(p))
		}
		if len(payments) < exportPageSize || int64(len(rows)) >= total {
			break
		}
	}

	return export.WriteCSV(w, rows)
}
