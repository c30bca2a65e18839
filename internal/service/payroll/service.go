package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"github.com/timepay/timepay-backend/internal/pkg/payslip"
)

type PayrollServiceImpl struct {
	payrolls     payroll.PayrollRepository
	employees    employee.EmployeeRepository
	attendance   attendance.AttendanceRepository
	notifier     notification.Service
	organization string
	loc          *time.Location
	now          func() time.Time
}

func NewPayrollService(
	payrolls payroll.PayrollRepository,
	employees employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	notifier notification.Service,
	organization string,
	loc *time.Location,
) payroll.PayrollService {
	if loc == nil {
		loc = time.Local
	}
	return &PayrollServiceImpl{
		payrolls:     payrolls,
		employees:    employees,
		attendance:   attendanceRepo,
		notifier:     notifier,
		organization: organization,
		loc:          loc,
		now:          time.Now,
	}
}

// withEmployee fills the joined columns the repository returns on reads.
func withEmployee(p payroll.Payroll, emp employee.Employee) payroll.Payroll {
	p.EmployeeCode = emp.EmployeeCode
	p.EmployeeName = emp.FullName()
	p.EmployeeUserID = emp.UserID
	p.Position = string(emp.Position)
	p.Department = emp.Department
	if emp.BranchName != nil {
		p.BranchName = *emp.BranchName
	}
	return p
}

// generate builds, derives and stores one payslip. It is shared by Generate
// and BulkGenerate.
func (s *PayrollServiceImpl) generate(ctx context.Context, emp employee.Employee, month, year int, in payroll.Inputs, actorID string) (payroll.Payroll, error) {
	if _, err := s.payrolls.GetByPeriod(ctx, emp.ID, month, year); err == nil {
		return payroll.Payroll{}, payroll.ErrPayrollExists
	} else if !errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.Payroll{}, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, -1)
	records, err := s.attendance.ListByEmployeeAndRange(ctx, emp.ID, from, to)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	p := payroll.Derive(payroll.Build(emp, attendance.Summarize(records), month, year, in))
	if actorID != "" {
		p.GeneratedBy = &actorID
	}

	created, err := s.payrolls.Create(ctx, p)
	if err != nil {
		return payroll.Payroll{}, err
	}
	created = withEmployee(created, emp)

	s.notify(ctx, created, notification.TypePayslip, "Payslip Generated",
		fmt.Sprintf("Your payslip for %s %d has been generated", time.Month(month), year), actorID)
	return created, nil
}

func (s *PayrollServiceImpl) notify(ctx context.Context, p payroll.Payroll, t notification.NotificationType, title, message, senderID string) {
	if p.EmployeeUserID == nil {
		return
	}
	actionURL := "/payroll/" + p.ID
	req := notification.CreateNotificationRequest{
		RecipientID: *p.EmployeeUserID,
		Type:        t,
		Title:       title,
		Message:     message,
		Priority:    notification.PriorityMedium,
		RelatedTo:   &notification.RelatedTo{Model: "payroll", ID: p.ID},
		ActionURL:   &actionURL,
		Data:        map[string]interface{}{"month": p.Month, "year": p.Year, "net_salary": p.NetSalary.StringFixed(2)},
	}
	if senderID != "" {
		req.SenderID = &senderID
	}
	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("failed to queue payroll notification", "payroll_id", p.ID, "error", err)
	}
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.PayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	p, err := s.generate(ctx, emp, req.Month, req.Year, req.Inputs(), claims.UserID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll generated", "payroll_id", p.ID, "employee_id", emp.ID, "month", req.Month, "year", req.Year)
	return payroll.ToResponse(p), nil
}

// BulkGenerate implements payroll.PayrollService. Employees are processed
// sequentially and one failure never stops the batch.
func (s *PayrollServiceImpl) BulkGenerate(ctx context.Context, req payroll.BulkGenerateRequest) (payroll.BulkGenerateResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.BulkGenerateResponse{}, err
	}

	employees, err := s.employees.ListActive(ctx, req.BranchID)
	if err != nil {
		return payroll.BulkGenerateResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	resp := payroll.BulkGenerateResponse{
		Month:   req.Month,
		Year:    req.Year,
		Results: make([]payroll.BulkResult, 0, len(employees)),
	}
	for _, emp := range employees {
		result := payroll.BulkResult{EmployeeID: emp.ID, EmployeeCode: emp.EmployeeCode}

		p, err := s.generate(ctx, emp, req.Month, req.Year, payroll.Inputs{}, claims.UserID)
		switch {
		case err == nil:
			result.Status = payroll.BulkSuccess
			result.PayrollID = p.ID
			resp.Generated++
		case errors.Is(err, payroll.ErrPayrollExists):
			result.Status = payroll.BulkAlreadyExists
			result.Message = "Payroll already exists for this period"
			resp.AlreadyExists++
		default:
			slog.Error("bulk payroll generation failed", "employee_id", emp.ID, "error", err)
			result.Status = payroll.BulkError
			result.Message = err.Error()
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	slog.Info("bulk payroll generated",
		"month", req.Month, "year", req.Year,
		"generated", resp.Generated, "already_exists", resp.AlreadyExists, "failed", resp.Failed)
	return resp, nil
}

// load fetches a payroll visible to the caller. Without payroll.manage only
// the employee's own payslips are visible.
func (s *PayrollServiceImpl) load(ctx context.Context, id string) (payroll.Payroll, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.Payroll{}, err
	}

	p, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if !claims.Can(user.ActionPayrollManage) && claims.EmployeeID != p.EmployeeID {
		return payroll.Payroll{}, payroll.ErrAccessDenied
	}
	return p, nil
}

// Get implements payroll.PayrollService.
func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.ToResponse(p), nil
}

// List implements payroll.PayrollService.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	filter.Normalize()

	payrolls, total, err := s.payrolls.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	resp := payroll.ListPayrollResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Payrolls:   toResponses(payrolls),
	}
	return resp, nil
}

func toResponses(payrolls []payroll.Payroll) []payroll.PayrollResponse {
	out := make([]payroll.PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, payroll.ToResponse(p))
	}
	return out
}

// GetMyPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetMyPayslips(ctx context.Context) ([]payroll.PayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if claims.EmployeeID == "" {
		return nil, employee.ErrNoEmployeeProfile
	}
	return s.GetEmployeePayrolls(ctx, claims.EmployeeID)
}

// GetEmployeePayrolls implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetEmployeePayrolls(ctx context.Context, employeeID string) ([]payroll.PayrollResponse, error) {
	payrolls, err := s.payrolls.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee payrolls: %w", err)
	}
	return toResponses(payrolls), nil
}

// transition loads, mutates, re-derives and stores a payroll.
func (s *PayrollServiceImpl) transition(ctx context.Context, id string, mutate func(p *payroll.Payroll) error) (payroll.Payroll, error) {
	p, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if err := mutate(&p); err != nil {
		return payroll.Payroll{}, err
	}
	p = payroll.Derive(p)
	if err := s.payrolls.Update(ctx, p); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to update payroll: %w", err)
	}
	return p, nil
}

// Update implements payroll.PayrollService.
func (s *PayrollServiceImpl) Update(ctx context.Context, req payroll.UpdateRequest) (payroll.PayrollResponse, error) {
	p, err := s.transition(ctx, req.ID, req.Apply)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.ToResponse(p), nil
}

// Approve implements payroll.PayrollService.
func (s *PayrollServiceImpl) Approve(ctx context.Context, req payroll.ApproveRequest) (payroll.PayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	p, err := s.transition(ctx, req.ID, func(p *payroll.Payroll) error {
		return p.Approve(claims.UserID, payroll.PaymentMethod(req.PaymentMethod), s.now())
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll approved", "payroll_id", p.ID, "approved_by", claims.UserID)
	return payroll.ToResponse(p), nil
}

// Pay implements payroll.PayrollService.
func (s *PayrollServiceImpl) Pay(ctx context.Context, req payroll.PayRequest) (payroll.PayrollResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	p, err := s.transition(ctx, req.ID, func(p *payroll.Payroll) error {
		return p.MarkPaid(req.PaymentReference, s.now())
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	s.notify(ctx, p, notification.TypePayment, "Salary Paid",
		fmt.Sprintf("Your salary for %s %d has been paid", time.Month(p.Month), p.Year), claims.UserID)
	return payroll.ToResponse(p), nil
}

// Cancel implements payroll.PayrollService.
func (s *PayrollServiceImpl) Cancel(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.transition(ctx, id, func(p *payroll.Payroll) error { return p.Cancel() })
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.ToResponse(p), nil
}

// Stats implements payroll.PayrollService.
func (s *PayrollServiceImpl) Stats(ctx context.Context, filter payroll.PayrollFilter) (payroll.StatsResponse, error) {
	payrolls, err := s.payrolls.ListForPeriod(ctx, filter)
	if err != nil {
		return payroll.StatsResponse{}, fmt.Errorf("failed to load payroll stats: %w", err)
	}
	return payroll.ToStatsResponse(payroll.Aggregate(payrolls)), nil
}

// Payslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) Payslip(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := payslip.Render(p, s.organization)
	if err != nil {
		return nil, "", err
	}
	return pdf, payslip.Filename(p), nil
}
