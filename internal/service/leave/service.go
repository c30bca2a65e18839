package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

// employeeLeavesLimit caps the unpaginated per-employee listing.
const employeeLeavesLimit = 500

type LeaveServiceImpl struct {
	tx        database.Transactor
	leaves    leave.LeaveRepository
	configs   leave.ConfigurationRepository
	employees employee.EmployeeRepository
	users     user.UserRepository
	notifier  notification.Service
	loc       *time.Location
	now       func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaves leave.LeaveRepository,
	configs leave.ConfigurationRepository,
	employees employee.EmployeeRepository,
	users user.UserRepository,
	notifier notification.Service,
	loc *time.Location,
) leave.LeaveService {
	if loc == nil {
		loc = time.Local
	}
	return &LeaveServiceImpl{
		tx:        tx,
		leaves:    leaves,
		configs:   configs,
		employees: employees,
		users:     users,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *LeaveServiceImpl) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func callerEmployeeID(ctx context.Context) (string, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if claims.EmployeeID == "" {
		return "", employee.ErrNoEmployeeProfile
	}
	return claims.EmployeeID, nil
}

// takenThisYear sums approved days per type for requests starting this year.
func (s *LeaveServiceImpl) takenThisYear(ctx context.Context, employeeID string) (map[leave.Type]float64, int, error) {
	year := s.today().Year()
	from, to := leave.YearBounds(year, s.loc)
	taken, err := s.leaves.ApprovedDays(ctx, employeeID, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	return taken, year, nil
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	leaveType := leave.Type(req.LeaveType)
	configs, err := s.configs.ListActiveByType(ctx, leaveType)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to load leave configuration: %w", err)
	}

	applicant := leave.Applicant{
		Position:       string(emp.Position),
		EmploymentType: string(emp.EmploymentType),
		Entitlement:    emp.LeaveBalance.Entitlement(string(leaveType)),
	}
	cfg, err := leave.MatchConfiguration(configs, leaveType, applicant)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	taken, _, err := s.takenThisYear(ctx, emp.ID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	start, end := req.Dates(s.loc)
	days, err := leave.Evaluate(cfg, applicant, leave.Application{
		Type:      leaveType,
		StartDate: start,
		EndDate:   end,
		IsHalfDay: req.IsHalfDay,
	}, s.today(), taken[leaveType])
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	request := leave.Request{
		EmployeeID:         emp.ID,
		Type:               leaveType,
		StartDate:          start,
		EndDate:            end,
		Days:               days,
		Reason:             req.Reason,
		Status:             leave.StatusPending,
		Priority:           leave.Priority(req.Priority),
		IsHalfDay:          req.IsHalfDay,
		CoveringEmployeeID: req.CoveringEmployeeID,
		Attachments:        req.Attachments,
	}
	if req.IsHalfDay && req.HalfDayPeriod != nil {
		p := leave.HalfDayPeriod(*req.HalfDayPeriod)
		request.HalfDayPeriod = &p
	}

	created, err := s.leaves.Create(ctx, request)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.EmployeeCode = emp.EmployeeCode
	created.EmployeeName = emp.FullName()

	s.notifyApprovers(ctx, created)
	return leave.ToResponse(created), nil
}

// notifyApprovers tells every approver about a new request. Delivery failures
// never fail the application.
func (s *LeaveServiceImpl) notifyApprovers(ctx context.Context, r leave.Request) {
	approvers, err := s.users.ListByRoles(ctx, user.ApproverRoles())
	if err != nil {
		slog.Error("failed to list leave approvers", "leave_id", r.ID, "error", err)
		return
	}

	actionURL := "/leaves/" + r.ID
	reqs := make([]notification.CreateNotificationRequest, 0, len(approvers))
	for _, a := range approvers {
		if !a.IsActive {
			continue
		}
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			Type:        notification.TypeLeaveRequest,
			Title:       "New Leave Request",
			Message:     fmt.Sprintf("%s has requested %s leave from %s to %s", r.EmployeeName, r.Type, r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02")),
			Priority:    notification.PriorityMedium,
			RelatedTo:   &notification.RelatedTo{Model: "leave", ID: r.ID},
			ActionURL:   &actionURL,
			Data:        map[string]interface{}{"leave_id": r.ID, "employee_id": r.EmployeeID},
		})
	}
	if len(reqs) == 0 {
		return
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Error("failed to queue leave request notifications", "leave_id", r.ID, "error", err)
	}
}

// notifyEmployee tells the requester about a decision.
func (s *LeaveServiceImpl) notifyEmployee(ctx context.Context, r leave.Request, senderID string) {
	account, err := s.users.GetByEmployeeID(ctx, r.EmployeeID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Error("failed to resolve leave requester", "leave_id", r.ID, "error", err)
		}
		return
	}

	n := notification.CreateNotificationRequest{
		RecipientID: account.ID,
		SenderID:    &senderID,
		Priority:    notification.PriorityMedium,
		RelatedTo:   &notification.RelatedTo{Model: "leave", ID: r.ID},
	}
	actionURL := "/leaves/" + r.ID
	n.ActionURL = &actionURL
	period := fmt.Sprintf("%s to %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	if r.Status == leave.StatusApproved {
		n.Type = notification.TypeLeaveApproved
		n.Title = "Leave Request Approved"
		n.Message = fmt.Sprintf("Your %s leave request for %s has been approved", r.Type, period)
	} else {
		n.Type = notification.TypeLeaveRejected
		n.Title = "Leave Request Rejected"
		n.Message = fmt.Sprintf("Your %s leave request for %s has been rejected", r.Type, period)
		if r.RejectionReason != nil && *r.RejectionReason != "" {
			n.Message += ": " + *r.RejectionReason
		}
	}

	if err := s.notifier.QueueNotification(ctx, n); err != nil {
		slog.Error("failed to queue leave decision notification", "leave_id", r.ID, "error", err)
	}
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	filter.Normalize()

	requests, total, err := s.leaves.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Leaves:     make([]leave.LeaveResponse, 0, len(requests)),
	}
	for _, r := range requests {
		resp.Leaves = append(resp.Leaves, leave.ToResponse(r))
	}
	return resp, nil
}

// GetMyLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) GetMyLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	employeeID, err := callerEmployeeID(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	filter.EmployeeID = &employeeID
	return s.list(ctx, filter)
}

// GetMyBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetMyBalance(ctx context.Context) (leave.BalanceResponse, error) {
	employeeID, err := callerEmployeeID(ctx)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return s.GetEmployeeBalance(ctx, employeeID)
}

// Cancel implements leave.LeaveService. The freed days are not written to
// the leave history; balances are recomputed from approved requests.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, id string) (leave.LeaveResponse, error) {
	employeeID, err := callerEmployeeID(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	r, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := r.Cancel(employeeID, s.today()); err != nil {
		return leave.LeaveResponse{}, err
	}
	if err := s.leaves.UpdateStatus(ctx, r); err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to cancel leave request: %w", err)
	}
	return leave.ToResponse(r), nil
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	return s.list(ctx, filter)
}

// ListPending implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPending(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	pending := string(leave.StatusPending)
	filter.Status = &pending
	return s.list(ctx, filter)
}

// Get implements leave.LeaveService. Employees without leave.view_all see
// only their own requests.
func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	r, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !claims.Can(user.ActionLeaveViewAll) && claims.EmployeeID != r.EmployeeID {
		return leave.LeaveResponse{}, leave.ErrNotRequestOwner
	}
	return leave.ToResponse(r), nil
}

// GetEmployeeLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) GetEmployeeLeaves(ctx context.Context, employeeID string, year *int) ([]leave.LeaveResponse, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	requests, _, err := s.leaves.List(ctx, leave.LeaveFilter{
		EmployeeID: &employeeID,
		Year:       year,
		Page:       1,
		Limit:      employeeLeavesLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employee leave: %w", err)
	}

	resp := make([]leave.LeaveResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, leave.ToResponse(r))
	}
	return resp, nil
}

// GetEmployeeBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetEmployeeBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	taken, year, err := s.takenThisYear(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	resp := leave.BalanceResponse{
		EmployeeID: employeeID,
		Year:       year,
		Balances:   make(map[leave.Type]leave.Balance, len(emp.LeaveBalance)),
	}
	for _, t := range emp.LeaveBalance.Types() {
		lt := leave.Type(t)
		resp.Balances[lt] = leave.ComputeBalance(emp.LeaveBalance.Entitlement(t), taken[lt])
	}
	return resp, nil
}

// decide applies an approval or rejection and records it in the employee's
// leave history atomically.
func (s *LeaveServiceImpl) decide(ctx context.Context, id string, apply func(r *leave.Request, actorID string, at time.Time) error, reason *string) (leave.LeaveResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	var decided leave.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.leaves.GetByID(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := apply(&r, claims.UserID, now); err != nil {
			return err
		}
		if err := s.leaves.UpdateStatus(ctx, r); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		leaveID := r.ID
		if err := s.employees.AppendHistory(ctx, employee.HistoryEntry{
			EmployeeID: r.EmployeeID,
			LeaveID:    &leaveID,
			LeaveType:  string(r.Type),
			StartDate:  r.StartDate,
			EndDate:    r.EndDate,
			Days:       r.Days,
			Status:     string(r.Status),
			ActorID:    &claims.UserID,
			Reason:     reason,
			RecordedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to record leave history: %w", err)
		}

		decided = r
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.notifyEmployee(ctx, decided, claims.UserID)
	return leave.ToResponse(decided), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, req leave.ApproveLeaveRequest) (leave.LeaveResponse, error) {
	return s.decide(ctx, req.ID, func(r *leave.Request, actorID string, at time.Time) error {
		return r.Approve(actorID, req.Comments, at)
	}, req.Comments)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveResponse, error) {
	reason := req.RejectionReason()
	return s.decide(ctx, req.ID, func(r *leave.Request, actorID string, at time.Time) error {
		return r.Reject(actorID, reason, at)
	}, reason)
}

// Stats implements leave.LeaveService.
func (s *LeaveServiceImpl) Stats(ctx context.Context, filter leave.StatsFilter) (leave.StatsResponse, error) {
	if filter.Year == nil {
		year := s.today().Year()
		filter.Year = &year
	}
	requests, err := s.leaves.ListForStats(ctx, filter)
	if err != nil {
		return leave.StatsResponse{}, fmt.Errorf("failed to load leave stats: %w", err)
	}
	return leave.ToStatsResponse(leave.Tally(requests)), nil
}

// ListConfigurations implements leave.LeaveService.
func (s *LeaveServiceImpl) ListConfigurations(ctx context.Context) ([]leave.ConfigurationResponse, error) {
	configs, err := s.configs.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave configurations: %w", err)
	}
	resp := make([]leave.ConfigurationResponse, 0, len(configs))
	for _, c := range configs {
		resp = append(resp, leave.ToConfigurationResponse(c))
	}
	return resp, nil
}

// CreateConfiguration implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateConfiguration(ctx context.Context, req leave.ConfigurationRequest) (leave.ConfigurationResponse, error) {
	created, err := s.configs.Create(ctx, req.ToConfiguration())
	if err != nil {
		return leave.ConfigurationResponse{}, err
	}
	return leave.ToConfigurationResponse(created), nil
}

// UpdateConfiguration implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateConfiguration(ctx context.Context, req leave.ConfigurationRequest) (leave.ConfigurationResponse, error) {
	existing, err := s.configs.GetByID(ctx, req.ID)
	if err != nil {
		return leave.ConfigurationResponse{}, err
	}

	updated := req.ToConfiguration()
	updated.CreatedAt = existing.CreatedAt
	if err := s.configs.Update(ctx, updated); err != nil {
		return leave.ConfigurationResponse{}, err
	}
	return leave.ToConfigurationResponse(updated), nil
}
