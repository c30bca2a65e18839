package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLeaves struct {
	leave.LeaveRepository
	requests map[string]leave.Request
	seq      int
}

func (f *fakeLeaves) Create(_ context.Context, r leave.Request) (leave.Request, error) {
	f.seq++
	r.ID = "lv-" + string(rune('0'+f.seq))
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeLeaves) GetByID(_ context.Context, id string) (leave.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeLeaves) UpdateStatus(_ context.Context, r leave.Request) error {
	f.requests[r.ID] = r
	return nil
}

func (f *fakeLeaves) ApprovedDays(_ context.Context, employeeID string, from, to time.Time) (map[leave.Type]float64, error) {
	out := map[leave.Type]float64{}
	for _, r := range f.requests {
		if r.EmployeeID == employeeID && r.Status == leave.StatusApproved && !r.StartDate.Before(from) && !r.StartDate.After(to) {
			out[r.Type] += r.Days
		}
	}
	return out, nil
}

type fakeConfigs struct {
	leave.ConfigurationRepository
	configs []leave.Configuration
}

func (f *fakeConfigs) ListActiveByType(_ context.Context, t leave.Type) ([]leave.Configuration, error) {
	var out []leave.Configuration
	for _, c := range f.configs {
		if c.IsActive && c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	history []employee.HistoryEntry
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if id != "emp-1" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return employee.Employee{
		ID:             id,
		EmployeeCode:   "EMP00001",
		FirstName:      "Nimal",
		LastName:       "Perera",
		Position:       employee.PositionCashier,
		EmploymentType: employee.EmploymentTypeFullTime,
		LeaveBalance:   employee.LeaveBalance{"annual": 5, "sick": 10},
	}, nil
}

func (f *fakeEmployees) AppendHistory(_ context.Context, h employee.HistoryEntry) error {
	f.history = append(f.history, h)
	return nil
}

type fakeUsers struct {
	user.UserRepository
}

func (fakeUsers) ListByRoles(context.Context, []user.Role) ([]user.User, error) {
	return []user.User{
		{ID: "u-admin", Role: user.RoleAdmin, IsActive: true},
		{ID: "u-hr", Role: user.RoleHRManager, IsActive: true},
		{ID: "u-gone", Role: user.RoleSupervisor, IsActive: false},
	}, nil
}

func (fakeUsers) GetByEmployeeID(_ context.Context, employeeID string) (user.User, error) {
	if employeeID != "emp-1" {
		return user.User{}, user.ErrUserNotFound
	}
	return user.User{ID: "u-emp-1", IsActive: true}, nil
}

type fakeNotifier struct {
	notification.Service
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, req)
	return nil
}

func (f *fakeNotifier) QueueBulkNotification(_ context.Context, reqs []notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, reqs...)
	return nil
}

type fixture struct {
	svc       *LeaveServiceImpl
	leaves    *fakeLeaves
	employees *fakeEmployees
	notifier  *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		leaves:    &fakeLeaves{requests: map[string]leave.Request{}},
		employees: &fakeEmployees{},
		notifier:  &fakeNotifier{},
	}
	configs := &fakeConfigs{configs: []leave.Configuration{{
		ID:                "cfg-annual",
		Type:              leave.TypeAnnual,
		IsActive:          true,
		MinimumNoticeDays: 1,
		AllowHalfDay:      true,
	}}}
	f.svc = NewLeaveService(fakeTx{}, f.leaves, configs, f.employees, fakeUsers{}, f.notifier, time.UTC).(*LeaveServiceImpl)
	// Monday 2025-03-03.
	f.svc.now = func() time.Time { return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) }
	return f
}

func asEmployee() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-emp-1", EmployeeID: "emp-1", Role: user.RoleEmployee})
}

func asHR() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-hr", Role: user.RoleHRManager})
}

func application(t *testing.T, start, end string) leave.ApplyLeaveRequest {
	t.Helper()
	req := leave.ApplyLeaveRequest{
		EmployeeID: "emp-1",
		LeaveType:  "annual",
		StartDate:  start,
		EndDate:    end,
		Reason:     "family event",
	}
	require.NoError(t, req.Validate())
	return req
}

func TestApply_NotifiesActiveApprovers(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Apply(asEmployee(), application(t, "2025-03-05", "2025-03-07"))
	require.NoError(t, err)

	assert.Equal(t, leave.StatusPending, resp.Status)
	assert.Equal(t, 3.0, resp.NumberOfDays)
	require.Len(t, f.notifier.queued, 2)
	for _, n := range f.notifier.queued {
		assert.Equal(t, notification.TypeLeaveRequest, n.Type)
		assert.NotEqual(t, "u-gone", n.RecipientID)
		require.NotNil(t, n.RelatedTo)
		assert.Equal(t, resp.ID, n.RelatedTo.ID)
	}
}

func TestApply_InsufficientBalance(t *testing.T) {
	f := newFixture()
	f.leaves.requests["old"] = leave.Request{
		ID: "old", EmployeeID: "emp-1", Type: leave.TypeAnnual, Status: leave.StatusApproved,
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Days: 4,
	}

	_, err := f.svc.Apply(asEmployee(), application(t, "2025-03-10", "2025-03-11"))

	var policy *leave.PolicyError
	require.True(t, errors.As(err, &policy))
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Equal(t, "Insufficient leave balance. Available: 1 days, Requested: 2 days", policy.Message)
	assert.Empty(t, f.notifier.queued)
}

func TestApply_UnconfiguredType(t *testing.T) {
	f := newFixture()
	req := application(t, "2025-03-10", "2025-03-10")
	req.LeaveType = "sick"
	require.NoError(t, req.Validate())

	_, err := f.svc.Apply(asEmployee(), req)
	assert.ErrorIs(t, err, leave.ErrConfigurationNotApplicable)
}

func TestApprove_RecordsHistoryAndNotifies(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Apply(asEmployee(), application(t, "2025-03-05", "2025-03-05"))
	require.NoError(t, err)
	f.notifier.queued = nil

	comments := "enjoy"
	resp, err := f.svc.Approve(asHR(), leave.ApproveLeaveRequest{ID: created.ID, Comments: &comments})
	require.NoError(t, err)

	assert.Equal(t, leave.StatusApproved, resp.Status)
	require.Len(t, f.employees.history, 1)
	assert.Equal(t, "approved", f.employees.history[0].Status)
	assert.Equal(t, "u-hr", *f.employees.history[0].ActorID)

	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "u-emp-1", f.notifier.queued[0].RecipientID)
	assert.Equal(t, notification.TypeLeaveApproved, f.notifier.queued[0].Type)

	_, err = f.svc.Approve(asHR(), leave.ApproveLeaveRequest{ID: created.ID})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
	assert.Len(t, f.employees.history, 1)
}

func TestReject_FallsBackToComments(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Apply(asEmployee(), application(t, "2025-03-05", "2025-03-05"))
	require.NoError(t, err)
	f.notifier.queued = nil

	comments := "peak season"
	resp, err := f.svc.Reject(asHR(), leave.RejectLeaveRequest{ID: created.ID, Comments: &comments})
	require.NoError(t, err)

	assert.Equal(t, leave.StatusRejected, resp.Status)
	require.Len(t, f.notifier.queued, 1)
	assert.Contains(t, f.notifier.queued[0].Message, "peak season")
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.leaves.requests["other"] = leave.Request{ID: "other", EmployeeID: "emp-2", Status: leave.StatusPending}

	_, err := f.svc.Cancel(asEmployee(), "other")
	assert.ErrorIs(t, err, leave.ErrNotRequestOwner)

	f.leaves.requests["past"] = leave.Request{
		ID: "past", EmployeeID: "emp-1", Status: leave.StatusApproved,
		StartDate: time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC),
	}
	_, err = f.svc.Cancel(asEmployee(), "past")
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyStarted)

	f.leaves.requests["today"] = leave.Request{
		ID: "today", EmployeeID: "emp-1", Status: leave.StatusApproved,
		StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	_, err = f.svc.Cancel(asEmployee(), "today")
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyStarted)

	created, err := f.svc.Apply(asEmployee(), application(t, "2025-03-05", "2025-03-05"))
	require.NoError(t, err)
	resp, err := f.svc.Cancel(asEmployee(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, resp.Status)
}

func TestGet_RestrictsToOwner(t *testing.T) {
	f := newFixture()
	f.leaves.requests["other"] = leave.Request{ID: "other", EmployeeID: "emp-2", Status: leave.StatusPending}

	_, err := f.svc.Get(asEmployee(), "other")
	assert.ErrorIs(t, err, leave.ErrNotRequestOwner)

	_, err = f.svc.Get(asHR(), "other")
	assert.NoError(t, err)
}

func TestGetMyBalance(t *testing.T) {
	f := newFixture()
	f.leaves.requests["old"] = leave.Request{
		ID: "old", EmployeeID: "emp-1", Type: leave.TypeAnnual, Status: leave.StatusApproved,
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Days: 2,
	}
	f.leaves.requests["lastyear"] = leave.Request{
		ID: "lastyear", EmployeeID: "emp-1", Type: leave.TypeSick, Status: leave.StatusApproved,
		StartDate: time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC), Days: 3,
	}

	resp, err := f.svc.GetMyBalance(asEmployee())
	require.NoError(t, err)

	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, leave.Balance{Total: 5, Taken: 2, Balance: 3}, resp.Balances[leave.TypeAnnual])
	assert.Equal(t, leave.Balance{Total: 10, Taken: 0, Balance: 10}, resp.Balances[leave.TypeSick])
}

func TestGetMyBalance_NoProfile(t *testing.T) {
	f := newFixture()
	ctx := jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-admin", Role: user.RoleAdmin})

	_, err := f.svc.GetMyBalance(ctx)
	assert.ErrorIs(t, err, employee.ErrNoEmployeeProfile)
}
