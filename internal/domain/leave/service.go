package leave

import "context"

type LeaveService interface {
	// Employee
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	GetMyLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	GetMyBalance(ctx context.Context) (BalanceResponse, error)
	Cancel(ctx context.Context, id string) (LeaveResponse, error)

	// Approvers
	List(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	ListPending(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	Get(ctx context.Context, id string) (LeaveResponse, error)
	GetEmployeeLeaves(ctx context.Context, employeeID string, year *int) ([]LeaveResponse, error)
	GetEmployeeBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	Approve(ctx context.Context, req ApproveLeaveRequest) (LeaveResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveResponse, error)
	Stats(ctx context.Context, filter StatsFilter) (StatsResponse, error)

	// Configuration
	ListConfigurations(ctx context.Context) ([]ConfigurationResponse, error)
	CreateConfiguration(ctx context.Context, req ConfigurationRequest) (ConfigurationResponse, error)
	UpdateConfiguration(ctx context.Context, req ConfigurationRequest) (ConfigurationResponse, error)
}
