package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	Create(ctx context.Context, r Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// UpdateStatus persists the status and decision fields of r.
	UpdateStatus(ctx context.Context, r Request) error
	List(ctx context.Context, filter LeaveFilter) ([]Request, int64, error)
	// ApprovedDays sums approved days per type for requests starting within [from, to].
	ApprovedDays(ctx context.Context, employeeID string, from, to time.Time) (map[Type]float64, error)
	// ListApprovedOn returns approved requests covering date, keyed by employee.
	ListApprovedOn(ctx context.Context, date time.Time) (map[string]Request, error)
	ListForStats(ctx context.Context, filter StatsFilter) ([]Request, error)
}

type ConfigurationRepository interface {
	Create(ctx context.Context, c Configuration) (Configuration, error)
	GetByID(ctx context.Context, id string) (Configuration, error)
	Update(ctx context.Context, c Configuration) error
	List(ctx context.Context, activeOnly bool) ([]Configuration, error)
	ListActiveByType(ctx context.Context, t Type) ([]Configuration, error)
}
