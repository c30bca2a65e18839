package branch

import (
	"context"
	"time"
)

type BranchRepository interface {
	Create(ctx context.Context, b Branch) (Branch, error)
	GetByID(ctx context.Context, id string) (Branch, error)
	List(ctx context.Context, filter BranchFilter) ([]Branch, error)
	Update(ctx context.Context, req UpdateBranchRequest) error
	Delete(ctx context.Context, id string) error
	// GetStats counts staff and the attendance of day.
	GetStats(ctx context.Context, id string, day time.Time) (Stats, error)
}
