package branch

import "context"

type BranchService interface {
	Create(ctx context.Context, req CreateBranchRequest) (BranchResponse, error)
	Get(ctx context.Context, id string) (BranchResponse, error)
	List(ctx context.Context, filter BranchFilter) ([]BranchResponse, error)
	Update(ctx context.Context, req UpdateBranchRequest) (BranchResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (StatsResponse, error)
}
