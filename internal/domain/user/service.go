package user

import "context"

// UserService manages login accounts and their roles.
type UserService interface {
	List(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	Get(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	UpdateRole(ctx context.Context, req UpdateUserRoleRequest) (UserResponse, error)
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
